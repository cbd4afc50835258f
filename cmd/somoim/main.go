package main

import (
	"context"
	"log"
	_ "time/tzdata"

	"github.com/dalemusser/waffle/app"
	"github.com/metacode22/study-somoim/internal/app/bootstrap"
	_ "go.uber.org/automaxprocs"
)

func main() {
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		log.Fatal(err)
	}
}
