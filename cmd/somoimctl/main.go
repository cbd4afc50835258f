// Command somoimctl inspects the study/club backend from a terminal: the
// current chapter's phase, chapters, recruiting groups and the application
// pre-check.
package main

import (
	"fmt"
	"os"

	_ "time/tzdata"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
