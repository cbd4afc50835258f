package main

import (
	"strconv"

	"github.com/metacode22/study-somoim/internal/app/system/phase"
	"github.com/metacode22/study-somoim/internal/domain/models"
	"github.com/spf13/cobra"
)

type chapterRow struct {
	ID          string              `json:"id" yaml:"id"`
	Name        string              `json:"name" yaml:"name"`
	Sequence    int                 `json:"sequence" yaml:"sequence"`
	Phase       models.ChapterPhase `json:"phase" yaml:"phase"`
	Application string              `json:"application" yaml:"application"`
	Activity    string              `json:"activity" yaml:"activity"`
}

type chapterList []chapterRow

func (chapterList) header() []string {
	return []string{"ID", "NAME", "SEQ", "PHASE", "APPLICATION", "ACTIVITY"}
}

func (l chapterList) rows() [][]string {
	out := make([][]string, 0, len(l))
	for _, c := range l {
		out = append(out, []string{c.ID, c.Name, strconv.Itoa(c.Sequence), phase.Label(c.Phase), c.Application, c.Activity})
	}
	return out
}

func chaptersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chapters",
		Short: "List chapters with their computed phase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := envFrom(cmd)
			ctx, cancel := e.context(cmd)
			defer cancel()

			chapters, err := e.api.ListChapters(ctx)
			if err != nil {
				return err
			}
			now := e.clock.Now()
			list := make(chapterList, 0, len(chapters))
			for _, ch := range chapters {
				p := ch.Periods
				list = append(list, chapterRow{
					ID:          ch.ID,
					Name:        ch.Name,
					Sequence:    ch.Sequence,
					Phase:       phase.Current(p, now),
					Application: phase.FormatRange(p.ApplicationStart, p.ApplicationEnd, e.loc),
					Activity:    phase.FormatRange(p.ActivityStart, p.ActivityEnd, e.loc),
				})
			}
			return render(cmd.OutOrStdout(), e.format, list)
		},
	}
}
