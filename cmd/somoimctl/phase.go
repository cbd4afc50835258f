package main

import (
	"errors"
	"time"

	"github.com/metacode22/study-somoim/internal/app/system/phase"
	"github.com/metacode22/study-somoim/internal/domain/models"
	"github.com/spf13/cobra"
)

type stageRow struct {
	Name   string       `json:"name" yaml:"name"`
	Range  string       `json:"range" yaml:"range"`
	Status phase.Status `json:"status" yaml:"status"`
}

type phaseReport struct {
	ChapterID   string              `json:"chapterId" yaml:"chapterId"`
	ChapterName string              `json:"chapterName" yaml:"chapterName"`
	Phase       models.ChapterPhase `json:"phase" yaml:"phase"`
	Label       string              `json:"label" yaml:"label"`
	At          time.Time           `json:"at" yaml:"at"`
	Stages      []stageRow          `json:"stages" yaml:"stages"`
}

func (p phaseReport) header() []string {
	return []string{p.ChapterName + " · " + p.Label, "PERIOD", "STATUS"}
}

func (p phaseReport) rows() [][]string {
	out := make([][]string, 0, len(p.Stages))
	for _, s := range p.Stages {
		out = append(out, []string{s.Name, s.Range, s.Status.Label()})
	}
	return out
}

var errNoChapter = errors.New("no current chapter")

func phaseReportFor(ch *models.Chapter, now time.Time, loc *time.Location) phaseReport {
	p := phase.Current(ch.Periods, now)
	r := phaseReport{
		ChapterID:   ch.ID,
		ChapterName: ch.Name,
		Phase:       p,
		Label:       phase.Label(p),
		At:          now,
	}
	for _, s := range phase.Timeline(ch.Periods, now, loc) {
		r.Stages = append(r.Stages, stageRow{Name: s.Name, Range: s.Range, Status: s.Status})
	}
	return r
}

func phaseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "phase",
		Short: "Show the current chapter's phase and timeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := envFrom(cmd)
			ctx, cancel := e.context(cmd)
			defer cancel()

			ch, err := e.api.CurrentChapter(ctx)
			if err != nil {
				return err
			}
			if ch == nil {
				return errNoChapter
			}
			return render(cmd.OutOrStdout(), e.format, phaseReportFor(ch, e.clock.Now(), e.loc))
		},
	}
}
