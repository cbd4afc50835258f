// internal/app/features/api/phase.go
package api

import (
	"net/http"
	"time"

	"github.com/metacode22/study-somoim/internal/app/system/jsonresp"
	"github.com/metacode22/study-somoim/internal/app/system/phase"
	"github.com/metacode22/study-somoim/internal/app/system/timeouts"
	"github.com/metacode22/study-somoim/internal/domain/models"
)

type stageJSON struct {
	Name   string       `json:"name"`
	Start  time.Time    `json:"start"`
	End    time.Time    `json:"end"`
	Status phase.Status `json:"status"`
	Range  string       `json:"range"`
}

type phaseJSON struct {
	ChapterID   string              `json:"chapterId"`
	ChapterName string              `json:"chapterName"`
	Phase       models.ChapterPhase `json:"phase"`
	Label       string              `json:"label"`
	Stages      []stageJSON         `json:"stages"`
}

// ServePhase reports the current chapter's phase, computed from its periods
// at request time, and the four-stage timeline.
func (h *Handler) ServePhase(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "api phase")
	defer cancel()

	ch, err := h.Chapters.Current(ctx)
	if err != nil {
		h.fail(w, r, "load current chapter", err)
		return
	}
	if ch == nil {
		jsonresp.NotFound(w, noChapterMsg)
		return
	}

	now := h.Clock.Now()
	p := phase.Current(ch.Periods, now)
	out := phaseJSON{
		ChapterID:   ch.ID,
		ChapterName: ch.Name,
		Phase:       p,
		Label:       phase.Label(p),
	}
	for _, s := range phase.Timeline(ch.Periods, now, h.Loc) {
		out.Stages = append(out.Stages, stageJSON{Name: s.Name, Start: s.Start, End: s.End, Status: s.Status, Range: s.Range})
	}
	jsonresp.OK(w, out)
}
