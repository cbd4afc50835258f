// internal/app/features/admin/dashboard.go
package admin

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/metacode22/study-somoim/internal/app/system/phase"
	"github.com/metacode22/study-somoim/internal/app/system/timeouts"
	"github.com/metacode22/study-somoim/internal/app/system/viewdata"
	"github.com/metacode22/study-somoim/internal/domain/models"
	"golang.org/x/sync/errgroup"
)

type statusCount struct {
	Status models.ReviewStatus
	Label  string
	Count  int
}

type dashboardData struct {
	viewdata.BaseVM

	Chapter    *models.Chapter
	PhaseLabel string
	Stages     []phase.Stage
	Counts     []statusCount
	Total      int
	Registered int
}

// chapterFor resolves the chapter named by ?chapter=, defaulting to the
// current one. It returns nil when neither exists.
func (h *Handler) chapterFor(ctx context.Context, r *http.Request) (*models.Chapter, error) {
	if id := strings.TrimSpace(query.Get(r, "chapter")); id != "" {
		return h.Chapters.Get(ctx, id)
	}
	return h.Chapters.Current(ctx)
}

// ServeDashboard shows application counts by review status and the number
// of registered groups for the selected chapter.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "admin dashboard")
	defer cancel()

	data := dashboardData{BaseVM: viewdata.NewBaseVM(r, "관리자", "/")}

	ch, err := h.chapterFor(ctx, r)
	if err != nil {
		h.ErrLog.LogBackendError(w, r, "admin: load chapter", err, "/")
		return
	}
	if ch == nil {
		templates.Render(w, r, "admin_dashboard", data)
		return
	}

	now := h.Clock.Now()
	data.Chapter = ch
	data.PhaseLabel = phase.Label(phase.Current(ch.Periods, now))
	data.Stages = phase.Timeline(ch.Periods, now, h.Loc)

	counts, registered, err := h.counts(ctx, ch.ID)
	if err != nil {
		h.ErrLog.LogBackendError(w, r, "admin: load counts", err, "/")
		return
	}
	data.Counts = counts
	data.Registered = registered
	for _, c := range counts {
		data.Total += c.Count
	}
	templates.Render(w, r, "admin_dashboard", data)
}

// counts fetches the application total for each review status and the
// number of registered groups concurrently.
func (h *Handler) counts(ctx context.Context, chapterID string) ([]statusCount, int, error) {
	counts := make([]statusCount, len(models.ReviewStatuses))
	var registered int

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range models.ReviewStatuses {
		counts[i] = statusCount{Status: s, Label: s.Label()}
		g.Go(func() error {
			page, err := h.Groups.Applications(gctx, chapterID, models.ApplicationQuery{ReviewStatus: s, Page: 1, Limit: 1})
			if err != nil {
				return err
			}
			counts[i].Count = page.Meta.Total
			return nil
		})
	}
	g.Go(func() error {
		regs, err := h.Groups.Registrations(gctx, chapterID)
		if err != nil {
			return err
		}
		registered = len(regs)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return counts, registered, nil
}
