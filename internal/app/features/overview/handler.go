package overview

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/metacode22/study-somoim/internal/app/features/errors"
	chaptergroupstore "github.com/metacode22/study-somoim/internal/app/store/chaptergroups"
	chapterstore "github.com/metacode22/study-somoim/internal/app/store/chapters"
	"github.com/metacode22/study-somoim/internal/app/system/groupcard"
	"github.com/metacode22/study-somoim/internal/app/system/phase"
	"github.com/metacode22/study-somoim/internal/app/system/schedule"
	"github.com/metacode22/study-somoim/internal/app/system/timeouts"
	"github.com/metacode22/study-somoim/internal/app/system/viewdata"
	"github.com/metacode22/study-somoim/internal/domain/models"
	"go.uber.org/zap"
)

type Handler struct {
	Chapters *chapterstore.Store
	Groups   *chaptergroupstore.Store
	Clock    phase.Clock
	Loc      *time.Location
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(chapters *chapterstore.Store, groups *chaptergroupstore.Store, clock phase.Clock, loc *time.Location, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Chapters: chapters, Groups: groups, Clock: clock, Loc: loc, ErrLog: errLog, Log: logger}
}

type overviewData struct {
	viewdata.BaseVM

	Chapter    *models.Chapter
	PhaseLabel string
	Stages     []phase.Stage
	Week       []schedule.Bucket[groupcard.Card]
	Total      int
}

// ServeOverview renders the chapter timeline and the weekly meeting grid.
func (h *Handler) ServeOverview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	data := overviewData{BaseVM: viewdata.NewBaseVM(r, "기수 일정 한눈에 보기", "/")}
	if err := h.load(ctx, &data); err != nil {
		h.ErrLog.LogBackendError(w, r, "overview: load chapter", err, "/")
		return
	}
	templates.Render(w, r, "overview", data)
}

func (h *Handler) load(ctx context.Context, data *overviewData) error {
	ch, err := h.Chapters.Current(ctx)
	if err != nil || ch == nil {
		return err
	}
	now := h.Clock.Now()
	data.Chapter = ch
	data.PhaseLabel = phase.Label(phase.Current(ch.Periods, now))
	data.Stages = phase.Timeline(ch.Periods, now, h.Loc)

	groups, err := h.Groups.Recruiting(ctx, ch.ID)
	if err != nil {
		return err
	}
	cards := groupcard.FromAll(groups)
	data.Total = len(cards)
	data.Week = schedule.GroupByDay(cards, func(c groupcard.Card) string { return c.Schedule })
	return nil
}
