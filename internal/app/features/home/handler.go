package home

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/metacode22/study-somoim/internal/app/features/errors"
	chaptergroupstore "github.com/metacode22/study-somoim/internal/app/store/chaptergroups"
	chapterstore "github.com/metacode22/study-somoim/internal/app/store/chapters"
	"github.com/metacode22/study-somoim/internal/app/system/groupcard"
	"github.com/metacode22/study-somoim/internal/app/system/phase"
	"github.com/metacode22/study-somoim/internal/app/system/recruitment"
	"github.com/metacode22/study-somoim/internal/app/system/schedule"
	"github.com/metacode22/study-somoim/internal/app/system/timeouts"
	"github.com/metacode22/study-somoim/internal/app/system/viewdata"
	"github.com/metacode22/study-somoim/internal/domain/models"
	"go.uber.org/zap"
)

// newGroupsLimit caps the "new this week" strip.
const newGroupsLimit = 5

// Tabs on the recruiting list.
const (
	TabClubs   = "somoim"
	TabStudies = "study"
)

// Handler holds dependencies needed to serve the home page.
type Handler struct {
	Chapters *chapterstore.Store
	Groups   *chaptergroupstore.Store
	Clock    phase.Clock
	Loc      *time.Location
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(chapters *chapterstore.Store, groups *chaptergroupstore.Store, clock phase.Clock, loc *time.Location, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Chapters: chapters,
		Groups:   groups,
		Clock:    clock,
		Loc:      loc,
		ErrLog:   errLog,
		Log:      logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// choice is one checkbox or select option with its current state.
type choice struct {
	Value   string
	Label   string
	Checked bool
}

type filterForm struct {
	Status      string
	Available   []choice
	Unavailable []choice
	Days        []choice
	Categories  []choice
	Active      bool
	Query       string
}

type homeData struct {
	viewdata.BaseVM

	Chapter    *models.Chapter
	Phase      models.ChapterPhase
	PhaseLabel string
	Stages     []phase.Stage

	Tab       string
	Clubs     []groupcard.Card
	Studies   []groupcard.Card
	NewGroups []groupcard.Card
	Total     int

	Filter filterForm
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – current chapter and recruiting groups                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	data := homeData{BaseVM: viewdata.NewBaseVM(r, "모집 중인 스터디·소모임", "/")}
	if err := h.load(ctx, &data, r); err != nil {
		h.ErrLog.LogBackendError(w, r, "home: load recruiting groups", err, "/")
		return
	}

	templates.Render(w, r, "home", data)
}

func (h *Handler) load(ctx context.Context, data *homeData, r *http.Request) error {
	now := h.Clock.Now()
	f := recruitment.FromQuery(r.URL.Query())
	data.Tab = tabFrom(query.Get(r, "tab"))
	data.Filter = newFilterForm(f)

	ch, err := h.Chapters.Current(ctx)
	if err != nil {
		return err
	}
	if ch == nil {
		return nil
	}
	data.Chapter = ch
	data.Phase = phase.Current(ch.Periods, now)
	data.PhaseLabel = phase.Label(data.Phase)
	data.Stages = phase.Timeline(ch.Periods, now, h.Loc)

	groups, err := h.Groups.Recruiting(ctx, ch.ID)
	if err != nil {
		return err
	}
	cards := groupcard.FromAll(groups)
	data.NewGroups = groupcard.Newest(cards, now, newGroupsLimit)
	data.Clubs, data.Studies = groupcard.Split(recruitment.Apply(cards, f))
	data.Total = len(data.Clubs) + len(data.Studies)
	return nil
}

func tabFrom(v string) string {
	if v == TabStudies {
		return TabStudies
	}
	return TabClubs
}

func newFilterForm(f recruitment.Filters) filterForm {
	status, _ := f.Status()
	form := filterForm{
		Status: status,
		Active: !f.IsZero(),
		Query:  f.Query().Encode(),
	}
	for _, o := range recruitment.ApplyStatusAvailable {
		form.Available = append(form.Available, choice{o.Value, o.Label, o.Value == status})
	}
	for _, o := range recruitment.ApplyStatusUnavailable {
		form.Unavailable = append(form.Unavailable, choice{o.Value, o.Label, o.Value == status})
	}
	for _, d := range schedule.AllDays {
		form.Days = append(form.Days, choice{string(d), string(d), schedule.Contains(f.Days, d)})
	}
	picked := make(map[string]bool, len(f.Categories))
	for _, c := range f.Categories {
		picked[c] = true
	}
	for _, c := range recruitment.Categories {
		form.Categories = append(form.Categories, choice{c, c, picked[c]})
	}
	return form
}
