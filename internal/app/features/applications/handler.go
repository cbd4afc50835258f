// internal/app/features/applications/handler.go
package applications

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/metacode22/study-somoim/internal/app/features/errors"
	"github.com/metacode22/study-somoim/internal/app/store/activity"
	chapterstore "github.com/metacode22/study-somoim/internal/app/store/chapters"
	membershipstore "github.com/metacode22/study-somoim/internal/app/store/memberships"
	"github.com/metacode22/study-somoim/internal/app/store/queries/usermemberships"
	"github.com/metacode22/study-somoim/internal/app/system/auth"
	"github.com/metacode22/study-somoim/internal/app/system/phase"
	"github.com/metacode22/study-somoim/internal/app/system/schedule"
	"github.com/metacode22/study-somoim/internal/app/system/timeouts"
	"github.com/metacode22/study-somoim/internal/app/system/viewdata"
	"github.com/metacode22/study-somoim/internal/domain/models"
	"go.uber.org/zap"
)

const listURL = "/my-applications"

// ActivityRecorder stores user-facing activity events.
type ActivityRecorder interface {
	Create(ctx context.Context, e activity.Event) error
}

type Handler struct {
	Chapters    *chapterstore.Store
	Memberships *membershipstore.Store
	Sessions    *auth.SessionManager
	Activity    ActivityRecorder
	Loc         *time.Location
	ErrLog      *uierrors.ErrorLogger
	Log         *zap.Logger
}

func NewHandler(chapters *chapterstore.Store, memberships *membershipstore.Store, sessions *auth.SessionManager, recorder ActivityRecorder, loc *time.Location, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Chapters:    chapters,
		Memberships: memberships,
		Sessions:    sessions,
		Activity:    recorder,
		Loc:         loc,
		ErrLog:      errLog,
		Log:         logger,
	}
}

// Build flattens an enrollment into the my-applications view model.
func Build(e usermemberships.Enrollment, p models.ChapterPeriods, loc *time.Location) models.Application {
	return models.Application{
		ID:                  e.Membership.ID,
		GroupID:             e.Group.ID,
		GroupName:           e.Group.Name(),
		ScheduleDays:        schedule.ParseDayStrings(e.Group.ScheduleText()),
		SelectionPeriod:     phase.FormatRange(p.RecruitmentStart, p.RecruitmentEnd, loc),
		ActivityPeriod:      phase.FormatRange(p.ActivityStart, p.ActivityEnd, loc),
		AppliedAs:           e.Membership.ParticipationType,
		IsSelectionComplete: e.Group.SelectionComplete(),
	}
}

type dayGroup struct {
	Day   schedule.Day
	Items []models.Application
}

type listData struct {
	viewdata.BaseVM

	ChapterName string
	Days        []dayGroup
	Total       int
}

// ServeList renders the signed-in user's active applications, grouped by
// meeting day. A group meeting on two days appears under both.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	data := listData{BaseVM: viewdata.NewBaseVM(r, "내 신청 내역", "/")}
	ch, err := h.Chapters.Current(ctx)
	if err != nil {
		h.ErrLog.LogBackendError(w, r, "applications: load current chapter", err, "/")
		return
	}
	if ch != nil {
		mine, err := h.Memberships.Mine(ctx, ch.ID, user.ID)
		if err != nil {
			h.ErrLog.LogBackendError(w, r, "applications: load my memberships", err, "/")
			return
		}
		data.ChapterName = ch.Name
		data.Total = len(mine)
		data.Days = groupByDay(mine, ch.Periods, h.Loc)
	}

	templates.Render(w, r, "applications_list", data)
}

func groupByDay(mine []usermemberships.Enrollment, p models.ChapterPeriods, loc *time.Location) []dayGroup {
	buckets := schedule.GroupByDay(mine, func(e usermemberships.Enrollment) string { return e.Group.ScheduleText() })
	out := make([]dayGroup, 0, len(buckets))
	for _, b := range buckets {
		g := dayGroup{Day: b.Day}
		for _, e := range b.Items {
			g.Items = append(g.Items, Build(e, p, loc))
		}
		out = append(out, g)
	}
	return out
}
