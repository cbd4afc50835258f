// internal/app/features/activitylog/handler.go
package activitylog

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/metacode22/study-somoim/internal/app/features/errors"
	"github.com/metacode22/study-somoim/internal/app/store/activity"
	"github.com/metacode22/study-somoim/internal/app/system/auth"
	"github.com/metacode22/study-somoim/internal/app/system/phase"
	"github.com/metacode22/study-somoim/internal/app/system/timeouts"
	"github.com/metacode22/study-somoim/internal/app/system/viewdata"
	"go.uber.org/zap"
)

// pageLimit caps how many events the page shows.
const pageLimit = 50

// Lister reads a user's activity, newest first. *activity.Store satisfies it.
type Lister interface {
	ListByUser(ctx context.Context, userID string, limit int64) ([]activity.Event, error)
}

type Handler struct {
	Events Lister
	Loc    *time.Location
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(events Lister, loc *time.Location, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Events: events, Loc: loc, ErrLog: errLog, Log: logger}
}

type eventRow struct {
	Kind        string
	Label       string
	GroupID     string
	GroupName   string
	GroupType   string
	Description string
	Date        string
}

type pageData struct {
	viewdata.BaseVM
	Events []eventRow
}

func rowsFrom(events []activity.Event, loc *time.Location) []eventRow {
	out := make([]eventRow, 0, len(events))
	for _, e := range events {
		out = append(out, eventRow{
			Kind:        e.EventType,
			Label:       e.Label(),
			GroupID:     e.ChapterGroupID,
			GroupName:   e.GroupName,
			GroupType:   e.GroupType,
			Description: e.Description,
			Date:        phase.FormatDate(e.Timestamp, loc),
		})
	}
	return out
}

// ServeLog renders the signed-in user's activity log.
func (h *Handler) ServeLog(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	events, err := h.Events.ListByUser(ctx, user.ID, pageLimit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "activitylog: list events", err, "활동 로그를 불러오지 못했습니다.", "/")
		return
	}

	templates.Render(w, r, "activitylog", pageData{
		BaseVM: viewdata.NewBaseVM(r, "활동 로그", "/"),
		Events: rowsFrom(events, h.Loc),
	})
}
