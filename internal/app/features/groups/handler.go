// internal/app/features/groups/handler.go
package groups

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/metacode22/study-somoim/internal/app/backend"
	uierrors "github.com/metacode22/study-somoim/internal/app/features/errors"
	"github.com/metacode22/study-somoim/internal/app/store/activity"
	chaptergroupstore "github.com/metacode22/study-somoim/internal/app/store/chaptergroups"
	chapterstore "github.com/metacode22/study-somoim/internal/app/store/chapters"
	membershipstore "github.com/metacode22/study-somoim/internal/app/store/memberships"
	"github.com/metacode22/study-somoim/internal/app/system/auditlog"
	"github.com/metacode22/study-somoim/internal/app/system/auth"
	"github.com/metacode22/study-somoim/internal/app/system/phase"
	"github.com/metacode22/study-somoim/internal/domain/models"
	"go.uber.org/zap"
)

// ActivityRecorder stores and reads user-facing activity events.
// *activity.Store satisfies it.
type ActivityRecorder interface {
	Create(ctx context.Context, e activity.Event) error
	ListByGroup(ctx context.Context, chapterGroupID string, limit int64) ([]activity.Event, error)
}

// Handler is the shared dependency container for the group detail, apply,
// selection and registration pages.
type Handler struct {
	Chapters    *chapterstore.Store
	Groups      *chaptergroupstore.Store
	Memberships *membershipstore.Store
	Sessions    *auth.SessionManager
	AuditLog    *auditlog.Logger
	Activity    ActivityRecorder
	Clock       phase.Clock
	Loc         *time.Location
	ErrLog      *uierrors.ErrorLogger
	Log         *zap.Logger
}

func NewHandler(
	chapters *chapterstore.Store,
	groups *chaptergroupstore.Store,
	memberships *membershipstore.Store,
	sessions *auth.SessionManager,
	audit *auditlog.Logger,
	recorder ActivityRecorder,
	clock phase.Clock,
	loc *time.Location,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Chapters:    chapters,
		Groups:      groups,
		Memberships: memberships,
		Sessions:    sessions,
		AuditLog:    audit,
		Activity:    recorder,
		Clock:       clock,
		Loc:         loc,
		ErrLog:      errLog,
		Log:         logger,
	}
}

// target is the chapter group a request addresses, inside the current chapter.
type target struct {
	Chapter *models.Chapter
	Group   *models.ChapterGroup
}

func groupURL(id string) string { return "/groups/" + id }

// loadTarget resolves {id} against the current chapter. When it returns
// false the error page has already been written.
func (h *Handler) loadTarget(ctx context.Context, w http.ResponseWriter, r *http.Request) (target, bool) {
	ch, err := h.Chapters.Current(ctx)
	if err != nil {
		h.ErrLog.LogBackendError(w, r, "groups: load current chapter", err, "/")
		return target{}, false
	}
	if ch == nil {
		uierrors.RenderNotFound(w, r, "진행 중인 기수가 없습니다.", "/")
		return target{}, false
	}
	cg, err := h.Groups.Get(ctx, ch.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBackendError(w, r, "groups: load chapter group", err, "/")
		return target{}, false
	}
	return target{Chapter: ch, Group: cg}, true
}

// loadLed is loadTarget restricted to the group's leader.
func (h *Handler) loadLed(ctx context.Context, w http.ResponseWriter, r *http.Request, user *auth.SessionUser) (target, bool) {
	t, ok := h.loadTarget(ctx, w, r)
	if !ok {
		return t, false
	}
	if !t.Group.IsLedBy(user.ID) {
		h.ErrLog.LogForbidden(w, r, "groups: non-leader on leader page", "리더만 접근할 수 있습니다.", groupURL(t.Group.ID))
		return t, false
	}
	return t, true
}

func (h *Handler) flash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	if err := h.Sessions.SetFlash(w, r, kind, msg); err != nil {
		h.Log.Warn("groups: set flash", zap.Error(err))
	}
}

// record appends to the activity log. Failures are logged and swallowed: the
// mutation already happened upstream.
func (h *Handler) record(ctx context.Context, userID, eventType string, t target, desc string, details map[string]string) {
	if h.Activity == nil {
		return
	}
	e := activity.Event{
		UserID:         userID,
		Timestamp:      time.Now().UTC(),
		EventType:      eventType,
		ChapterID:      t.Chapter.ID,
		ChapterGroupID: t.Group.ID,
		GroupName:      t.Group.Name(),
		GroupType:      string(t.Group.EffectiveType()),
		Description:    desc,
		Details:        details,
	}
	if err := h.Activity.Create(ctx, e); err != nil {
		h.Log.Warn("groups: record activity", zap.Error(err), zap.String("event_type", eventType))
	}
}

// refusal returns the user-facing reason when err is a refusal the user can
// act on: an eligibility rejection or a 4xx from the backend. It returns ""
// for server and transport failures.
func refusal(err error, fallback string) string {
	if reason, ok := membershipstore.IsRejected(err); ok {
		return reason
	}
	if st := backend.StatusOf(err); st >= 400 && st < 500 {
		return backend.MessageOf(err, fallback)
	}
	return ""
}
