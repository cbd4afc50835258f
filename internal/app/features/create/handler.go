// internal/app/features/create/handler.go
package create

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/metacode22/study-somoim/internal/app/backend"
	uierrors "github.com/metacode22/study-somoim/internal/app/features/errors"
	"github.com/metacode22/study-somoim/internal/app/store/activity"
	chaptergroupstore "github.com/metacode22/study-somoim/internal/app/store/chaptergroups"
	chapterstore "github.com/metacode22/study-somoim/internal/app/store/chapters"
	teamstore "github.com/metacode22/study-somoim/internal/app/store/teams"
	"github.com/metacode22/study-somoim/internal/app/system/auditlog"
	"github.com/metacode22/study-somoim/internal/app/system/auth"
	"github.com/metacode22/study-somoim/internal/app/system/htmlsanitize"
	"github.com/metacode22/study-somoim/internal/app/system/inputval"
	"github.com/metacode22/study-somoim/internal/app/system/phase"
	"github.com/metacode22/study-somoim/internal/app/system/recruitment"
	"github.com/metacode22/study-somoim/internal/app/system/schedule"
	"github.com/metacode22/study-somoim/internal/app/system/timeouts"
	"github.com/metacode22/study-somoim/internal/app/system/viewdata"
	"github.com/metacode22/study-somoim/internal/domain/models"
	"go.uber.org/zap"
)

const closedMsg = "지금은 신규 개설 신청 기간이 아닙니다."

// ActivityRecorder stores user-facing activity events.
type ActivityRecorder interface {
	Create(ctx context.Context, e activity.Event) error
}

type Handler struct {
	Chapters *chapterstore.Store
	Groups   *chaptergroupstore.Store
	Teams    *teamstore.Store
	Sessions *auth.SessionManager
	AuditLog *auditlog.Logger
	Activity ActivityRecorder
	Clock    phase.Clock
	Loc      *time.Location
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(
	chapters *chapterstore.Store,
	groups *chaptergroupstore.Store,
	teams *teamstore.Store,
	sessions *auth.SessionManager,
	audit *auditlog.Logger,
	recorder ActivityRecorder,
	clock phase.Clock,
	loc *time.Location,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Chapters: chapters,
		Groups:   groups,
		Teams:    teams,
		Sessions: sessions,
		AuditLog: audit,
		Activity: recorder,
		Clock:    clock,
		Loc:      loc,
		ErrLog:   errLog,
		Log:      logger,
	}
}

type formData struct {
	viewdata.BaseVM

	Chapter     *models.Chapter
	Open        bool
	Period      string
	Teams       []models.Team
	Types       []models.GroupType
	Categories  []string
	Days        []schedule.Day
	Form        inputval.GroupForm
	FieldErrors map[string]string
	Error       string
}

// openChapter returns the current chapter and whether it is taking new
// group applications right now.
func (h *Handler) openChapter(ctx context.Context) (*models.Chapter, bool, error) {
	ch, err := h.Chapters.Current(ctx)
	if err != nil || ch == nil {
		return ch, false, err
	}
	return ch, phase.Current(ch.Periods, h.Clock.Now()) == models.PhaseApplication, nil
}

func (h *Handler) render(ctx context.Context, w http.ResponseWriter, r *http.Request, data formData) {
	teams, err := h.Teams.List(ctx)
	if err != nil {
		h.ErrLog.LogBackendError(w, r, "create: load teams", err, "/")
		return
	}
	data.Teams = teams
	data.Types = models.GroupTypes
	data.Categories = recruitment.Categories
	data.Days = schedule.AllDays
	if data.Chapter != nil {
		p := data.Chapter.Periods
		data.Period = phase.FormatRange(p.ApplicationStart, p.ApplicationEnd, h.Loc)
	}
	templates.Render(w, r, "create_form", data)
}

// ServeForm renders the new study/club form.
func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ch, open, err := h.openChapter(ctx)
	if err != nil {
		h.ErrLog.LogBackendError(w, r, "create: load current chapter", err, "/")
		return
	}
	h.render(ctx, w, r, formData{
		BaseVM:  viewdata.NewBaseVM(r, "스터디·소모임 개설 신청", "/"),
		Chapter: ch,
		Open:    open,
	})
}

// HandleSubmit validates the form and opens the group in the current chapter.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "create: parse form", err, "잘못된 요청입니다.", "/create")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	ch, open, err := h.openChapter(ctx)
	if err != nil {
		h.ErrLog.LogBackendError(w, r, "create: load current chapter", err, "/create")
		return
	}
	if !open {
		h.flash(w, r, "error", closedMsg)
		http.Redirect(w, r, "/create", http.StatusSeeOther)
		return
	}

	f, res := inputval.ParseGroupForm(r.PostFormValue)
	f.Description = htmlsanitize.PlainText(f.Description)
	f.OperationPlan = htmlsanitize.PlainText(f.OperationPlan)
	if v := inputval.Validate(f); v.HasErrors() {
		res.Errors = append(res.Errors, v.Errors...)
	}
	if f.TeamID != "" {
		_, found, err := h.Teams.Find(ctx, f.TeamID)
		if err != nil {
			h.ErrLog.LogBackendError(w, r, "create: load teams", err, "/create")
			return
		}
		if !found {
			res.Add("teamId", "존재하지 않는 팀입니다.")
		}
	}

	data := formData{
		BaseVM:  viewdata.NewBaseVM(r, "스터디·소모임 개설 신청", "/"),
		Chapter: ch,
		Open:    true,
		Form:    f,
	}
	if res.HasErrors() {
		data.FieldErrors = res.ByField()
		data.Error = res.First()
		h.render(ctx, w, r, data)
		return
	}

	cg, err := h.Groups.CreateApplication(ctx, user.ID, ch.ID, f.Input(user.ID))
	if err != nil {
		if st := backend.StatusOf(err); st >= 400 && st < 500 {
			data.Error = backend.MessageOf(err, "신청에 실패했습니다. 다시 시도해주세요.")
			h.render(ctx, w, r, data)
			return
		}
		h.ErrLog.LogBackendError(w, r, "create: create application", err, "/create")
		return
	}

	h.AuditLog.ApplicationCreated(ctx, r, user.ID, ch.ID, *cg)
	if h.Activity != nil {
		err := h.Activity.Create(ctx, activity.Event{
			UserID:         user.ID,
			Timestamp:      time.Now().UTC(),
			EventType:      activity.EventCreate,
			ChapterID:      ch.ID,
			ChapterGroupID: cg.ID,
			GroupName:      cg.Name(),
			GroupType:      string(cg.EffectiveType()),
		})
		if err != nil {
			h.Log.Warn("create: record activity", zap.Error(err))
		}
	}
	h.flash(w, r, "success", "개설 신청이 완료되었습니다. 검토 후 모집이 시작됩니다.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) flash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	if err := h.Sessions.SetFlash(w, r, kind, msg); err != nil {
		h.Log.Warn("create: set flash", zap.Error(err))
	}
}
