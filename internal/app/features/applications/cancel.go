// internal/app/features/applications/cancel.go
package applications

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/metacode22/study-somoim/internal/app/backend"
	uierrors "github.com/metacode22/study-somoim/internal/app/features/errors"
	"github.com/metacode22/study-somoim/internal/app/store/activity"
	"github.com/metacode22/study-somoim/internal/app/store/queries/usermemberships"
	"github.com/metacode22/study-somoim/internal/app/system/auth"
	"github.com/metacode22/study-somoim/internal/app/system/navigation"
	"github.com/metacode22/study-somoim/internal/app/system/timeouts"
	"github.com/metacode22/study-somoim/internal/app/system/viewdata"
	"github.com/metacode22/study-somoim/internal/domain/models"
	"go.uber.org/zap"
)

const selectionDone = "선발이 완료되어 취소가 불가합니다."

type cancelData struct {
	viewdata.BaseVM
	Application models.Application
}

// pending is the membership a cancel request addresses.
type pending struct {
	Chapter    *models.Chapter
	Enrollment usermemberships.Enrollment
}

// loadPending finds {membershipID} among the user's own active memberships,
// so one user can never cancel another's application. When it returns false
// the response has already been written.
func (h *Handler) loadPending(ctx context.Context, w http.ResponseWriter, r *http.Request, user *auth.SessionUser) (pending, bool) {
	ch, err := h.Chapters.Current(ctx)
	if err != nil {
		h.ErrLog.LogBackendError(w, r, "applications: load current chapter", err, listURL)
		return pending{}, false
	}
	if ch == nil {
		uierrors.RenderNotFound(w, r, "진행 중인 기수가 없습니다.", listURL)
		return pending{}, false
	}
	mine, err := h.Memberships.Mine(ctx, ch.ID, user.ID)
	if err != nil {
		h.ErrLog.LogBackendError(w, r, "applications: load my memberships", err, listURL)
		return pending{}, false
	}
	id := chi.URLParam(r, "membershipID")
	for _, e := range mine {
		if e.Membership.ID == id {
			if e.Group.SelectionComplete() {
				h.flash(w, r, "error", selectionDone)
				http.Redirect(w, r, listURL, http.StatusSeeOther)
				return pending{}, false
			}
			return pending{Chapter: ch, Enrollment: e}, true
		}
	}
	uierrors.RenderNotFound(w, r, "신청 내역을 찾을 수 없습니다.", listURL)
	return pending{}, false
}

// ServeCancel renders the cancel confirmation.
func (h *Handler) ServeCancel(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	p, ok := h.loadPending(ctx, w, r, user)
	if !ok {
		return
	}
	templates.Render(w, r, "applications_cancel", cancelData{
		BaseVM:      viewdata.NewBaseVM(r, "신청 취소", listURL),
		Application: Build(p.Enrollment, p.Chapter.Periods, h.Loc),
	})
}

// HandleCancel withdraws the application.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	p, ok := h.loadPending(ctx, w, r, user)
	if !ok {
		return
	}
	back := navigation.SafeBackURL(r, navigation.MyApplicationsBackURL)
	cg := p.Enrollment.Group
	m := p.Enrollment.Membership
	if err := h.Memberships.Cancel(ctx, user.ID, p.Chapter.ID, cg.ID, m.ID); err != nil {
		if st := backend.StatusOf(err); st >= 400 && st < 500 {
			h.flash(w, r, "error", backend.MessageOf(err, "취소에 실패했습니다."))
			http.Redirect(w, r, back, http.StatusSeeOther)
			return
		}
		h.ErrLog.LogBackendError(w, r, "applications: cancel membership", err, back)
		return
	}

	if h.Activity != nil {
		err := h.Activity.Create(ctx, activity.Event{
			UserID:         user.ID,
			Timestamp:      time.Now().UTC(),
			EventType:      activity.EventLeave,
			ChapterID:      p.Chapter.ID,
			ChapterGroupID: cg.ID,
			GroupName:      cg.Name(),
			GroupType:      string(cg.EffectiveType()),
			Details:        map[string]string{"membership_id": m.ID},
		})
		if err != nil {
			h.Log.Warn("applications: record activity", zap.Error(err))
		}
	}
	h.flash(w, r, "success", "신청이 취소되었습니다.")
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (h *Handler) flash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	if err := h.Sessions.SetFlash(w, r, kind, msg); err != nil {
		h.Log.Warn("applications: set flash", zap.Error(err))
	}
}
