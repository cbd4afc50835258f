// internal/app/features/groups/registration.go
package groups

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/metacode22/study-somoim/internal/app/features/errors"
	"github.com/metacode22/study-somoim/internal/app/store/activity"
	"github.com/metacode22/study-somoim/internal/app/system/auth"
	"github.com/metacode22/study-somoim/internal/app/system/phase"
	"github.com/metacode22/study-somoim/internal/app/system/timeouts"
	"github.com/metacode22/study-somoim/internal/app/system/viewdata"
	"github.com/metacode22/study-somoim/internal/domain/models"
)

type registrationData struct {
	viewdata.BaseVM

	GroupID            string
	GroupName          string
	RegistrationPeriod string
	Selected           []memberRow
}

// ServeRegistration is the leader's confirm page before final registration.
func (h *Handler) ServeRegistration(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	t, ok := h.loadLed(ctx, w, r, user)
	if !ok {
		return
	}
	if t.Group.SelectionComplete() {
		h.flash(w, r, "info", "이미 최종 등록된 그룹입니다.")
		http.Redirect(w, r, groupURL(t.Group.ID), http.StatusSeeOther)
		return
	}
	selected, err := h.selected(ctx, t)
	if err != nil {
		h.ErrLog.LogBackendError(w, r, "groups: list selected members", err, groupURL(t.Group.ID))
		return
	}

	start, end := phase.FinalRegistrationWindow(t.Chapter.Periods)
	templates.Render(w, r, "group_registration", registrationData{
		BaseVM:             viewdata.NewBaseVM(r, "최종 등록", groupURL(t.Group.ID)+"/selection"),
		GroupID:            t.Group.ID,
		GroupName:          t.Group.Name(),
		RegistrationPeriod: phase.FormatRange(start, end, h.Loc),
		Selected:           selected,
	})
}

// HandleRegistration finalizes the group's registration.
func (h *Handler) HandleRegistration(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "groups: parse registration form", err, "잘못된 요청입니다.", "/")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	t, ok := h.loadLed(ctx, w, r, user)
	if !ok {
		return
	}
	back := groupURL(t.Group.ID) + "/registration"
	if t.Group.SelectionComplete() {
		h.flash(w, r, "info", "이미 최종 등록된 그룹입니다.")
		http.Redirect(w, r, groupURL(t.Group.ID), http.StatusSeeOther)
		return
	}

	in := models.RegistrationInput{
		SubLeaderID:               r.PostFormValue("subLeaderId"),
		AllowNewHires:             r.PostFormValue("allowNewHires") == "on",
		LeaderOrientationAttended: r.PostFormValue("leaderOrientationAttended") == "on",
	}
	if in.SubLeaderID != "" {
		selected, err := h.selected(ctx, t)
		if err != nil {
			h.ErrLog.LogBackendError(w, r, "groups: list selected members", err, back)
			return
		}
		if !containsUser(selected, in.SubLeaderID) {
			h.flash(w, r, "error", "부리더는 선발된 부원 중에서 지정해 주세요.")
			http.Redirect(w, r, back, http.StatusSeeOther)
			return
		}
	}

	if _, err := h.Memberships.Finalize(ctx, user.ID, t.Chapter.ID, t.Group.ID, in); err != nil {
		if msg := refusal(err, "최종 등록에 실패했습니다."); msg != "" {
			h.flash(w, r, "error", msg)
			http.Redirect(w, r, back, http.StatusSeeOther)
			return
		}
		h.ErrLog.LogBackendError(w, r, "groups: finalize registration", err, back)
		return
	}

	h.AuditLog.RegistrationFinalized(ctx, r, user.ID, t.Chapter.ID, t.Group.ID, in)
	h.record(ctx, user.ID, activity.EventFinalize, t, "", nil)
	h.flash(w, r, "success", "최종 등록이 완료되었습니다.")
	http.Redirect(w, r, groupURL(t.Group.ID), http.StatusSeeOther)
}

func (h *Handler) selected(ctx context.Context, t target) ([]memberRow, error) {
	list, err := h.Memberships.ListAll(ctx, t.Chapter.ID, t.Group.ID, models.MembershipQuery{ActiveOnly: true, Role: models.RoleRegular})
	if err != nil {
		return nil, err
	}
	_, selected := splitMembers(list, h.Loc)
	return selected, nil
}

func containsUser(rows []memberRow, userID string) bool {
	for _, row := range rows {
		if row.UserID == userID {
			return true
		}
	}
	return false
}
