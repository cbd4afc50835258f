// internal/app/features/groups/selection.go
package groups

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	uierrors "github.com/metacode22/study-somoim/internal/app/features/errors"
	"github.com/metacode22/study-somoim/internal/app/store/activity"
	"github.com/metacode22/study-somoim/internal/app/system/auth"
	"github.com/metacode22/study-somoim/internal/app/system/groupcard"
	"github.com/metacode22/study-somoim/internal/app/system/phase"
	"github.com/metacode22/study-somoim/internal/app/system/timeouts"
	"github.com/metacode22/study-somoim/internal/app/system/viewdata"
	"github.com/metacode22/study-somoim/internal/domain/models"
	"go.uber.org/zap"
)

type memberRow struct {
	ID        string
	UserID    string
	Name      string
	AppliedAs string
	AppliedAt string
}

// groupActivityLimit caps the recent-activity panel on the selection page.
const groupActivityLimit = 20

type activityRow struct {
	When  string
	Label string
	Name  string
	Desc  string
}

type selectionData struct {
	viewdata.BaseVM

	Card               groupcard.Card
	SelectionPeriod    string
	RegistrationPeriod string
	SelectionComplete  bool

	Applicants []memberRow
	Selected   []memberRow
	Activity   []activityRow
}

// splitMembers separates active memberships into applicants (observer role)
// and selected members (regular role). Leaders and cancelled rows are dropped.
func splitMembers(list []models.Membership, loc *time.Location) (applicants, selected []memberRow) {
	for _, m := range list {
		if !m.Active() {
			continue
		}
		row := memberRow{
			ID:        m.ID,
			UserID:    m.User.ID,
			Name:      m.User.DisplayName(),
			AppliedAs: m.ParticipationType.Label(),
		}
		if !m.CreatedAt.IsZero() {
			row.AppliedAt = phase.FormatDate(m.CreatedAt, loc)
		}
		switch m.Role {
		case models.RoleObserver:
			applicants = append(applicants, row)
		case models.RoleRegular:
			selected = append(selected, row)
		}
	}
	return applicants, selected
}

// ServeSelection lists applicants and selected members for the group leader.
func (h *Handler) ServeSelection(w http.ResponseWriter, r *http.Request) {
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
	members, err := h.Memberships.ListAll(ctx, t.Chapter.ID, t.Group.ID, models.MembershipQuery{ActiveOnly: true})
	if err != nil {
		h.ErrLog.LogBackendError(w, r, "groups: list memberships", err, groupURL(t.Group.ID))
		return
	}

	p := t.Chapter.Periods
	regStart, regEnd := phase.FinalRegistrationWindow(p)
	data := selectionData{
		BaseVM:             viewdata.NewBaseVM(r, t.Group.Name()+" 부원 선발", groupURL(t.Group.ID)),
		Card:               groupcard.From(*t.Group),
		SelectionPeriod:    phase.FormatRange(p.RecruitmentStart, p.RecruitmentEnd, h.Loc),
		RegistrationPeriod: phase.FormatRange(regStart, regEnd, h.Loc),
		SelectionComplete:  t.Group.SelectionComplete(),
	}
	data.Applicants, data.Selected = splitMembers(members, h.Loc)
	data.Activity = h.groupActivity(ctx, t.Group.ID, members)

	templates.Render(w, r, "group_selection", data)
}

// groupActivity returns the group's recent activity for the leader. Names
// come from the membership list; unknown users show their id. Read failures
// hide the panel.
func (h *Handler) groupActivity(ctx context.Context, groupID string, members []models.Membership) []activityRow {
	if h.Activity == nil {
		return nil
	}
	events, err := h.Activity.ListByGroup(ctx, groupID, groupActivityLimit)
	if err != nil {
		h.Log.Warn("groups: list group activity", zap.Error(err), zap.String("group_id", groupID))
		return nil
	}
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.User.ID] = m.User.DisplayName()
	}
	rows := make([]activityRow, 0, len(events))
	for _, e := range events {
		name, ok := names[e.UserID]
		if !ok {
			name = e.UserID
		}
		rows = append(rows, activityRow{
			When:  e.Timestamp.In(h.Loc).Format("01.02 15:04"),
			Label: e.Label(),
			Name:  name,
			Desc:  e.Description,
		})
	}
	return rows
}

// HandleSelect moves one applicant in or out of the selected list. The form
// field role is "regular" to select and "observer" to unselect.
func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "groups: parse select form", err, "잘못된 요청입니다.", "/")
		return
	}
	role := models.Role(r.PostFormValue("role"))
	if role != models.RoleRegular && role != models.RoleObserver {
		uierrors.RenderBadRequest(w, r, "알 수 없는 선발 요청입니다.", "/")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	t, ok := h.loadLed(ctx, w, r, user)
	if !ok {
		return
	}
	back := groupURL(t.Group.ID) + "/selection"
	if t.Group.SelectionComplete() {
		h.flash(w, r, "error", "최종 등록이 완료되어 선발을 변경할 수 없습니다.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	m, err := h.Memberships.Select(ctx, user.ID, t.Chapter.ID, t.Group.ID, chi.URLParam(r, "membershipID"), role)
	if err != nil {
		if msg := refusal(err, "처리에 실패했습니다."); msg != "" {
			h.flash(w, r, "error", msg)
			http.Redirect(w, r, back, http.StatusSeeOther)
			return
		}
		h.ErrLog.LogBackendError(w, r, "groups: select member", err, back)
		return
	}

	h.AuditLog.MemberSelected(ctx, r, user.ID, t.Chapter.ID, t.Group.ID, *m)
	event, msg := activity.EventSelect, "선발이 완료되었습니다."
	if role == models.RoleObserver {
		event, msg = activity.EventUnselect, "선발이 취소되었습니다."
	}
	h.record(ctx, m.User.ID, event, t, "", map[string]string{
		"membership_id": m.ID,
		"leader_id":     user.ID,
	})
	h.flash(w, r, "success", msg)
	http.Redirect(w, r, back, http.StatusSeeOther)
}
