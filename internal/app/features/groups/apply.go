// internal/app/features/groups/apply.go
package groups

import (
	"context"
	"net/http"

	uierrors "github.com/metacode22/study-somoim/internal/app/features/errors"
	"github.com/metacode22/study-somoim/internal/app/store/activity"
	"github.com/metacode22/study-somoim/internal/app/system/auth"
	"github.com/metacode22/study-somoim/internal/app/system/timeouts"
	"github.com/metacode22/study-somoim/internal/domain/models"
	"go.uber.org/zap"
)

const applyFailed = "신청을 완료할 수 없어요."

// HandleApply runs the eligibility pre-check and submits the application.
// The outcome comes back as a flash on the detail page.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "groups: parse apply form", err, "잘못된 요청입니다.", "/")
		return
	}
	pt := models.ParticipationType(r.PostFormValue("participationType"))
	if !pt.Valid() {
		uierrors.RenderBadRequest(w, r, "참여 방식을 선택해 주세요.", "/")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	t, ok := h.loadTarget(ctx, w, r)
	if !ok {
		return
	}
	back := groupURL(t.Group.ID)

	m, err := h.Memberships.Apply(ctx, t.Chapter.ID, t.Group.ID, models.ApplyInput{UserID: user.ID, ParticipationType: pt})
	if err != nil {
		if msg := refusal(err, applyFailed); msg != "" {
			h.Log.Info("application refused",
				zap.String("user_id", user.ID),
				zap.String("chapter_group_id", t.Group.ID),
				zap.String("reason", msg))
			h.flash(w, r, "error", msg)
			http.Redirect(w, r, back, http.StatusSeeOther)
			return
		}
		h.ErrLog.LogBackendError(w, r, "groups: apply", err, back)
		return
	}

	h.record(ctx, user.ID, activity.EventJoin, t, pt.Label()+"(으)로 신청", map[string]string{
		"membership_id":      m.ID,
		"participation_type": string(pt),
	})
	h.flash(w, r, "success", "신청이 완료되었습니다.")
	http.Redirect(w, r, back, http.StatusSeeOther)
}
