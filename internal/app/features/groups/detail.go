// internal/app/features/groups/detail.go
package groups

import (
	"context"
	"html/template"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/metacode22/study-somoim/internal/app/features/errors"
	"github.com/metacode22/study-somoim/internal/app/system/auth"
	"github.com/metacode22/study-somoim/internal/app/system/groupcard"
	"github.com/metacode22/study-somoim/internal/app/system/htmlsanitize"
	"github.com/metacode22/study-somoim/internal/app/system/phase"
	"github.com/metacode22/study-somoim/internal/app/system/timeouts"
	"github.com/metacode22/study-somoim/internal/app/system/viewdata"
	"github.com/metacode22/study-somoim/internal/domain/models"
)

type detailData struct {
	viewdata.BaseVM

	Card              groupcard.Card
	Description       template.HTML
	OperationPlan     template.HTML
	SelectionPeriod   string
	ActivityPeriod    string
	IsLeader          bool
	SelectionComplete bool

	// Applied is the viewer's active membership in this group, if any.
	Applied   *models.Membership
	AppliedAs string
	CanApply  bool

	Regular  models.ParticipationType
	Observer models.ParticipationType
}

// ServeDetail renders one chapter group with the viewer's apply options.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	t, ok := h.loadTarget(ctx, w, r)
	if !ok {
		return
	}
	cg := t.Group
	p := t.Chapter.Periods

	data := detailData{
		BaseVM:            viewdata.NewBaseVM(r, cg.Name(), "/"),
		Card:              groupcard.From(*cg),
		Description:       htmlsanitize.PrepareForDisplay(cg.Description()),
		OperationPlan:     htmlsanitize.PrepareForDisplay(cg.OperationPlan),
		SelectionPeriod:   phase.FormatRange(p.RecruitmentStart, p.RecruitmentEnd, h.Loc),
		ActivityPeriod:    phase.FormatRange(p.ActivityStart, p.ActivityEnd, h.Loc),
		IsLeader:          cg.IsLedBy(user.ID),
		SelectionComplete: cg.SelectionComplete(),
		Regular:           models.ParticipationRegular,
		Observer:          models.ParticipationObserver,
	}

	if !data.IsLeader {
		mine, err := h.Memberships.Mine(ctx, t.Chapter.ID, user.ID)
		if err != nil {
			h.ErrLog.LogBackendError(w, r, "groups: load my memberships", err, "/")
			return
		}
		for _, e := range mine {
			if e.Group.ID == cg.ID && e.Membership.Active() {
				m := e.Membership
				data.Applied = &m
				data.AppliedAs = m.ParticipationType.Label()
				break
			}
		}
		data.CanApply = data.Applied == nil && !data.SelectionComplete
	}

	templates.Render(w, r, "group_detail", data)
}
