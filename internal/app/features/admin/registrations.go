// internal/app/features/admin/registrations.go
package admin

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/metacode22/study-somoim/internal/app/system/phase"
	"github.com/metacode22/study-somoim/internal/app/system/timeouts"
	"github.com/metacode22/study-somoim/internal/app/system/viewdata"
	"github.com/metacode22/study-somoim/internal/domain/models"
)

type registrationRow struct {
	ID                  string
	Name                string
	Type                models.GroupType
	LeaderName          string
	SubLeaderName       string
	AllowNewHires       bool
	OrientationAttended bool
	RegisteredAt        string
}

type registrationsData struct {
	viewdata.BaseVM

	Chapter *models.Chapter
	Window  string
	Rows    []registrationRow
}

// ServeRegistrations lists the groups whose leaders have finalized
// registration in the selected chapter.
func (h *Handler) ServeRegistrations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "admin registrations")
	defer cancel()

	data := registrationsData{BaseVM: viewdata.NewBaseVM(r, "최종 등록 현황", "/admin")}

	ch, err := h.chapterFor(ctx, r)
	if err != nil {
		h.ErrLog.LogBackendError(w, r, "admin: load chapter", err, "/admin")
		return
	}
	if ch == nil {
		templates.Render(w, r, "admin_registrations", data)
		return
	}
	data.Chapter = ch
	start, end := phase.FinalRegistrationWindow(ch.Periods)
	data.Window = phase.FormatRange(start, end, h.Loc)

	list, err := h.Groups.Registrations(ctx, ch.ID)
	if err != nil {
		h.ErrLog.LogBackendError(w, r, "admin: list registrations", err, "/admin")
		return
	}
	for _, cg := range list {
		row := registrationRow{
			ID:                  cg.ID,
			Name:                cg.Name(),
			Type:                cg.EffectiveType(),
			LeaderName:          cg.LeaderDisplayName(),
			AllowNewHires:       cg.AllowNewHires,
			OrientationAttended: cg.LeaderOrientationAttended,
		}
		if cg.SubLeader != nil {
			row.SubLeaderName = cg.SubLeader.DisplayName()
		}
		if cg.RegisteredAt != nil {
			row.RegisteredAt = phase.FormatDate(*cg.RegisteredAt, h.Loc)
		}
		data.Rows = append(data.Rows, row)
	}
	templates.Render(w, r, "admin_registrations", data)
}
