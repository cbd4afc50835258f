// internal/app/features/admin/applications.go
package admin

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/metacode22/study-somoim/internal/app/system/paging"
	"github.com/metacode22/study-somoim/internal/app/system/phase"
	"github.com/metacode22/study-somoim/internal/app/system/timeouts"
	"github.com/metacode22/study-somoim/internal/app/system/viewdata"
	"github.com/metacode22/study-somoim/internal/domain/models"
)

type option struct {
	Value    string
	Label    string
	Selected bool
}

type applicationRow struct {
	ID           string
	Name         string
	Type         models.GroupType
	Category     string
	LeaderName   string
	Schedule     string
	ReviewStatus models.ReviewStatus
	ReviewLabel  string
	Extension    bool
	CreatedAt    string
}

type applicationsData struct {
	viewdata.BaseVM

	Chapter  *models.Chapter
	Chapters []option
	Types    []option
	Statuses []option
	Search   string
	Rows     []applicationRow
	Nav      paging.Nav
	PrevURL  string
	NextURL  string
}

// applicationFilter reads the list filters from the query string. Unknown
// type or status values are ignored.
func applicationFilter(r *http.Request) models.ApplicationQuery {
	q := models.ApplicationQuery{
		Page:   paging.ParsePage(r),
		Limit:  paging.PageSize,
		Search: strings.TrimSpace(query.Get(r, "search")),
	}
	if t := models.GroupType(query.Get(r, "type")).AppType(); t != "" {
		q.Type = t
	}
	s := models.ReviewStatus(query.Get(r, "reviewStatus"))
	for _, known := range models.ReviewStatuses {
		if s == known {
			q.ReviewStatus = s
		}
	}
	return q
}

// pageURL rebuilds the list URL for another page with the same filters.
func pageURL(chapterID string, q models.ApplicationQuery, page int) string {
	v := url.Values{}
	if chapterID != "" {
		v.Set("chapter", chapterID)
	}
	if q.Type != "" {
		v.Set("type", string(q.Type))
	}
	if q.ReviewStatus != "" {
		v.Set("reviewStatus", string(q.ReviewStatus))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	v.Set("page", strconv.Itoa(page))
	return "/admin/applications?" + v.Encode()
}

func applicationRows(list []models.ChapterGroup, loc *time.Location) []applicationRow {
	rows := make([]applicationRow, 0, len(list))
	for _, cg := range list {
		row := applicationRow{
			ID:           cg.ID,
			Name:         cg.Name(),
			Type:         cg.EffectiveType(),
			Category:     cg.EffectiveCategory(),
			LeaderName:   cg.LeaderDisplayName(),
			Schedule:     cg.ScheduleText(),
			ReviewStatus: cg.ReviewStatus,
			ReviewLabel:  cg.ReviewStatus.Label(),
			Extension:    cg.IsExtension,
		}
		if !cg.CreatedAt.IsZero() {
			row.CreatedAt = phase.FormatDate(cg.CreatedAt, loc)
		}
		rows = append(rows, row)
	}
	return rows
}

// ServeApplications lists a chapter's group applications with type, review
// status and search filters, one backend page at a time.
func (h *Handler) ServeApplications(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "admin applications")
	defer cancel()

	q := applicationFilter(r)
	data := applicationsData{
		BaseVM: viewdata.NewBaseVM(r, "개설 신청 목록", "/admin"),
		Search: q.Search,
	}
	for _, t := range models.GroupTypes {
		data.Types = append(data.Types, option{Value: string(t.AppType()), Label: string(t), Selected: t.AppType() == q.Type})
	}
	for _, s := range models.ReviewStatuses {
		data.Statuses = append(data.Statuses, option{Value: string(s), Label: s.Label(), Selected: s == q.ReviewStatus})
	}

	ch, err := h.chapterFor(ctx, r)
	if err != nil {
		h.ErrLog.LogBackendError(w, r, "admin: load chapter", err, "/admin")
		return
	}
	all, err := h.Chapters.List(ctx)
	if err != nil {
		h.ErrLog.LogBackendError(w, r, "admin: list chapters", err, "/admin")
		return
	}
	for _, c := range all {
		data.Chapters = append(data.Chapters, option{Value: c.ID, Label: c.Name, Selected: ch != nil && c.ID == ch.ID})
	}
	if ch == nil {
		templates.Render(w, r, "admin_applications", data)
		return
	}
	data.Chapter = ch

	page, err := h.Groups.Applications(ctx, ch.ID, q)
	if err != nil {
		h.ErrLog.LogBackendError(w, r, "admin: list applications", err, "/admin")
		return
	}
	data.Rows = applicationRows(page.Data, h.Loc)
	data.Nav = paging.FromMeta(page.Meta, len(page.Data))
	if data.Nav.HasPrev {
		data.PrevURL = pageURL(ch.ID, q, data.Nav.PrevPage)
	}
	if data.Nav.HasNext {
		data.NextURL = pageURL(ch.ID, q, data.Nav.NextPage)
	}
	templates.Render(w, r, "admin_applications", data)
}
