// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/metacode22/study-somoim/internal/app/store/audit"
	"github.com/metacode22/study-somoim/internal/app/system/inputval"
	"github.com/metacode22/study-somoim/internal/app/system/paging"
	"github.com/metacode22/study-somoim/internal/app/system/timeouts"
	"github.com/metacode22/study-somoim/internal/app/system/viewdata"
	"github.com/metacode22/study-somoim/internal/domain/models"
	"go.uber.org/zap"
)

const pageSize = 50

// Failed sign-ins shown above the list.
const (
	failedLoginWindow = 24 * time.Hour
	failedLoginLimit  = 10
)

// filterFrom builds the store filter from the query string. Dates are
// YYYY-MM-DD in the configured zone and bound whole days.
func (h *Handler) filterFrom(r *http.Request, page int) audit.QueryFilter {
	f := audit.QueryFilter{
		Category:  strings.TrimSpace(query.Get(r, "category")),
		EventType: strings.TrimSpace(query.Get(r, "event_type")),
		ChapterID: strings.TrimSpace(query.Get(r, "chapter")),
		UserID:    strings.TrimSpace(query.Get(r, "user")),
		Limit:     pageSize,
		Offset:    int64((page - 1) * pageSize),
	}
	if s := strings.TrimSpace(query.Get(r, "start_date")); s != "" {
		if t, err := inputval.ParseDate(s, h.Loc, false); err == nil {
			f.StartTime = &t
		}
	}
	if s := strings.TrimSpace(query.Get(r, "end_date")); s != "" {
		if t, err := inputval.ParseDate(s, h.Loc, true); err == nil {
			f.EndTime = &t
		}
	}
	return f
}

func listURL(r *http.Request, page int) string {
	v := url.Values{}
	for _, k := range []string{"category", "event_type", "chapter", "user", "start_date", "end_date"} {
		if s := strings.TrimSpace(query.Get(r, k)); s != "" {
			v.Set(k, s)
		}
	}
	v.Set("page", strconv.Itoa(page))
	return "/admin/audit?" + v.Encode()
}

// ServeList handles GET /admin/audit - displays the audit log list with filtering.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	page := paging.ParsePage(r)
	filter := h.filterFrom(r, page)

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.Log.Error("failed to query audit events", zap.Error(err))
		h.ErrLog.LogServerError(w, r, "database error", err, "감사 로그를 불러오지 못했습니다.", "/admin")
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		h.Log.Error("failed to count audit events", zap.Error(err))
		h.ErrLog.LogServerError(w, r, "database error", err, "감사 로그를 불러오지 못했습니다.", "/admin")
		return
	}

	items := h.toItems(events)

	totalPages := int((total + pageSize - 1) / pageSize)
	if totalPages < 1 {
		totalPages = 1
	}
	nav := paging.FromMeta(models.PageMeta{
		Total:      int(total),
		Page:       page,
		Limit:      pageSize,
		TotalPages: totalPages,
	}, len(items))

	data := listData{
		BaseVM:     viewdata.NewBaseVM(r, "감사 로그", "/admin"),
		Items:      items,
		Category:   filter.Category,
		EventType:  filter.EventType,
		ChapterID:  filter.ChapterID,
		UserID:     filter.UserID,
		StartDate:  query.Get(r, "start_date"),
		EndDate:    query.Get(r, "end_date"),
		Categories: allCategories(),
		EventTypes: eventTypesForCategory(filter.Category),
		Nav:        nav,
	}
	if page == 1 {
		data.FailedLogins = h.recentFailedLogins(ctx)
	}
	if nav.HasPrev {
		data.PrevURL = listURL(r, nav.PrevPage)
	}
	if nav.HasNext {
		data.NextURL = listURL(r, nav.NextPage)
	}
	templates.Render(w, r, "audit_list", data)
}

// recentFailedLogins lists failed sign-ins from the last day. A lookup
// error hides the panel rather than failing the page.
func (h *Handler) recentFailedLogins(ctx context.Context) []listItem {
	events, err := h.Events.GetFailedLogins(ctx, h.Now().Add(-failedLoginWindow), failedLoginLimit)
	if err != nil {
		h.Log.Warn("failed to query failed logins", zap.Error(err))
		return nil
	}
	return h.toItems(events)
}

func (h *Handler) toItems(events []audit.Event) []listItem {
	items := make([]listItem, 0, len(events))
	for _, e := range events {
		items = append(items, listItem{
			ID:         e.ID.Hex(),
			Timestamp:  e.Timestamp.In(h.Loc).Format("2006.01.02 15:04:05"),
			Category:   e.Category,
			EventType:  e.EventType,
			EventLabel: eventLabel(e.EventType),
			Actor:      e.ActorID,
			Target:     firstNonEmpty(e.UserID, e.Email),
			ChapterID:  e.ChapterID,
			IP:         e.IP,
			Success:    e.Success,
			Failure:    e.FailureReason,
			Details:    sortedDetails(e.Details),
		})
	}
	return items
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
