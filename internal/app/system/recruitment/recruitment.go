// Package recruitment holds the recruitment catalogue constants and the
// client-side filter applied to the recruiting group list.
package recruitment

import (
	"net/url"
	"strings"

	"github.com/metacode22/study-somoim/internal/app/system/schedule"
)

// Categories in display order.
var Categories = []string{
	"팀 / 파트 / 스쿼드",
	"운동",
	"AI",
	"자기계발",
	"취미",
	"문화",
	"기타",
}

// Option is a value with its display label.
type Option struct {
	Value string
	Label string
}

// ApplyStatusAvailable are statuses under which a group still accepts applications.
var ApplyStatusAvailable = []Option{
	{Value: "regular", Label: "정규 인원"},
	{Value: "guest", Label: "순참 인원"},
	{Value: "newcomer", Label: "신규 입사자 중간 합류"},
}

// ApplyStatusUnavailable are statuses under which a group no longer accepts applications.
var ApplyStatusUnavailable = []Option{
	{Value: "auto", Label: "자동 선발"},
	{Value: "closed", Label: "선발 완료"},
}

// StatusLabel returns the display label for an applyStatus value.
func StatusLabel(v string) string {
	for _, o := range ApplyStatusAvailable {
		if o.Value == v {
			return o.Label
		}
	}
	for _, o := range ApplyStatusUnavailable {
		if o.Value == v {
			return o.Label
		}
	}
	return v
}

// IsAvailableStatus reports whether v is one of the "still accepting" statuses.
func IsAvailableStatus(v string) bool {
	for _, o := range ApplyStatusAvailable {
		if o.Value == v {
			return true
		}
	}
	return false
}

// Item is anything the filter can inspect.
type Item interface {
	FilterApplyStatus() string
	FilterScheduleDays() []schedule.Day
	FilterCategory() string
}

// Filters is the filter state.
//
// ApplyAvailable and ApplyUnavailable both test the single applyStatus field of
// an item. The form writes one of them at a time; when both are set to
// different values nothing can match.
type Filters struct {
	ApplyAvailable   string
	ApplyUnavailable string
	Days             []schedule.Day
	Categories       []string
}

// Status returns the single status the filter constrains to, or "" for none.
// ok is false when both facets are set to conflicting values.
func (f Filters) Status() (status string, ok bool) {
	a, u := facet(f.ApplyAvailable), facet(f.ApplyUnavailable)
	switch {
	case a == "" && u == "":
		return "", true
	case a == "":
		return u, true
	case u == "" || a == u:
		return a, true
	}
	return "", false
}

// IsZero reports whether the filter is a no-op.
func (f Filters) IsZero() bool {
	s, ok := f.Status()
	return ok && s == "" && len(f.Days) == 0 && len(f.Categories) == 0
}

func facet(v string) string {
	v = strings.TrimSpace(v)
	if v == "all" {
		return ""
	}
	return v
}

// Apply returns the items matching every active facet, preserving order.
// Within the day and category facets a single match is enough.
func Apply[T Item](items []T, f Filters) []T {
	status, ok := f.Status()
	out := make([]T, 0, len(items))
	if !ok {
		return out
	}

	cats := make(map[string]struct{}, len(f.Categories))
	for _, c := range f.Categories {
		cats[c] = struct{}{}
	}

	for _, it := range items {
		if status != "" && it.FilterApplyStatus() != status {
			continue
		}
		if len(f.Days) > 0 && !intersects(it.FilterScheduleDays(), f.Days) {
			continue
		}
		if len(cats) > 0 {
			if _, hit := cats[it.FilterCategory()]; !hit {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

func intersects(have, want []schedule.Day) bool {
	for _, d := range have {
		if schedule.Contains(want, d) {
			return true
		}
	}
	return false
}

// FromQuery reads filter state from URL query values. The form sends a single
// "status" field; applyAvailable/applyUnavailable are accepted for links built
// by older pages. Unknown days and categories are dropped.
func FromQuery(q url.Values) Filters {
	var f Filters

	if s := facet(q.Get("status")); s != "" {
		if IsAvailableStatus(s) {
			f.ApplyAvailable = s
		} else {
			f.ApplyUnavailable = s
		}
	}
	if v := facet(q.Get("applyAvailable")); v != "" {
		f.ApplyAvailable = v
	}
	if v := facet(q.Get("applyUnavailable")); v != "" {
		f.ApplyUnavailable = v
	}

	for _, raw := range q["day"] {
		if d, ok := schedule.ParseDay(raw); ok && !schedule.Contains(f.Days, d) {
			f.Days = append(f.Days, d)
		}
	}
	for _, raw := range q["category"] {
		raw = strings.TrimSpace(raw)
		if isCategory(raw) && !containsString(f.Categories, raw) {
			f.Categories = append(f.Categories, raw)
		}
	}
	return f
}

// Query renders f back into query values for pagination and API links.
func (f Filters) Query() url.Values {
	q := url.Values{}
	if s, ok := f.Status(); ok && s != "" {
		q.Set("status", s)
	} else if !ok {
		q.Set("applyAvailable", f.ApplyAvailable)
		q.Set("applyUnavailable", f.ApplyUnavailable)
	}
	for _, d := range f.Days {
		q.Add("day", string(d))
	}
	for _, c := range f.Categories {
		q.Add("category", c)
	}
	return q
}

func isCategory(s string) bool {
	return containsString(Categories, s)
}

func containsString(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
