// internal/app/features/auditlog/types.go
package auditlog

import (
	"sort"

	"github.com/metacode22/study-somoim/internal/app/store/audit"
	"github.com/metacode22/study-somoim/internal/app/system/paging"
	"github.com/metacode22/study-somoim/internal/app/system/viewdata"
)

// listItem represents a single audit event row for display.
type listItem struct {
	ID         string
	Timestamp  string
	Category   string
	EventType  string
	EventLabel string
	Actor      string
	Target     string
	ChapterID  string
	IP         string
	Success    bool
	Failure    string
	Details    []detail
}

type detail struct {
	Key   string
	Value string
}

// listData is the view model for the audit log list page.
type listData struct {
	viewdata.BaseVM

	Items []listItem

	// FailedLogins are the last day's failed sign-ins, first page only.
	FailedLogins []listItem

	// Filters
	Category  string
	EventType string
	ChapterID string
	UserID    string
	StartDate string
	EndDate   string

	// Filter options
	Categories []categoryOption
	EventTypes []categoryOption

	Nav     paging.Nav
	PrevURL string
	NextURL string
}

// categoryOption is a value/label pair for the filter dropdowns.
type categoryOption struct {
	Value string
	Label string
}

// allCategories returns the available categories for filtering.
func allCategories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryAuth, Label: "인증"},
		{Value: audit.CategoryAdmin, Label: "운영"},
	}
}

var eventLabels = map[string]string{
	audit.EventLoginSuccess:          "로그인",
	audit.EventLoginFailedDomain:     "로그인 실패 (도메인)",
	audit.EventLoginFailedOAuth:      "로그인 실패 (OAuth)",
	audit.EventLoginFailedState:      "로그인 실패 (state)",
	audit.EventLogout:                "로그아웃",
	audit.EventChapterCreated:        "기수 생성",
	audit.EventChapterUpdated:        "기수 수정",
	audit.EventChapterDeleted:        "기수 삭제",
	audit.EventApplicationCreated:    "개설 신청",
	audit.EventMemberSelected:        "부원 선발",
	audit.EventMemberUnselected:      "선발 취소",
	audit.EventRegistrationFinalized: "최종 등록",
}

// eventLabel returns the Korean label for an event type, or the raw type.
func eventLabel(t string) string {
	if l, ok := eventLabels[t]; ok {
		return l
	}
	return t
}

// eventTypesForCategory returns the event types for a given category.
// If category is empty, returns all event types.
func eventTypesForCategory(category string) []categoryOption {
	authEvents := []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailedDomain,
		audit.EventLoginFailedOAuth,
		audit.EventLoginFailedState,
		audit.EventLogout,
	}
	adminEvents := []string{
		audit.EventChapterCreated,
		audit.EventChapterUpdated,
		audit.EventChapterDeleted,
		audit.EventApplicationCreated,
		audit.EventMemberSelected,
		audit.EventMemberUnselected,
		audit.EventRegistrationFinalized,
	}

	var types []string
	switch category {
	case audit.CategoryAuth:
		types = authEvents
	case audit.CategoryAdmin:
		types = adminEvents
	default:
		types = append(append(types, authEvents...), adminEvents...)
	}

	out := make([]categoryOption, len(types))
	for i, t := range types {
		out[i] = categoryOption{Value: t, Label: eventLabel(t)}
	}
	return out
}

func sortedDetails(m map[string]string) []detail {
	out := make([]detail, 0, len(m))
	for k, v := range m {
		out = append(out, detail{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
