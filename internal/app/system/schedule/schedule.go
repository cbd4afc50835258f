// Package schedule extracts weekday tokens from free-text meeting schedules.
//
// Matching is substring containment on single Korean syllables, so incidental
// matches are possible ("일정 변동" contains 일 and maps to 주말).
package schedule

import "strings"

// Day is one weekday bucket.
type Day string

const (
	Mon       Day = "월"
	Tue       Day = "화"
	Wed       Day = "수"
	Thu       Day = "목"
	Fri       Day = "금"
	Weekend   Day = "주말"
	Irregular Day = "비정기"
)

// AllDays lists every bucket in display order.
var AllDays = []Day{Mon, Tue, Wed, Thu, Fri, Weekend, Irregular}

// Weekdays are the buckets ParseDays can emit besides Irregular.
var Weekdays = []Day{Mon, Tue, Wed, Thu, Fri, Weekend}

var weekendTokens = []string{"토", "일", "주말"}

// ParseDays returns the buckets whose token appears in s, in AllDays order.
// It never returns an empty slice; a string with no token yields [비정기].
func ParseDays(s string) []Day {
	var out []Day
	for _, d := range []Day{Mon, Tue, Wed, Thu, Fri} {
		if strings.Contains(s, string(d)) {
			out = append(out, d)
		}
	}
	// Plain substring match: "월요일" also contains the 일 token.
	for _, tok := range weekendTokens {
		if strings.Contains(s, tok) {
			out = append(out, Weekend)
			break
		}
	}
	if len(out) == 0 {
		return []Day{Irregular}
	}
	return out
}

// ParseDayStrings is ParseDays with string results, for templates and view models.
func ParseDayStrings(s string) []string {
	days := ParseDays(s)
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = string(d)
	}
	return out
}

// Overlaps reports whether a and b share a day. Irregular never overlaps,
// since it means "no fixed day".
func Overlaps(a, b []Day) bool {
	seen := make(map[Day]struct{}, len(a))
	for _, d := range a {
		if d != Irregular {
			seen[d] = struct{}{}
		}
	}
	for _, d := range b {
		if _, ok := seen[d]; ok {
			return true
		}
	}
	return false
}

// Contains reports whether days includes d.
func Contains(days []Day, d Day) bool {
	for _, x := range days {
		if x == d {
			return true
		}
	}
	return false
}

// ParseDay converts a form value into a Day, reporting whether it is known.
func ParseDay(s string) (Day, bool) {
	s = strings.TrimSpace(s)
	for _, d := range AllDays {
		if string(d) == s {
			return d, true
		}
	}
	return "", false
}

// GroupByDay buckets items by every day their schedule maps to. An item that
// meets on two days appears under both. Buckets come back in AllDays order and
// empty buckets are omitted.
func GroupByDay[T any](items []T, schedule func(T) string) []Bucket[T] {
	byDay := make(map[Day][]T)
	for _, it := range items {
		for _, d := range ParseDays(schedule(it)) {
			byDay[d] = append(byDay[d], it)
		}
	}
	out := make([]Bucket[T], 0, len(byDay))
	for _, d := range AllDays {
		if list, ok := byDay[d]; ok {
			out = append(out, Bucket[T]{Day: d, Items: list})
		}
	}
	return out
}

// Bucket is one weekday group produced by GroupByDay.
type Bucket[T any] struct {
	Day   Day
	Items []T
}

// FormatMeeting builds the meeting schedule string sent when a group is opened.
func FormatMeeting(day Day, clock string) string {
	clock = strings.TrimSpace(clock)
	if day == Irregular {
		if clock == "" {
			return string(Irregular)
		}
		return string(Irregular) + " " + clock
	}
	if clock == "" {
		return "매주 " + string(day)
	}
	return "매주 " + string(day) + " " + clock
}
