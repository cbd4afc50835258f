package recruitment

import (
	"net/url"
	"reflect"
	"testing"

	"github.com/metacode22/study-somoim/internal/app/system/schedule"
)

type item struct {
	name     string
	status   string
	schedule string
	category string
}

func (i item) FilterApplyStatus() string          { return i.status }
func (i item) FilterScheduleDays() []schedule.Day { return schedule.ParseDays(i.schedule) }
func (i item) FilterCategory() string             { return i.category }

var catalogue = []item{
	{"러닝", "regular", "매주 화 07:00", "운동"},
	{"LLM 스터디", "guest", "매주 수, 금 19:00", "AI"},
	{"독서", "closed", "매주 목", "자기계발"},
	{"보드게임", "newcomer", "주말", "취미"},
	{"사진", "auto", "비정기", "문화"},
}

func names(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.name
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		f    Filters
		want []string
	}{
		{"zero filter", Filters{}, []string{"러닝", "LLM 스터디", "독서", "보드게임", "사진"}},
		{"all is a no-op", Filters{ApplyAvailable: "all", ApplyUnavailable: "all"}, []string{"러닝", "LLM 스터디", "독서", "보드게임", "사진"}},
		{"available status", Filters{ApplyAvailable: "guest"}, []string{"LLM 스터디"}},
		{"unavailable status", Filters{ApplyUnavailable: "closed"}, []string{"독서"}},
		{"conflicting statuses match nothing", Filters{ApplyAvailable: "regular", ApplyUnavailable: "closed"}, []string{}},
		{"same status on both facets", Filters{ApplyAvailable: "regular", ApplyUnavailable: "regular"}, []string{"러닝"}},
		{"days are OR", Filters{Days: []schedule.Day{schedule.Tue, schedule.Fri}}, []string{"러닝", "LLM 스터디"}},
		{"irregular day", Filters{Days: []schedule.Day{schedule.Irregular}}, []string{"사진"}},
		{"categories are OR", Filters{Categories: []string{"운동", "취미"}}, []string{"러닝", "보드게임"}},
		{"facets are AND", Filters{Days: []schedule.Day{schedule.Tue, schedule.Wed}, Categories: []string{"AI"}}, []string{"LLM 스터디"}},
		{"no match", Filters{Categories: []string{"기타"}}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(Apply(catalogue, tt.f))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApply_Idempotent(t *testing.T) {
	filters := []Filters{
		{},
		{ApplyAvailable: "regular"},
		{Days: []schedule.Day{schedule.Wed}, Categories: []string{"AI", "운동"}},
		{ApplyUnavailable: "auto", Days: []schedule.Day{schedule.Irregular}},
	}
	for _, f := range filters {
		once := Apply(catalogue, f)
		twice := Apply(once, f)
		if !reflect.DeepEqual(names(once), names(twice)) {
			t.Errorf("Apply not idempotent for %+v: %v vs %v", f, names(once), names(twice))
		}
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := append([]item(nil), catalogue...)
	_ = Apply(in, Filters{Categories: []string{"AI"}})
	if !reflect.DeepEqual(in, catalogue) {
		t.Error("Apply modified its input slice")
	}
}

func TestFromQuery(t *testing.T) {
	q := url.Values{
		"status":   {"closed"},
		"day":      {"월", "수", "월", "일요일"},
		"category": {"AI", "unknown"},
	}
	f := FromQuery(q)

	if f.ApplyUnavailable != "closed" || f.ApplyAvailable != "" {
		t.Errorf("status not routed to the unavailable facet: %+v", f)
	}
	if !reflect.DeepEqual(f.Days, []schedule.Day{schedule.Mon, schedule.Wed}) {
		t.Errorf("Days = %v", f.Days)
	}
	if !reflect.DeepEqual(f.Categories, []string{"AI"}) {
		t.Errorf("Categories = %v", f.Categories)
	}

	f2 := FromQuery(url.Values{"status": {"newcomer"}})
	if f2.ApplyAvailable != "newcomer" {
		t.Errorf("status not routed to the available facet: %+v", f2)
	}

	if !FromQuery(url.Values{"status": {"all"}}).IsZero() {
		t.Error("status=all should be a zero filter")
	}
}

func TestFilters_QueryRoundTrip(t *testing.T) {
	f := Filters{ApplyAvailable: "guest", Days: []schedule.Day{schedule.Fri}, Categories: []string{"문화"}}
	back := FromQuery(f.Query())
	if !reflect.DeepEqual(f, back) {
		t.Errorf("round trip = %+v, want %+v", back, f)
	}
}

func TestStatusLabel(t *testing.T) {
	if got := StatusLabel("newcomer"); got != "신규 입사자 중간 합류" {
		t.Errorf("StatusLabel(newcomer) = %q", got)
	}
	if got := StatusLabel("x"); got != "x" {
		t.Errorf("StatusLabel(x) = %q", got)
	}
}
