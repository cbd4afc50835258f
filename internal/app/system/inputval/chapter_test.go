package inputval

import (
	"strings"
	"testing"
	"time"

	"github.com/metacode22/study-somoim/internal/domain/models"
)

var kst = time.FixedZone("KST", 9*60*60)

func form(over map[string]string) func(string) string {
	base := map[string]string{
		"name":             "10기",
		"sequence":         "10",
		"applicationStart": "2025-03-01",
		"applicationEnd":   "2025-03-05",
		"recruitmentStart": "2025-03-06",
		"recruitmentEnd":   "2025-03-15",
		"activityStart":    "2025-03-17",
		"activityEnd":      "2025-05-16",
	}
	for k, v := range over {
		base[k] = v
	}
	return func(k string) string { return base[k] }
}

func TestParseChapterForm_Bounds(t *testing.T) {
	f, res := ParseChapterForm(form(nil), kst)
	if res.HasErrors() {
		t.Fatalf("parse errors: %v", res.All())
	}
	if got := f.ApplicationStart; got.Hour() != 0 || got.Location() != kst {
		t.Errorf("start = %v, want 00:00 KST", got)
	}
	if got := f.ApplicationEnd; got.Hour() != 23 || got.Minute() != 59 || got.Second() != 59 {
		t.Errorf("end = %v, want 23:59:59", got)
	}
	if f.Sequence != 10 {
		t.Errorf("sequence = %d", f.Sequence)
	}
}

func TestParseChapterForm_BadDate(t *testing.T) {
	_, res := ParseChapterForm(form(map[string]string{"activityEnd": "16/05/2025"}), kst)
	if res.ByField()["activityEnd"] == "" {
		t.Errorf("expected activityEnd error, got %v", res.Errors)
	}
}

func TestParseChapterForm_Sequence(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"12", 12, false},
		{" 7 ", 7, false},
		{"", 0, false},
		{"12abc", 0, true},
		{"1.5", 0, true},
		{"열", 0, true},
	}
	for _, tt := range tests {
		f, res := ParseChapterForm(form(map[string]string{"sequence": tt.raw}), kst)
		if got := res.ByField()["sequence"] != ""; got != tt.wantErr {
			t.Errorf("sequence %q: error = %v, want %v", tt.raw, got, tt.wantErr)
		}
		if f.Sequence != tt.want {
			t.Errorf("sequence %q: got %d, want %d", tt.raw, f.Sequence, tt.want)
		}
	}
}

func TestValidateChapter(t *testing.T) {
	tests := []struct {
		name      string
		over      map[string]string
		wantField string
		wantMsg   string
	}{
		{name: "valid", over: nil},
		{name: "activity exactly 50 days", over: map[string]string{"activityEnd": "2025-05-06"}},
		{name: "activity exactly 70 days", over: map[string]string{"activityEnd": "2025-05-26"}},
		{
			name:      "missing name",
			over:      map[string]string{"name": "  "},
			wantField: "name",
			wantMsg:   "기수 이름을(를) 입력해 주세요.",
		},
		{
			name:      "application ends before it starts",
			over:      map[string]string{"applicationEnd": "2025-02-28"},
			wantField: "applicationEnd",
			wantMsg:   "신규 개설 신청 종료일은(는) 신규 개설 신청 시작일보다 빠를 수 없습니다.",
		},
		{
			name:      "recruitment starts on the last application day",
			over:      map[string]string{"recruitmentStart": "2025-03-05"},
			wantField: "recruitmentStart",
			wantMsg:   "부원 모집 시작일은(는) 신규 개설 신청 종료일 이후여야 합니다.",
		},
		{
			name:      "recruitment ends before it starts",
			over:      map[string]string{"recruitmentEnd": "2025-03-05"},
			wantField: "recruitmentEnd",
		},
		{
			name:      "activity starts on the last recruitment day",
			over:      map[string]string{"activityStart": "2025-03-15"},
			wantField: "activityStart",
			wantMsg:   "활동 시작일은(는) 부원 모집 종료일 이후여야 합니다.",
		},
		{
			name:      "activity too short",
			over:      map[string]string{"activityEnd": "2025-05-05"},
			wantField: "activityEnd",
			wantMsg:   "활동 기간은 50일 이상 70일 이하여야 합니다.",
		},
		{
			name:      "activity too long",
			over:      map[string]string{"activityEnd": "2025-05-27"},
			wantField: "activityEnd",
			wantMsg:   "활동 기간은 50일 이상 70일 이하여야 합니다.",
		},
		{
			name:      "missing date",
			over:      map[string]string{"activityStart": ""},
			wantField: "activityStart",
			wantMsg:   "활동 시작일을(를) 입력해 주세요.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, parsed := ParseChapterForm(form(tt.over), kst)
			if parsed.HasErrors() {
				t.Fatalf("parse errors: %v", parsed.All())
			}
			res := ValidateChapter(f)
			if tt.wantField == "" {
				if res.HasErrors() {
					t.Fatalf("unexpected errors: %v", res.All())
				}
				return
			}
			msg, ok := res.ByField()[tt.wantField]
			if !ok {
				t.Fatalf("no error for %s; got %v", tt.wantField, res.Errors)
			}
			if tt.wantMsg != "" && msg != tt.wantMsg {
				t.Errorf("message = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestChapterForm_RoundTrip(t *testing.T) {
	f, _ := ParseChapterForm(form(nil), kst)
	in := f.Input()
	back := ChapterFormFrom(modelsChapter(in.Name, in.Sequence, in.Periods))
	if back != f {
		t.Errorf("round trip changed form:\n%+v\n%+v", back, f)
	}
}

func TestDaysBetween(t *testing.T) {
	start := time.Date(2025, 3, 17, 0, 0, 0, 0, kst)
	end := time.Date(2025, 5, 16, 23, 59, 59, 0, kst)
	if got := DaysBetween(start, end); got != 60 {
		t.Errorf("DaysBetween = %d, want 60", got)
	}
}

func TestValidateGroupForm(t *testing.T) {
	get := func(m map[string]string) func(string) string { return func(k string) string { return m[k] } }
	ok := map[string]string{
		"teamId":        "t1",
		"type":          "소모임",
		"category":      "운동",
		"name":          "퇴근 후 러닝",
		"hashtags":      "#러닝, 건강",
		"capacity":      "12",
		"day":           "수",
		"time":          "19:30",
		"location":      "한강공원",
		"operationPlan": "매주 5km",
	}
	f, parsed := ParseGroupForm(get(ok))
	if parsed.HasErrors() {
		t.Fatal(parsed.All())
	}
	if res := Validate(f); res.HasErrors() {
		t.Fatalf("unexpected errors: %v", res.All())
	}
	in := f.Input("u1")
	if in.MeetingSchedule != "매주 수 19:30" || in.Type != "somoim" || in.LeaderID != "u1" {
		t.Errorf("input = %+v", in)
	}
	if !strings.Contains(in.Description, "#러닝 #건강") || !strings.Contains(in.Description, "12명") {
		t.Errorf("description = %q", in.Description)
	}

	bad := map[string]string{"type": "동호회", "category": "잡담", "day": "일요일"}
	f, _ = ParseGroupForm(get(bad))
	byField := Validate(f).ByField()
	for _, field := range []string{"teamId", "type", "category", "name", "day", "location", "operationPlan"} {
		if byField[field] == "" {
			t.Errorf("expected error for %s", field)
		}
	}
}

func modelsChapter(name string, seq int, p models.ChapterPeriods) models.Chapter {
	return models.Chapter{Name: name, Sequence: seq, Periods: p}
}
