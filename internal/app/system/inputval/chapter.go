package inputval

import (
	"strconv"
	"strings"
	"time"

	"github.com/metacode22/study-somoim/internal/domain/models"
)

// DateLayout is the HTML date input format.
const DateLayout = "2006-01-02"

// ChapterForm is the admin chapter form after date parsing.
type ChapterForm struct {
	Name     string `validate:"required,max=50" label:"기수 이름" form:"name"`
	Sequence int    `validate:"gte=0" label:"기수 번호" form:"sequence"`

	ApplicationStart time.Time `validate:"required" label:"신규 개설 신청 시작일" form:"applicationStart"`
	ApplicationEnd   time.Time `validate:"required,gtefield=ApplicationStart" label:"신규 개설 신청 종료일" form:"applicationEnd"`
	RecruitmentStart time.Time `validate:"required,gtfield=ApplicationEnd" label:"부원 모집 시작일" form:"recruitmentStart"`
	RecruitmentEnd   time.Time `validate:"required,gtefield=RecruitmentStart" label:"부원 모집 종료일" form:"recruitmentEnd"`
	ActivityStart    time.Time `validate:"required,gtfield=RecruitmentEnd" label:"활동 시작일" form:"activityStart"`
	ActivityEnd      time.Time `validate:"required,gtefield=ActivityStart,activityspan" label:"활동 종료일" form:"activityEnd"`
}

// ParseChapterForm reads raw form values. Dates are YYYY-MM-DD in loc;
// period starts are taken at 00:00 and ends at 23:59:59. Unparseable dates
// are reported in the returned Result and left zero in the form.
func ParseChapterForm(get func(string) string, loc *time.Location) (ChapterForm, *Result) {
	res := &Result{}
	f := ChapterForm{Name: strings.TrimSpace(get("name"))}

	if s := strings.TrimSpace(get("sequence")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			res.Add("sequence", "기수 번호는 숫자여야 합니다.")
		}
		f.Sequence = n
	}

	date := func(field, label string, endOfDay bool) time.Time {
		raw := strings.TrimSpace(get(field))
		if raw == "" {
			return time.Time{}
		}
		t, err := ParseDate(raw, loc, endOfDay)
		if err != nil {
			res.Add(field, label+" 형식이 올바르지 않습니다.")
		}
		return t
	}
	f.ApplicationStart = date("applicationStart", "신규 개설 신청 시작일", false)
	f.ApplicationEnd = date("applicationEnd", "신규 개설 신청 종료일", true)
	f.RecruitmentStart = date("recruitmentStart", "부원 모집 시작일", false)
	f.RecruitmentEnd = date("recruitmentEnd", "부원 모집 종료일", true)
	f.ActivityStart = date("activityStart", "활동 시작일", false)
	f.ActivityEnd = date("activityEnd", "활동 종료일", true)
	return f, res
}

// ParseDate parses a YYYY-MM-DD value in loc.
func ParseDate(s string, loc *time.Location, endOfDay bool) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, nil
}

// ValidateChapter checks the chapter form: name present, each period ordered,
// recruitment after application, activity after recruitment, and an activity
// span of 50 to 70 days.
func ValidateChapter(f ChapterForm) *Result {
	return Validate(f)
}

// Input converts a validated form into the backend body.
func (f ChapterForm) Input() models.ChapterInput {
	return models.ChapterInput{
		Name:     f.Name,
		Sequence: f.Sequence,
		Periods: models.ChapterPeriods{
			ApplicationStart: f.ApplicationStart,
			ApplicationEnd:   f.ApplicationEnd,
			RecruitmentStart: f.RecruitmentStart,
			RecruitmentEnd:   f.RecruitmentEnd,
			ActivityStart:    f.ActivityStart,
			ActivityEnd:      f.ActivityEnd,
		},
	}
}

// ChapterFormFrom fills the form from an existing chapter.
func ChapterFormFrom(ch models.Chapter) ChapterForm {
	p := ch.Periods
	return ChapterForm{
		Name:             ch.Name,
		Sequence:         ch.Sequence,
		ApplicationStart: p.ApplicationStart,
		ApplicationEnd:   p.ApplicationEnd,
		RecruitmentStart: p.RecruitmentStart,
		RecruitmentEnd:   p.RecruitmentEnd,
		ActivityStart:    p.ActivityStart,
		ActivityEnd:      p.ActivityEnd,
	}
}
