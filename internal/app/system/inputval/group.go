package inputval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/metacode22/study-somoim/internal/app/system/schedule"
	"github.com/metacode22/study-somoim/internal/domain/models"
)

// GroupForm is the new study/club form.
type GroupForm struct {
	TeamID        string `validate:"required" label:"소속 팀" form:"teamId"`
	Type          string `validate:"required,grouptype" label:"유형" form:"type"`
	Category      string `validate:"required,category" label:"카테고리" form:"category"`
	Name          string `validate:"required,max=40" label:"모임 이름" form:"name"`
	Description   string `validate:"max=1000" label:"소개" form:"description"`
	Hashtags      string `validate:"max=100" label:"해시태그" form:"hashtags"`
	Capacity      int    `validate:"gte=0,lte=200" label:"모집 인원" form:"capacity"`
	Day           string `validate:"required,scheduleday" label:"모임 요일" form:"day"`
	Time          string `validate:"max=30" label:"모임 시간" form:"time"`
	Location      string `validate:"required,max=100" label:"모임 장소" form:"location"`
	OperationPlan string `validate:"required,max=2000" label:"운영 계획" form:"operationPlan"`
}

// ParseGroupForm reads raw form values.
func ParseGroupForm(get func(string) string) (GroupForm, *Result) {
	res := &Result{}
	f := GroupForm{
		TeamID:        strings.TrimSpace(get("teamId")),
		Type:          strings.TrimSpace(get("type")),
		Category:      strings.TrimSpace(get("category")),
		Name:          strings.TrimSpace(get("name")),
		Description:   strings.TrimSpace(get("description")),
		Hashtags:      strings.TrimSpace(get("hashtags")),
		Day:           strings.TrimSpace(get("day")),
		Time:          strings.TrimSpace(get("time")),
		Location:      strings.TrimSpace(get("location")),
		OperationPlan: strings.TrimSpace(get("operationPlan")),
	}
	if s := strings.TrimSpace(get("capacity")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			res.Add("capacity", "모집 인원은 숫자여야 합니다.")
		}
		f.Capacity = n
	}
	return f, res
}

// Tags splits the hashtag field on spaces and commas and normalizes each
// tag to a single leading '#'.
func (f GroupForm) Tags() []string {
	var out []string
	for _, raw := range strings.FieldsFunc(f.Hashtags, func(r rune) bool { return r == ' ' || r == ',' }) {
		t := strings.TrimLeft(raw, "#")
		if t != "" {
			out = append(out, "#"+t)
		}
	}
	return out
}

// Input converts a validated form into the backend body for leaderID.
func (f GroupForm) Input(leaderID string) models.ApplicationInput {
	desc := f.Description
	if tags := f.Tags(); len(tags) > 0 {
		desc = strings.TrimSpace(desc + "\n\n" + strings.Join(tags, " "))
	}
	if f.Capacity > 0 {
		desc = strings.TrimSpace(desc + fmt.Sprintf("\n모집 인원: %d명", f.Capacity))
	}
	day, _ := schedule.ParseDay(f.Day)
	return models.ApplicationInput{
		LeaderID:        leaderID,
		TeamID:          f.TeamID,
		Type:            models.GroupType(f.Type).AppType(),
		Name:            f.Name,
		OperationPlan:   f.OperationPlan,
		MeetingSchedule: schedule.FormatMeeting(day, f.Time),
		MeetingLocation: f.Location,
		Description:     desc,
		Category:        f.Category,
	}
}
