// Package phase derives a chapter's lifecycle phase and stage timeline from
// its six period boundaries. Every function takes "now" explicitly.
package phase

import (
	"time"

	"github.com/metacode22/study-somoim/internal/domain/models"
)

// Status is the state of a single stage relative to now.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Label returns the Korean display label.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "예정"
	case StatusActive:
		return "진행중"
	case StatusCompleted:
		return "완료"
	}
	return string(s)
}

// Stage names, in timeline order.
const (
	StageApplication       = "스터디/소모임 신규 개설 신청기간"
	StageRecruitment       = "부원 모집 기간"
	StageFinalRegistration = "최종 등록 기간"
	StageActivity          = "활동 기간"
)

// Stage is one row of the four-stage timeline.
type Stage struct {
	Name   string
	Start  time.Time
	End    time.Time
	Status Status
	Range  string
}

// Current walks the period boundaries in order and returns the phase for now.
//
// Neither recruitmentStart nor activityStart is consulted: the gap after
// applicationEnd counts as recruitment and the gap after recruitmentEnd
// counts as active.
func Current(p models.ChapterPeriods, now time.Time) models.ChapterPhase {
	switch {
	case now.Before(p.ApplicationStart):
		return models.PhaseUpcoming
	case !now.After(p.ApplicationEnd):
		return models.PhaseApplication
	case !now.After(p.RecruitmentEnd):
		return models.PhaseRecruitment
	case !now.After(p.ActivityEnd):
		return models.PhaseActive
	}
	return models.PhaseCompleted
}

// StageStatus classifies now against a closed [start, end] window.
func StageStatus(start, end, now time.Time) Status {
	if now.Before(start) {
		return StatusPending
	}
	if now.After(end) {
		return StatusCompleted
	}
	return StatusActive
}

// FinalRegistrationWindow is the synthetic window between recruitment and
// activity: one calendar day after recruitmentEnd through one calendar day
// before activityStart.
func FinalRegistrationWindow(p models.ChapterPeriods) (start, end time.Time) {
	return p.RecruitmentEnd.AddDate(0, 0, 1), p.ActivityStart.AddDate(0, 0, -1)
}

// Timeline returns the four display stages in order. Ranges are formatted in loc
// (UTC when loc is nil).
func Timeline(p models.ChapterPeriods, now time.Time, loc *time.Location) []Stage {
	regStart, regEnd := FinalRegistrationWindow(p)
	windows := []struct {
		name       string
		start, end time.Time
	}{
		{StageApplication, p.ApplicationStart, p.ApplicationEnd},
		{StageRecruitment, p.RecruitmentStart, p.RecruitmentEnd},
		{StageFinalRegistration, regStart, regEnd},
		{StageActivity, p.ActivityStart, p.ActivityEnd},
	}

	out := make([]Stage, 0, len(windows))
	for _, w := range windows {
		out = append(out, Stage{
			Name:   w.name,
			Start:  w.start,
			End:    w.end,
			Status: StageStatus(w.start, w.end, now),
			Range:  FormatRange(w.start, w.end, loc),
		})
	}
	return out
}

// Label returns the name of the stage a phase corresponds to.
func Label(ph models.ChapterPhase) string {
	switch ph {
	case models.PhaseUpcoming:
		return "예정"
	case models.PhaseApplication:
		return StageApplication
	case models.PhaseRecruitment:
		return StageRecruitment
	case models.PhaseActive:
		return StageActivity
	case models.PhaseCompleted:
		return "종료"
	}
	return string(ph)
}

// FormatDate renders t as YYYY.MM.DD in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006.01.02")
}

// FormatRange renders "YYYY.MM.DD ~ YYYY.MM.DD".
func FormatRange(start, end time.Time, loc *time.Location) string {
	return FormatDate(start, loc) + " ~ " + FormatDate(end, loc)
}
