// internal/domain/models/chapter.go
package models

import "time"

// ChapterPhase is the lifecycle phase of a chapter (one recruitment cycle).
type ChapterPhase string

const (
	PhaseUpcoming    ChapterPhase = "upcoming"
	PhaseApplication ChapterPhase = "application"
	PhaseRecruitment ChapterPhase = "recruitment"
	PhaseActive      ChapterPhase = "active"
	PhaseCompleted   ChapterPhase = "completed"
)

// Valid reports whether p is one of the known phases.
func (p ChapterPhase) Valid() bool {
	switch p {
	case PhaseUpcoming, PhaseApplication, PhaseRecruitment, PhaseActive, PhaseCompleted:
		return true
	}
	return false
}

// ChapterPeriods holds the six boundary instants of a chapter.
// The backend sends them as ISO-8601 strings.
type ChapterPeriods struct {
	ApplicationStart time.Time `json:"applicationStart"`
	ApplicationEnd   time.Time `json:"applicationEnd"`
	RecruitmentStart time.Time `json:"recruitmentStart"`
	RecruitmentEnd   time.Time `json:"recruitmentEnd"`
	ActivityStart    time.Time `json:"activityStart"`
	ActivityEnd      time.Time `json:"activityEnd"`
}

// Chapter is one recruitment/activity cycle (기수).
type Chapter struct {
	ID           string         `json:"_id"`
	Name         string         `json:"name"`
	Sequence     int            `json:"sequence"`
	Periods      ChapterPeriods `json:"periods"`
	CurrentPhase ChapterPhase   `json:"currentPhase,omitempty"`
	CreatedAt    time.Time      `json:"createdAt,omitempty"`
	UpdatedAt    time.Time      `json:"updatedAt,omitempty"`
}

// ChapterInput is the body for creating or updating a chapter.
type ChapterInput struct {
	Name     string         `json:"name"`
	Sequence int            `json:"sequence"`
	Periods  ChapterPeriods `json:"periods"`
}
