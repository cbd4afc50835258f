// Package groupcard flattens a ChapterGroup into the card shown on list
// pages and returned by the JSON API. Cards satisfy recruitment.Item.
package groupcard

import (
	"sort"
	"time"

	"github.com/metacode22/study-somoim/internal/app/system/htmlsanitize"
	"github.com/metacode22/study-somoim/internal/app/system/recruitment"
	"github.com/metacode22/study-somoim/internal/app/system/schedule"
	"github.com/metacode22/study-somoim/internal/domain/models"
)

// NewWindow is how recently a group must have been opened to count as new.
const NewWindow = 7 * 24 * time.Hour

const excerptLen = 80

// Card is the list view of one recruiting group.
type Card struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Type             models.GroupType `json:"type"`
	IsClub           bool             `json:"isClub"`
	Category         string           `json:"category,omitempty"`
	Team             string           `json:"team,omitempty"`
	LeaderID         string           `json:"leaderId,omitempty"`
	LeaderName       string           `json:"leaderName,omitempty"`
	Schedule         string           `json:"schedule,omitempty"`
	Days             []schedule.Day   `json:"days"`
	Location         string           `json:"location,omitempty"`
	ApplyStatus      string           `json:"applyStatus,omitempty"`
	ApplyStatusLabel string           `json:"applyStatusLabel,omitempty"`
	Available        bool             `json:"available"`
	Excerpt          string           `json:"excerpt,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// From builds a card from a chapter group.
func From(cg models.ChapterGroup) Card {
	typ := cg.EffectiveType()
	sched := cg.ScheduleText()
	loc := cg.MeetingLocation
	if loc == "" && cg.Group.Group != nil {
		loc = cg.Group.Group.Location
	}
	team := cg.Team
	if team == "" && cg.Group.Group != nil {
		team = cg.Group.Group.Team
	}
	return Card{
		ID:               cg.ID,
		Name:             cg.Name(),
		Type:             typ,
		IsClub:           typ.IsClub(),
		Category:         cg.EffectiveCategory(),
		Team:             team,
		LeaderID:         cg.Leader.ID,
		LeaderName:       cg.LeaderDisplayName(),
		Schedule:         sched,
		Days:             schedule.ParseDays(sched),
		Location:         loc,
		ApplyStatus:      cg.ApplyStatus,
		ApplyStatusLabel: recruitment.StatusLabel(cg.ApplyStatus),
		Available:        recruitment.IsAvailableStatus(cg.ApplyStatus),
		Excerpt:          htmlsanitize.Excerpt(cg.Description(), excerptLen),
		CreatedAt:        cg.CreatedAt,
	}
}

// FromAll builds cards in input order.
func FromAll(groups []models.ChapterGroup) []Card {
	out := make([]Card, 0, len(groups))
	for _, cg := range groups {
		out = append(out, From(cg))
	}
	return out
}

func (c Card) FilterApplyStatus() string          { return c.ApplyStatus }
func (c Card) FilterScheduleDays() []schedule.Day { return c.Days }
func (c Card) FilterCategory() string             { return c.Category }

// Split separates clubs from studies, keeping order. Cards of an unknown
// type land in neither list.
func Split(cards []Card) (clubs, studies []Card) {
	for _, c := range cards {
		switch {
		case c.IsClub:
			clubs = append(clubs, c)
		case c.Type.IsStudy():
			studies = append(studies, c)
		}
	}
	return clubs, studies
}

// Newest returns up to limit cards created within NewWindow of now, newest
// first. The input is not modified.
func Newest(cards []Card, now time.Time, limit int) []Card {
	cutoff := now.Add(-NewWindow)
	var out []Card
	for _, c := range cards {
		if !c.CreatedAt.IsZero() && !c.CreatedAt.Before(cutoff) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
