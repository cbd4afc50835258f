// internal/domain/models/membership.go
package models

import "time"

// Role is a member's role inside a ChapterGroup.
type Role string

const (
	RoleLeader    Role = "leader"
	RoleSubLeader Role = "sub_leader"
	RoleRegular   Role = "regular"
	RoleObserver  Role = "observer"
)

// ParticipationType is what the user applied as.
type ParticipationType string

const (
	ParticipationRegular  ParticipationType = "regular"
	ParticipationObserver ParticipationType = "observer"
)

// Valid reports whether p is a known participation type.
func (p ParticipationType) Valid() bool {
	return p == ParticipationRegular || p == ParticipationObserver
}

// Label returns the Korean display label.
func (p ParticipationType) Label() string {
	switch p {
	case ParticipationRegular:
		return "정규 부원"
	case ParticipationObserver:
		return "청강"
	}
	return string(p)
}

// Membership links a user to a ChapterGroup. A membership is active while
// CancelledAt is nil.
type Membership struct {
	ID                string            `json:"_id"`
	ChapterGroup      ChapterGroupRef   `json:"chapterGroup"`
	User              UserRef           `json:"user"`
	Role              Role              `json:"role"`
	ParticipationType ParticipationType `json:"participationType"`
	CancelledAt       *time.Time        `json:"cancelledAt,omitempty"`
	CreatedAt         time.Time         `json:"createdAt,omitempty"`
}

// Active reports whether the membership has not been cancelled.
func (m Membership) Active() bool {
	return m.CancelledAt == nil
}

// MembershipQuery narrows a member listing.
type MembershipQuery struct {
	ActiveOnly        bool
	Role              Role
	ParticipationType ParticipationType
	Page              int
	Limit             int
}

// ApplyInput is the body for applying to a group.
type ApplyInput struct {
	UserID            string            `json:"userId"`
	ParticipationType ParticipationType `json:"participationType"`
}

// SelectInput is the body a leader sends to select or unselect an applicant.
type SelectInput struct {
	Role Role `json:"role"`
}

// Application is the flattened view of one of the user's memberships.
type Application struct {
	ID                  string
	GroupID             string
	GroupName           string
	ScheduleDays        []string
	SelectionPeriod     string
	ActivityPeriod      string
	AppliedAs           ParticipationType
	IsSelectionComplete bool
}
