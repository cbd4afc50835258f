// internal/domain/models/group.go
package models

import (
	"strings"
	"time"
)

// GroupType is the display-level kind of a group.
type GroupType string

const (
	GroupTypeClub         GroupType = "소모임"
	GroupTypeStudyTeam    GroupType = "스터디(팀/파트/스쿼드 대상)"
	GroupTypeStudyCompany GroupType = "스터디(전사 구성원 대상)"
)

// ApplicationGroupType is the backend enum used on applications.
type ApplicationGroupType string

const (
	AppTypeClub         ApplicationGroupType = "somoim"
	AppTypeStudyTeam    ApplicationGroupType = "study_team"
	AppTypeStudyCompany ApplicationGroupType = "study_company"
)

// GroupTypes lists the display types in form order.
var GroupTypes = []GroupType{GroupTypeStudyTeam, GroupTypeStudyCompany, GroupTypeClub}

// IsStudy reports whether t is one of the study variants. Both the display
// labels and the backend enum codes are accepted.
func (t GroupType) IsStudy() bool {
	switch strings.TrimSpace(string(t)) {
	case string(GroupTypeStudyTeam), string(GroupTypeStudyCompany),
		string(AppTypeStudyTeam), string(AppTypeStudyCompany):
		return true
	}
	return strings.HasPrefix(string(t), "스터디")
}

// IsClub reports whether t is the club (소모임) type.
func (t GroupType) IsClub() bool {
	switch strings.TrimSpace(string(t)) {
	case string(GroupTypeClub), string(AppTypeClub):
		return true
	}
	return false
}

// AppType maps the display label to the backend enum. Unknown values map to "".
func (t GroupType) AppType() ApplicationGroupType {
	switch strings.TrimSpace(string(t)) {
	case string(GroupTypeClub), string(AppTypeClub):
		return AppTypeClub
	case string(GroupTypeStudyTeam), string(AppTypeStudyTeam):
		return AppTypeStudyTeam
	case string(GroupTypeStudyCompany), string(AppTypeStudyCompany):
		return AppTypeStudyCompany
	}
	return ""
}

// Label maps a backend enum back to its display label.
func (a ApplicationGroupType) Label() GroupType {
	switch a {
	case AppTypeClub:
		return GroupTypeClub
	case AppTypeStudyTeam:
		return GroupTypeStudyTeam
	case AppTypeStudyCompany:
		return GroupTypeStudyCompany
	}
	return GroupType(a)
}

// Group is the long-lived identity of a study or club. Each chapter it takes
// part in is a ChapterGroup.
type Group struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Type        GroupType `json:"type,omitempty"`
	Leader      UserRef   `json:"leader,omitempty"`
	Team        string    `json:"team,omitempty"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	Schedule    string    `json:"schedule,omitempty"`
	Location    string    `json:"location,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// Team is an organizational team from the lookup endpoint.
type Team struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}
