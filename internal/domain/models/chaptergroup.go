// internal/domain/models/chaptergroup.go
package models

import (
	"strings"
	"time"
)

// ReviewStatus is the admin review outcome of a chapter application.
type ReviewStatus string

const (
	ReviewPending      ReviewStatus = "pending"
	ReviewApproved     ReviewStatus = "approved"
	ReviewRejected     ReviewStatus = "rejected"
	ReviewAutoExtended ReviewStatus = "auto_extended"
)

// ReviewStatuses lists review statuses in display order.
var ReviewStatuses = []ReviewStatus{ReviewPending, ReviewApproved, ReviewRejected, ReviewAutoExtended}

// Label returns the Korean display label.
func (s ReviewStatus) Label() string {
	switch s {
	case ReviewPending:
		return "검토 대기"
	case ReviewApproved:
		return "승인"
	case ReviewRejected:
		return "반려"
	case ReviewAutoExtended:
		return "자동 연장"
	}
	return string(s)
}

// ChapterGroup is a group's participation in one chapter.
type ChapterGroup struct {
	ID      string   `json:"_id"`
	Chapter string   `json:"chapter"`
	Group   GroupRef `json:"group"`
	Leader  UserRef  `json:"leader"`
	Team    string   `json:"team,omitempty"`
	Type    GroupType `json:"type,omitempty"`

	OperationPlan   string `json:"operationPlan,omitempty"`
	MeetingSchedule string `json:"meetingSchedule,omitempty"`
	MeetingLocation string `json:"meetingLocation,omitempty"`
	Category        string `json:"category,omitempty"`
	ApplyStatus     string `json:"applyStatus,omitempty"`

	ReviewStatus  ReviewStatus `json:"reviewStatus,omitempty"`
	ReviewedAt    *time.Time   `json:"reviewedAt,omitempty"`
	ReviewedBy    string       `json:"reviewedBy,omitempty"`
	ReviewComment string       `json:"reviewComment,omitempty"`
	IsExtension   bool         `json:"isExtension,omitempty"`

	LeaderOrientationAttended bool       `json:"leaderOrientationAttended,omitempty"`
	SubLeader                 *UserRef   `json:"subLeader,omitempty"`
	AllowNewHires             bool       `json:"allowNewHires,omitempty"`
	RegisteredAt              *time.Time `json:"registeredAt,omitempty"`
	Status                    string     `json:"status,omitempty"`
	IsRegistered              bool       `json:"isRegistered,omitempty"`

	GroupName  string `json:"groupName,omitempty"`
	LeaderName string `json:"leaderName,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Name returns the best display name for the group.
func (cg ChapterGroup) Name() string {
	if cg.GroupName != "" {
		return cg.GroupName
	}
	if cg.Group.Group != nil && cg.Group.Group.Name != "" {
		return cg.Group.Group.Name
	}
	return cg.Group.ID
}

// EffectiveType returns the chapter-level type, falling back to the group's.
func (cg ChapterGroup) EffectiveType() GroupType {
	if cg.Type != "" {
		return cg.Type
	}
	if cg.Group.Group != nil {
		return cg.Group.Group.Type
	}
	return ""
}

// EffectiveCategory returns the chapter-level category, falling back to the group's.
func (cg ChapterGroup) EffectiveCategory() string {
	if cg.Category != "" {
		return cg.Category
	}
	if cg.Group.Group != nil {
		return cg.Group.Group.Category
	}
	return ""
}

// Description returns the populated group description, if any.
func (cg ChapterGroup) Description() string {
	if cg.Group.Group != nil {
		return cg.Group.Group.Description
	}
	return ""
}

// LeaderDisplayName prefers the flattened leaderName field.
func (cg ChapterGroup) LeaderDisplayName() string {
	if cg.LeaderName != "" {
		return cg.LeaderName
	}
	return cg.Leader.DisplayName()
}

// IsLedBy reports whether userID is this group's leader.
func (cg ChapterGroup) IsLedBy(userID string) bool {
	userID = strings.TrimSpace(userID)
	return userID != "" && cg.Leader.ID == userID
}

// SelectionComplete reports whether the leader has finalized registration,
// after which members can no longer cancel.
func (cg ChapterGroup) SelectionComplete() bool {
	return cg.IsRegistered || cg.RegisteredAt != nil || cg.Status == "registered"
}

// ApplicationInput is the body for opening a new group in a chapter.
type ApplicationInput struct {
	LeaderID        string               `json:"leaderId"`
	TeamID          string               `json:"teamId"`
	Type            ApplicationGroupType `json:"type"`
	Name            string               `json:"name"`
	OperationPlan   string               `json:"operationPlan"`
	MeetingSchedule string               `json:"meetingSchedule"`
	MeetingLocation string               `json:"meetingLocation"`
	Description     string               `json:"description,omitempty"`
	Category        string               `json:"category,omitempty"`
}

// RegistrationInput is the body for a leader's final registration.
type RegistrationInput struct {
	SubLeaderID               string `json:"subLeaderId,omitempty"`
	AllowNewHires             bool   `json:"allowNewHires"`
	LeaderOrientationAttended bool   `json:"leaderOrientationAttended"`
}

// ApplicationQuery narrows the admin application listing.
type ApplicationQuery struct {
	Page         int
	Limit        int
	Type         ApplicationGroupType
	ReviewStatus ReviewStatus
	Search       string
}

// ScheduleText returns the chapter meeting schedule, falling back to the
// group's standing schedule.
func (cg ChapterGroup) ScheduleText() string {
	if cg.MeetingSchedule != "" {
		return cg.MeetingSchedule
	}
	if cg.Group.Group != nil {
		return cg.Group.Group.Schedule
	}
	return ""
}
