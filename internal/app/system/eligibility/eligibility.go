// Package eligibility is the advisory pre-check run before a regular-member
// application is submitted. The backend remains the authority: lookup and
// network failures let the application through, and only explicit rule
// violations block it.
package eligibility

import (
	"context"
	"errors"

	"github.com/metacode22/study-somoim/internal/app/backend"
	"github.com/metacode22/study-somoim/internal/app/store/queries/usermemberships"
	"github.com/metacode22/study-somoim/internal/app/system/schedule"
	"github.com/metacode22/study-somoim/internal/domain/models"
	"go.uber.org/zap"
)

// MaxClubs is the number of regular club memberships a user may hold per
// chapter.
const MaxClubs = 2

// Rejection reasons shown to the user.
const (
	ReasonNotFound        = "그룹을 찾을 수 없습니다."
	ReasonWeekdayConflict = "동일 요일의 스터디가 이미 신청되어 있습니다."
	ReasonClubLimit       = "소모임은 최대 2개까지만 신청할 수 있습니다."
)

// Source is what the validator reads from the backend.
type Source interface {
	usermemberships.Source
	ChapterGroup(ctx context.Context, chapterID, id string) (*models.ChapterGroup, error)
}

// Request identifies one prospective application.
type Request struct {
	ChapterID         string
	GroupID           string
	UserID            string
	ParticipationType models.ParticipationType
}

// Result is the validator's verdict. Reason is empty when CanApply is true.
type Result struct {
	CanApply bool   `json:"canApply"`
	Reason   string `json:"reason,omitempty"`
}

func allow() Result { return Result{CanApply: true} }

func deny(reason string) Result { return Result{CanApply: false, Reason: reason} }

// Validator checks applications against the weekday and club-count rules.
type Validator struct {
	Source  Source
	Log     *zap.Logger
	Metrics *Metrics
}

// New returns a Validator reading from src.
func New(src Source, logger *zap.Logger, m *Metrics) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{Source: src, Log: logger, Metrics: m}
}

// Validate never returns an error. A missing target group is a rejection;
// any other failure is logged and the application is allowed.
func (v *Validator) Validate(ctx context.Context, req Request) Result {
	res, outcome := v.validate(ctx, req)
	v.Metrics.record(outcome)
	return res
}

func (v *Validator) validate(ctx context.Context, req Request) (Result, string) {
	target, err := v.Source.ChapterGroup(ctx, req.ChapterID, req.GroupID)
	if errors.Is(err, backend.ErrNotFound) || (err == nil && target == nil) {
		return deny(ReasonNotFound), OutcomeNotFound
	}
	if err != nil {
		return v.failOpen(req, "target lookup failed", err)
	}

	if req.ParticipationType != models.ParticipationRegular {
		return allow(), OutcomeAllowed
	}

	targetType := target.EffectiveType()
	if !targetType.IsStudy() && !targetType.IsClub() {
		return allow(), OutcomeAllowed
	}

	enrollments, err := usermemberships.Collect(ctx, v.Source, req.ChapterID, req.UserID,
		usermemberships.ExcludeGroup(target.ID))
	if err != nil {
		return v.failOpen(req, "membership aggregation failed", err)
	}

	var regular []usermemberships.Enrollment
	for _, e := range enrollments {
		if e.Membership.ParticipationType == models.ParticipationRegular {
			regular = append(regular, e)
		}
	}

	if targetType.IsStudy() {
		targetDays := schedule.ParseDays(target.ScheduleText())
		for _, e := range regular {
			if !e.Group.EffectiveType().IsStudy() {
				continue
			}
			if schedule.Overlaps(targetDays, schedule.ParseDays(e.Group.ScheduleText())) {
				return deny(ReasonWeekdayConflict), OutcomeWeekdayConflict
			}
		}
		return allow(), OutcomeAllowed
	}

	clubs := 0
	for _, e := range regular {
		if e.Group.EffectiveType().IsClub() {
			clubs++
		}
	}
	if clubs >= MaxClubs {
		return deny(ReasonClubLimit), OutcomeClubLimit
	}
	return allow(), OutcomeAllowed
}

func (v *Validator) failOpen(req Request, msg string, err error) (Result, string) {
	v.Log.Warn("eligibility check failed open: "+msg,
		zap.String("chapter_id", req.ChapterID),
		zap.String("group_id", req.GroupID),
		zap.String("user_id", req.UserID),
		zap.Error(err))
	return allow(), OutcomeFailOpen
}
