// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/metacode22/study-somoim/internal/app/store/queries/usermemberships"
	"github.com/metacode22/study-somoim/internal/app/system/eligibility"
	"github.com/metacode22/study-somoim/internal/app/system/querycache"
	"github.com/metacode22/study-somoim/internal/domain/models"
)

// API is the backend surface this store reads and writes.
type API interface {
	usermemberships.Source
	Apply(ctx context.Context, chapterID, groupID string, in models.ApplyInput) (*models.Membership, error)
	SelectMember(ctx context.Context, userID, chapterID, groupID, membershipID string, role models.Role) (*models.Membership, error)
	CancelMembership(ctx context.Context, userID, chapterID, groupID, membershipID string) error
	FinalizeRegistration(ctx context.Context, userID, chapterID, groupID string, in models.RegistrationInput) (*models.ChapterGroup, error)
}

// Gate decides whether an application may be submitted.
type Gate interface {
	Validate(ctx context.Context, req eligibility.Request) eligibility.Result
}

// RejectedError is returned by Apply when the eligibility gate refuses the
// application. Reason is user-facing.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string { return "application rejected: " + e.Reason }

// IsRejected reports whether err is a gate rejection and returns its reason.
func IsRejected(err error) (string, bool) {
	var r *RejectedError
	if errors.As(err, &r) {
		return r.Reason, true
	}
	return "", false
}

var errBadParticipation = errors.New(`participation type must be "regular" or "observer"`)

type Store struct {
	api   API
	gate  Gate
	cache *querycache.Cache
}

// New returns a Store. A nil gate lets every application through to the
// backend.
func New(api API, gate Gate, cache *querycache.Cache) *Store {
	return &Store{api: api, gate: gate, cache: cache}
}

func KeyGroup(chapterID, groupID string) querycache.Key {
	return querycache.K("memberships", chapterID, groupID)
}

func KeyList(chapterID, groupID string, q models.MembershipQuery) querycache.Key {
	return querycache.K("memberships", chapterID, groupID,
		fmt.Sprintf("active=%t", q.ActiveOnly), string(q.Role), string(q.ParticipationType), q.Page, q.Limit)
}

func KeyMine(chapterID, userID string) querycache.Key {
	return querycache.K("my-applications", chapterID, userID)
}

// List returns one page of a group's memberships.
func (s *Store) List(ctx context.Context, chapterID, groupID string, q models.MembershipQuery) (models.Page[models.Membership], error) {
	return querycache.Fetch(ctx, s.cache, KeyList(chapterID, groupID, q), func(ctx context.Context) (models.Page[models.Membership], error) {
		return s.api.Memberships(ctx, chapterID, groupID, q)
	})
}

// ListAll pages through every membership matching q.
func (s *Store) ListAll(ctx context.Context, chapterID, groupID string, q models.MembershipQuery) ([]models.Membership, error) {
	if q.Limit <= 0 {
		q.Limit = usermemberships.PageSize
	}
	var out []models.Membership
	for q.Page = 1; ; q.Page++ {
		res, err := s.List(ctx, chapterID, groupID, q)
		if err != nil {
			return nil, err
		}
		out = append(out, res.Data...)
		if !res.Meta.HasNextPage || len(res.Data) == 0 {
			return out, nil
		}
	}
}

// Mine returns userID's active memberships across chapterID's recruiting
// groups.
func (s *Store) Mine(ctx context.Context, chapterID, userID string) ([]usermemberships.Enrollment, error) {
	return querycache.Fetch(ctx, s.cache, KeyMine(chapterID, userID), func(ctx context.Context) ([]usermemberships.Enrollment, error) {
		return usermemberships.Collect(ctx, s.api, chapterID, userID, nil)
	})
}

// Apply runs the eligibility gate, then submits the application.
func (s *Store) Apply(ctx context.Context, chapterID, groupID string, in models.ApplyInput) (*models.Membership, error) {
	if !in.ParticipationType.Valid() {
		return nil, errBadParticipation
	}
	if s.gate != nil {
		res := s.gate.Validate(ctx, eligibility.Request{
			ChapterID:         chapterID,
			GroupID:           groupID,
			UserID:            in.UserID,
			ParticipationType: in.ParticipationType,
		})
		if !res.CanApply {
			return nil, &RejectedError{Reason: res.Reason}
		}
	}
	m, err := s.api.Apply(ctx, chapterID, groupID, in)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateAll(
		querycache.K("groups"),
		querycache.K("my-applications"),
		KeyGroup(chapterID, groupID),
	)
	return m, nil
}

// Cancel withdraws a membership.
func (s *Store) Cancel(ctx context.Context, userID, chapterID, groupID, membershipID string) error {
	if err := s.api.CancelMembership(ctx, userID, chapterID, groupID, membershipID); err != nil {
		return err
	}
	s.cache.InvalidateAll(
		querycache.K("my-applications"),
		querycache.K("groups"),
		KeyGroup(chapterID, groupID),
	)
	return nil
}

// Select sets an applicant's role: RoleRegular selects, RoleObserver
// unselects.
func (s *Store) Select(ctx context.Context, userID, chapterID, groupID, membershipID string, role models.Role) (*models.Membership, error) {
	if role != models.RoleRegular && role != models.RoleObserver {
		return nil, fmt.Errorf("select: unsupported role %q", role)
	}
	m, err := s.api.SelectMember(ctx, userID, chapterID, groupID, membershipID, role)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(KeyGroup(chapterID, groupID))
	return m, nil
}

// Finalize records the leader's final registration.
func (s *Store) Finalize(ctx context.Context, userID, chapterID, groupID string, in models.RegistrationInput) (*models.ChapterGroup, error) {
	cg, err := s.api.FinalizeRegistration(ctx, userID, chapterID, groupID, in)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateAll(
		querycache.K("groups"),
		KeyGroup(chapterID, groupID),
		querycache.K("chapters", chapterID, "registrations"),
	)
	return cg, nil
}
