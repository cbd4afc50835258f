package membershipstore_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	membershipstore "github.com/metacode22/study-somoim/internal/app/store/memberships"
	"github.com/metacode22/study-somoim/internal/app/system/eligibility"
	"github.com/metacode22/study-somoim/internal/app/system/querycache"
	"github.com/metacode22/study-somoim/internal/domain/models"
)

type fakeAPI struct {
	mu        sync.Mutex
	listCalls int
	applied   []models.ApplyInput
	selected  []models.Role
	cancelled []string
	applyErr  error
	members   []models.Membership
	groups    []models.ChapterGroup
}

func (f *fakeAPI) RecruitingGroups(ctx context.Context, chapterID string) ([]models.ChapterGroup, error) {
	return f.groups, nil
}

func (f *fakeAPI) Memberships(ctx context.Context, chapterID, groupID string, q models.MembershipQuery) (models.Page[models.Membership], error) {
	f.mu.Lock()
	f.listCalls++
	f.mu.Unlock()
	return models.Page[models.Membership]{Data: f.members}, nil
}

func (f *fakeAPI) Apply(ctx context.Context, chapterID, groupID string, in models.ApplyInput) (*models.Membership, error) {
	if f.applyErr != nil {
		return nil, f.applyErr
	}
	f.applied = append(f.applied, in)
	return &models.Membership{ID: "new", User: models.UserRef{ID: in.UserID}, ParticipationType: in.ParticipationType}, nil
}

func (f *fakeAPI) SelectMember(ctx context.Context, userID, chapterID, groupID, membershipID string, role models.Role) (*models.Membership, error) {
	f.selected = append(f.selected, role)
	return &models.Membership{ID: membershipID, Role: role}, nil
}

func (f *fakeAPI) CancelMembership(ctx context.Context, userID, chapterID, groupID, membershipID string) error {
	f.cancelled = append(f.cancelled, membershipID)
	return nil
}

func (f *fakeAPI) FinalizeRegistration(ctx context.Context, userID, chapterID, groupID string, in models.RegistrationInput) (*models.ChapterGroup, error) {
	now := time.Now()
	return &models.ChapterGroup{ID: groupID, RegisteredAt: &now}, nil
}

type fakeGate struct {
	res   eligibility.Result
	calls int
}

func (g *fakeGate) Validate(ctx context.Context, req eligibility.Request) eligibility.Result {
	g.calls++
	return g.res
}

func TestApply_GateRejects(t *testing.T) {
	api := &fakeAPI{}
	gate := &fakeGate{res: eligibility.Result{CanApply: false, Reason: eligibility.ReasonClubLimit}}
	s := membershipstore.New(api, gate, querycache.New(time.Minute))

	_, err := s.Apply(context.Background(), "ch1", "g1", models.ApplyInput{UserID: "u1", ParticipationType: models.ParticipationRegular})
	reason, ok := membershipstore.IsRejected(err)
	if !ok || reason != eligibility.ReasonClubLimit {
		t.Fatalf("err = %v, want rejection", err)
	}
	if len(api.applied) != 0 {
		t.Error("rejected application reached the backend")
	}
}

func TestApply_InvalidatesMemberLists(t *testing.T) {
	api := &fakeAPI{members: []models.Membership{{ID: "m1"}}}
	gate := &fakeGate{res: eligibility.Result{CanApply: true}}
	cache := querycache.New(time.Minute)
	s := membershipstore.New(api, gate, cache)
	ctx := context.Background()
	q := models.MembershipQuery{ActiveOnly: true}

	if _, err := s.List(ctx, "ch1", "g1", q); err != nil {
		t.Fatal(err)
	}
	if _, err := s.List(ctx, "ch1", "g2", q); err != nil {
		t.Fatal(err)
	}
	if _, err := s.List(ctx, "ch1", "g1", q); err != nil {
		t.Fatal(err)
	}
	if api.listCalls != 2 {
		t.Fatalf("listCalls = %d, want 2 before apply", api.listCalls)
	}

	if _, err := s.Apply(ctx, "ch1", "g1", models.ApplyInput{UserID: "u1", ParticipationType: models.ParticipationObserver}); err != nil {
		t.Fatal(err)
	}
	if gate.calls != 1 {
		t.Errorf("gate calls = %d", gate.calls)
	}

	_, _ = s.List(ctx, "ch1", "g1", q)
	_, _ = s.List(ctx, "ch1", "g2", q)
	if api.listCalls != 3 {
		t.Errorf("listCalls = %d, want 3 (only g1 refetched)", api.listCalls)
	}
}

func TestApply_BackendErrorPropagates(t *testing.T) {
	boom := errors.New("이미 신청한 그룹입니다.")
	api := &fakeAPI{applyErr: boom}
	s := membershipstore.New(api, nil, querycache.New(time.Minute))
	_, err := s.Apply(context.Background(), "ch1", "g1", models.ApplyInput{UserID: "u1", ParticipationType: models.ParticipationRegular})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
	if _, ok := membershipstore.IsRejected(err); ok {
		t.Error("backend error reported as gate rejection")
	}
}

func TestApply_BadParticipation(t *testing.T) {
	s := membershipstore.New(&fakeAPI{}, nil, querycache.New(time.Minute))
	if _, err := s.Apply(context.Background(), "ch1", "g1", models.ApplyInput{UserID: "u1", ParticipationType: "vip"}); err == nil {
		t.Error("expected error for unknown participation type")
	}
}

func TestSelect_RoleGuard(t *testing.T) {
	api := &fakeAPI{}
	s := membershipstore.New(api, nil, querycache.New(time.Minute))
	ctx := context.Background()

	if _, err := s.Select(ctx, "leader", "ch1", "g1", "m1", models.RoleLeader); err == nil {
		t.Error("selecting as leader should fail")
	}
	if _, err := s.Select(ctx, "leader", "ch1", "g1", "m1", models.RoleRegular); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Select(ctx, "leader", "ch1", "g1", "m1", models.RoleObserver); err != nil {
		t.Fatal(err)
	}
	if len(api.selected) != 2 {
		t.Errorf("selected = %v", api.selected)
	}
}

func TestMine_CachedUntilCancel(t *testing.T) {
	api := &fakeAPI{
		groups:  []models.ChapterGroup{{ID: "g1"}},
		members: []models.Membership{{ID: "m1", User: models.UserRef{ID: "u1"}}},
	}
	s := membershipstore.New(api, nil, querycache.New(time.Minute))
	ctx := context.Background()

	mine, err := s.Mine(ctx, "ch1", "u1")
	if err != nil || len(mine) != 1 {
		t.Fatalf("Mine = %v, %v", mine, err)
	}
	_, _ = s.Mine(ctx, "ch1", "u1")
	if api.listCalls != 1 {
		t.Errorf("listCalls = %d, want 1", api.listCalls)
	}

	if err := s.Cancel(ctx, "u1", "ch1", "g1", "m1"); err != nil {
		t.Fatal(err)
	}
	_, _ = s.Mine(ctx, "ch1", "u1")
	if api.listCalls != 2 {
		t.Errorf("listCalls = %d after cancel, want 2", api.listCalls)
	}
}
