package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/metacode22/study-somoim/internal/app/backend"
	"github.com/metacode22/study-somoim/internal/app/store/activity"
	chaptergroupstore "github.com/metacode22/study-somoim/internal/app/store/chaptergroups"
	chapterstore "github.com/metacode22/study-somoim/internal/app/store/chapters"
	membershipstore "github.com/metacode22/study-somoim/internal/app/store/memberships"
	teamstore "github.com/metacode22/study-somoim/internal/app/store/teams"
	"github.com/metacode22/study-somoim/internal/app/system/eligibility"
	"github.com/metacode22/study-somoim/internal/app/system/querycache"
	"go.uber.org/zap"
)

// Stack is a fake backend wired to the real cached stores, the way the
// server builds them.
type Stack struct {
	Backend     *FakeBackend
	API         *backend.Client
	Cache       *querycache.Cache
	Chapters    *chapterstore.Store
	Groups      *chaptergroupstore.Store
	Memberships *membershipstore.Store
	Teams       *teamstore.Store
	Validator   *eligibility.Validator
	Activity    *ActivityRecorder
}

// NewStack starts a fake backend and builds stores over it.
func NewStack(t *testing.T) *Stack {
	t.Helper()
	fb := NewFakeBackend(t)
	api := fb.Client()
	cache := querycache.New(time.Minute)
	v := eligibility.New(api, zap.NewNop(), nil)
	return &Stack{
		Backend:     fb,
		API:         api,
		Cache:       cache,
		Chapters:    chapterstore.New(api, cache),
		Groups:      chaptergroupstore.New(api, cache),
		Memberships: membershipstore.New(api, v, cache),
		Teams:       teamstore.New(api, cache),
		Validator:   v,
		Activity:    &ActivityRecorder{},
	}
}

// ActivityRecorder collects activity events in memory.
type ActivityRecorder struct {
	mu     sync.Mutex
	events []activity.Event
	Err    error
}

// Create records e, or returns Err when set.
func (a *ActivityRecorder) Create(ctx context.Context, e activity.Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return a.Err
	}
	a.events = append(a.events, e)
	return nil
}

// ListByGroup returns the events recorded against chapterGroupID, newest
// first, mirroring the store.
func (a *ActivityRecorder) ListByGroup(ctx context.Context, chapterGroupID string, limit int64) ([]activity.Event, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return nil, a.Err
	}
	var out []activity.Event
	for i := len(a.events) - 1; i >= 0; i-- {
		if a.events[i].ChapterGroupID != chapterGroupID {
			continue
		}
		out = append(out, a.events[i])
		if limit > 0 && int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

// Events returns a copy of the recorded events.
func (a *ActivityRecorder) Events() []activity.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]activity.Event(nil), a.events...)
}
