package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/metacode22/study-somoim/internal/app/system/querycache"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingSweeper struct{ n atomic.Int32 }

func (s *countingSweeper) Sweep() int { s.n.Add(1); return 0 }

type fakeCleaner struct {
	calls atomic.Int32
	err   error
}

func (c *fakeCleaner) CleanupExpired(ctx context.Context) (int64, error) {
	c.calls.Add(1)
	return 3, c.err
}

func TestJanitor_RunsUntilStopped(t *testing.T) {
	sweeper := &countingSweeper{}
	cleaner := &fakeCleaner{}
	j := NewJanitor(sweeper, cleaner, zap.NewNop(), 5*time.Millisecond)
	j.Start()

	deadline := time.Now().Add(2 * time.Second)
	for sweeper.n.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	j.Stop()
	j.Stop()

	if sweeper.n.Load() < 2 || cleaner.calls.Load() < 2 {
		t.Errorf("sweeps = %d, cleanups = %d; want at least 2 each", sweeper.n.Load(), cleaner.calls.Load())
	}
}

func TestJanitor_SweepsRealCache(t *testing.T) {
	now := time.Now()
	c := querycache.New(time.Second, querycache.WithClock(func() time.Time { return now }))
	_, _ = querycache.Fetch(context.Background(), c, querycache.K("teams"), func(context.Context) (int, error) { return 1, nil })

	now = now.Add(2 * time.Second)
	NewJanitor(c, nil, nil, time.Minute).RunOnce()

	if c.Len() != 0 {
		t.Errorf("cache has %d entries after sweep, want 0", c.Len())
	}
}

func TestJanitor_LogsCleanupError(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	j := NewJanitor(nil, &fakeCleaner{err: errors.New("no primary")}, zap.New(core), time.Minute)
	j.RunOnce()
	if logs.FilterMessage("failed to delete expired oauth states").Len() != 1 {
		t.Error("expected cleanup error to be logged")
	}
}

type fixedSweeper int

func (s fixedSweeper) Sweep() int { return int(s) }

func TestSweepers(t *testing.T) {
	s := Sweepers{fixedSweeper(2), nil, fixedSweeper(3)}
	if got := s.Sweep(); got != 5 {
		t.Errorf("Sweep = %d, want 5", got)
	}
	if got := (Sweepers{}).Sweep(); got != 0 {
		t.Errorf("empty Sweep = %d", got)
	}
}
