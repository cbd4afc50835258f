// internal/app/system/workers/janitor.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweeper drops expired in-memory entries. *querycache.Cache and
// *ratelimit.Limiter satisfy it.
type Sweeper interface {
	Sweep() int
}

// Sweepers sweeps each member in turn and reports the total removed.
type Sweepers []Sweeper

func (s Sweepers) Sweep() int {
	n := 0
	for _, sw := range s {
		if sw != nil {
			n += sw.Sweep()
		}
	}
	return n
}

// ExpiredCleaner deletes expired persisted records. *oauthstate.Store
// satisfies it.
type ExpiredCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// Janitor is a background worker that periodically sweeps the query cache
// and deletes expired OAuth states.
type Janitor struct {
	cache    Sweeper
	states   ExpiredCleaner
	log      *zap.Logger
	interval time.Duration
	timeout  time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewJanitor creates a janitor. Either cache or states may be nil.
//
// Parameters:
//   - cache: the query cache to sweep
//   - states: the OAuth state store to clean
//   - logger: zap logger for logging
//   - interval: how often to run (e.g., 1 minute)
func NewJanitor(cache Sweeper, states ExpiredCleaner, logger *zap.Logger, interval time.Duration) *Janitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Janitor{
		cache:    cache,
		states:   states,
		log:      logger,
		interval: interval,
		timeout:  30 * time.Second,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background loop.
func (w *Janitor) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("janitor started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. It is safe to
// call more than once.
func (w *Janitor) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("janitor stopped")
	})
}

func (w *Janitor) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.RunOnce()
		}
	}
}

// RunOnce performs a single sweep.
func (w *Janitor) RunOnce() {
	if w.cache != nil {
		if n := w.cache.Sweep(); n > 0 {
			w.log.Debug("swept expired cache entries", zap.Int("count", n))
		}
	}
	if w.states == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	count, err := w.states.CleanupExpired(ctx)
	if err != nil {
		w.log.Error("failed to delete expired oauth states", zap.Error(err))
		return
	}
	if count > 0 {
		w.log.Info("deleted expired oauth states", zap.Int64("count", count))
	}
}
