// Package timeouts holds the deadlines handlers put on backend and Mongo I/O.
//
//   - Ping: health checks
//   - Short: a single backend read or a session-store write
//   - Medium: list reads and single writes
//   - Long: eligibility fan-out plus apply, and other multi-call flows
//
// Defaults can be overridden at startup with Configure or ConfigureFromEnv.
package timeouts

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

var (
	mu  sync.RWMutex
	cur = defaults()
)

func defaults() Config {
	return Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium, Long: DefaultLong}
}

// Config holds timeout configuration values.
// Zero values are ignored (current values are kept).
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// Ping returns the timeout for health checks.
func Ping() time.Duration { return Current().Ping }

// Short returns the timeout for a single read.
func Short() time.Duration { return Current().Short }

// Medium returns the timeout for lists and simple writes.
func Medium() time.Duration { return Current().Medium }

// Long returns the timeout for multi-call flows.
func Long() time.Duration { return Current().Long }

// Current returns the current timeout configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

// Configure overrides the non-zero values in cfg. Call it during startup.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	merge(&cur.Ping, cfg.Ping)
	merge(&cur.Short, cfg.Short)
	merge(&cur.Medium, cfg.Medium)
	merge(&cur.Long, cfg.Long)
}

func merge(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

// Reset restores all timeouts to their default values. Tests only.
func Reset() {
	mu.Lock()
	cur = defaults()
	mu.Unlock()
}

// ConfigureFromEnv reads TIMEOUT_PING, TIMEOUT_SHORT, TIMEOUT_MEDIUM and
// TIMEOUT_LONG (Go durations such as "500ms" or "2m"). Unset or invalid
// values are skipped. It returns how many values were applied.
func ConfigureFromEnv() int {
	var cfg Config
	n := 0
	for _, v := range []struct {
		env string
		dst *time.Duration
	}{
		{"TIMEOUT_PING", &cfg.Ping},
		{"TIMEOUT_SHORT", &cfg.Short},
		{"TIMEOUT_MEDIUM", &cfg.Medium},
		{"TIMEOUT_LONG", &cfg.Long},
	} {
		raw := os.Getenv(v.env)
		if raw == "" {
			continue
		}
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			*v.dst = d
			n++
		}
	}
	Configure(cfg)
	return n
}

// WithTimeout derives a context with timeout. The returned cancel logs a
// warning when the deadline was what ended the operation.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "apply")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
