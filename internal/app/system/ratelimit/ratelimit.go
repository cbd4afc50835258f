// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/metacode22/study-somoim/internal/app/system/auth"
)

// Limiter counts requests per key in fixed windows. It is safe for
// concurrent use. Expired windows are dropped by Sweep, which the janitor
// calls on its interval.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int           // max requests per window
	duration time.Duration // window duration
	now      func() time.Time
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a limiter allowing limit requests per key every duration.
func New(limit int, duration time.Duration) *Limiter {
	return &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      time.Now,
	}
}

// Allow reports whether a request for key fits in the current window, and
// counts it if so.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, exists := l.windows[key]

	if !exists || !now.Before(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining returns how many requests are left for key in the current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, exists := l.windows[key]
	if !exists || !l.now().Before(w.expiresAt) {
		return l.limit
	}
	if remaining := l.limit - w.count; remaining > 0 {
		return remaining
	}
	return 0
}

// retryAfter is the time until key's window closes.
func (l *Limiter) retryAfter(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if w, ok := l.windows[key]; ok {
		if d := w.expiresAt.Sub(l.now()); d > 0 {
			return d
		}
	}
	return 0
}

// Reset clears the window for key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// Sweep drops expired windows and returns how many were removed.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for key, w := range l.windows {
		if !now.Before(w.expiresAt) {
			delete(l.windows, key)
			n++
		}
	}
	return n
}

// KeyFunc derives the bucket a request is counted in.
type KeyFunc func(r *http.Request) string

// ByIP keys requests by client address.
func ByIP(r *http.Request) string { return "ip:" + ClientIP(r) }

// ByUser keys signed-in requests by user id and anonymous ones by address.
func ByUser(r *http.Request) string {
	if u, ok := auth.CurrentUser(r); ok {
		return "user:" + u.ID
	}
	return ByIP(r)
}

// Rate limit headers set on every response that passes through Middleware.
const (
	HeaderLimit     = "X-RateLimit-Limit"
	HeaderRemaining = "X-RateLimit-Remaining"
)

// Middleware rejects requests over the limit with onLimit, after setting
// Retry-After. A nil onLimit writes a plain 429. Every response carries the
// window's limit and remaining count.
func (l *Limiter) Middleware(key KeyFunc, onLimit http.HandlerFunc) func(http.Handler) http.Handler {
	if onLimit == nil {
		onLimit = func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			allowed := l.Allow(k)
			w.Header().Set(HeaderLimit, strconv.Itoa(l.limit))
			w.Header().Set(HeaderRemaining, strconv.Itoa(l.Remaining(k)))
			if !allowed {
				secs := int(l.retryAfter(k).Seconds() + 0.999)
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				onLimit(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP extracts the client IP from an HTTP request.
// It checks X-Forwarded-For and X-Real-IP headers first (for proxied requests),
// then falls back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
