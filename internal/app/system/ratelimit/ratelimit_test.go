package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/metacode22/study-somoim/internal/app/system/auth"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(limit int, d time.Duration) (*Limiter, *fakeClock) {
	c := &fakeClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	l := New(limit, d)
	l.now = c.now
	return l, c
}

func TestLimiter_Window(t *testing.T) {
	l, clock := newTestLimiter(2, time.Minute)

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if l.Allow("a") {
		t.Fatal("third request should be limited")
	}
	if !l.Allow("b") {
		t.Fatal("keys are independent")
	}
	if got := l.Remaining("a"); got != 0 {
		t.Errorf("Remaining = %d", got)
	}

	clock.advance(time.Minute)
	if !l.Allow("a") {
		t.Fatal("window should reset after its duration")
	}
	if got := l.Remaining("a"); got != 1 {
		t.Errorf("Remaining after reset = %d", got)
	}
}

func TestLimiter_ResetAndSweep(t *testing.T) {
	l, clock := newTestLimiter(1, time.Minute)
	l.Allow("a")
	l.Allow("b")

	l.Reset("a")
	if !l.Allow("a") {
		t.Fatal("Reset should clear the window")
	}

	clock.advance(2 * time.Minute)
	if n := l.Sweep(); n != 2 {
		t.Errorf("Sweep removed %d, want 2", n)
	}
	if n := l.Sweep(); n != 0 {
		t.Errorf("second Sweep removed %d", n)
	}
}

func TestMiddleware(t *testing.T) {
	l, _ := newTestLimiter(1, 30*time.Second)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := l.Middleware(ByUser, nil)(ok)

	req := func(userID string) *http.Request {
		r := httptest.NewRequest("GET", "/api/groups", nil)
		r.RemoteAddr = "192.0.2.1:5555"
		if userID != "" {
			r = auth.WithTestUser(r, &auth.SessionUser{ID: userID, Role: auth.RoleMember})
		}
		return r
	}

	tests := []struct {
		name       string
		user       string
		wantStatus int
	}{
		{"first user request", "u1", http.StatusNoContent},
		{"second user request", "u1", http.StatusTooManyRequests},
		{"other user", "u2", http.StatusNoContent},
		{"anonymous uses ip", "", http.StatusNoContent},
		{"anonymous again", "", http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req(tt.user))
		if rec.Code != tt.wantStatus {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.wantStatus)
		}
		if rec.Code == http.StatusTooManyRequests && rec.Header().Get("Retry-After") != "30" {
			t.Errorf("%s: Retry-After = %q", tt.name, rec.Header().Get("Retry-After"))
		}
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": " 198.51.100.4 "}, "10.0.0.2:1234", "198.51.100.4"},
		{"strips port", nil, "192.0.2.1:5555", "192.0.2.1"},
		{"no port", nil, "192.0.2.9", "192.0.2.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMiddleware_RemainingHeader(t *testing.T) {
	l, _ := newTestLimiter(2, time.Minute)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := l.Middleware(ByIP, nil)(ok)

	for i, want := range []string{"1", "0", "0"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/me", nil))
		if got := rec.Header().Get(HeaderRemaining); got != want {
			t.Errorf("request %d: %s = %q, want %q", i+1, HeaderRemaining, got, want)
		}
		if got := rec.Header().Get(HeaderLimit); got != "2" {
			t.Errorf("request %d: %s = %q", i+1, HeaderLimit, got)
		}
	}
}
