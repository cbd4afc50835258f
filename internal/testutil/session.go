package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/metacode22/study-somoim/internal/app/system/auth"
	"go.uber.org/zap"
)

// SessionKey is a fixed dev-mode key for tests.
const SessionKey = "test-session-key-for-testing-only-0123456789"

// NewSessionManager returns an insecure (dev mode) session manager.
func NewSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(SessionKey, "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return sm
}

// FlashOf replays the cookies set on rec into a fresh request and pops the
// flash stored there. ok is false when no flash was set.
func FlashOf(t *testing.T, sm *auth.SessionManager, rec *httptest.ResponseRecorder) (auth.Flash, bool) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return sm.PopFlash(httptest.NewRecorder(), req)
}

// Serve runs h and swallows a panic from template rendering; the template
// engine is not booted in unit tests, so only status, headers and side
// effects are meaningful for pages that render.
func Serve(h http.HandlerFunc, req *http.Request) *ResponseRecorder {
	rec := NewRecorder()
	func() {
		defer func() { _ = recover() }()
		h(rec, req)
	}()
	return rec
}
