package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/metacode22/study-somoim/internal/app/system/auth"
	"go.uber.org/zap"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

func ok() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func withTestUser(r *http.Request, role string) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:    "6650a1b2c3d4e5f601234567",
		Name:  "김스파",
		Email: "kim@teamsparta.co",
		Role:  role,
	})
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	if _, err := auth.NewSessionManager("", "s", "", time.Hour, false, nil); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestRequireSignedIn_NoUser(t *testing.T) {
	sm := newTestSessionManager(t)
	h := sm.RequireSignedIn(ok())

	tests := []struct {
		name       string
		headers    map[string]string
		wantStatus int
		wantHeader string
	}{
		{"html redirects", map[string]string{"Accept": "text/html"}, http.StatusSeeOther, "Location"},
		{"htmx redirects", map[string]string{"HX-Request": "true"}, http.StatusUnauthorized, "HX-Redirect"},
		{"api 401", map[string]string{"Accept": "application/json"}, http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/groups/g1?x=1", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantHeader != "" {
				got := rec.Header().Get(tt.wantHeader)
				if !strings.HasPrefix(got, "/login?return=") || !strings.Contains(got, "%2Fgroups%2Fg1") {
					t.Errorf("%s = %q", tt.wantHeader, got)
				}
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	sm := newTestSessionManager(t)
	h := sm.RequireRole("admin")(ok())

	tests := []struct {
		name     string
		role     string
		accept   string
		wantCode int
		wantLoc  string
	}{
		{"admin proceeds", "admin", "text/html", http.StatusOK, ""},
		{"uppercase admin proceeds", "ADMIN", "text/html", http.StatusOK, ""},
		{"member forbidden html", "member", "text/html", http.StatusSeeOther, "/forbidden"},
		{"member forbidden api", "member", "application/json", http.StatusForbidden, ""},
		{"anonymous to login", "", "text/html", http.StatusSeeOther, "/login?return=%2Fadmin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.Header.Set("Accept", tt.accept)
			if tt.role != "" {
				req = withTestUser(req, tt.role)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantLoc != "" && rec.Header().Get("Location") != tt.wantLoc {
				t.Errorf("Location = %q, want %q", rec.Header().Get("Location"), tt.wantLoc)
			}
		})
	}
}

// cookiesFrom copies Set-Cookie headers from rec onto a new request.
func cookiesFrom(rec *httptest.ResponseRecorder, path string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSignIn_LoadSessionUser_SignOut(t *testing.T) {
	sm := newTestSessionManager(t)

	rec := httptest.NewRecorder()
	want := auth.SessionUser{ID: "u1", Name: "김스파", Email: "kim@teamsparta.co", Role: auth.RoleAdmin}
	if err := sm.SignIn(rec, httptest.NewRequest(http.MethodGet, "/auth/google/callback", nil), want); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	var got *auth.SessionUser
	capture := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))
	capture.ServeHTTP(httptest.NewRecorder(), cookiesFrom(rec, "/"))
	if got == nil || *got != want {
		t.Fatalf("CurrentUser = %+v, want %+v", got, want)
	}
	if !got.IsAdmin() {
		t.Error("IsAdmin should be true")
	}

	out := httptest.NewRecorder()
	if err := sm.SignOut(out, cookiesFrom(rec, "/logout")); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	var expired bool
	for _, c := range out.Result().Cookies() {
		if c.Name == "test-session" && c.MaxAge < 0 {
			expired = true
		}
	}
	if !expired {
		t.Error("SignOut did not expire the cookie")
	}
}

func TestLoadSessionUser_GarbageCookie(t *testing.T) {
	sm := newTestSessionManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "test-session", Value: "not-a-valid-cookie"})

	called := false
	sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := auth.CurrentUser(r); ok {
			t.Error("garbage cookie produced a user")
		}
	})).ServeHTTP(httptest.NewRecorder(), req)
	if !called {
		t.Error("next handler not called")
	}
}

func TestFlash_OneShot(t *testing.T) {
	sm := newTestSessionManager(t)

	rec := httptest.NewRecorder()
	if err := sm.SetFlash(rec, httptest.NewRequest(http.MethodPost, "/groups/g1/apply", nil), "success", "신청이 완료되었습니다."); err != nil {
		t.Fatal(err)
	}

	rec2 := httptest.NewRecorder()
	f, ok := sm.PopFlash(rec2, cookiesFrom(rec, "/groups/g1"))
	if !ok || f.Kind != "success" || f.Message != "신청이 완료되었습니다." {
		t.Fatalf("PopFlash = %+v, %v", f, ok)
	}

	if _, ok := sm.PopFlash(httptest.NewRecorder(), cookiesFrom(rec2, "/groups/g1")); ok {
		t.Error("flash shown twice")
	}
}

func TestCurrentUser_NoUser(t *testing.T) {
	user, ok := auth.CurrentUser(httptest.NewRequest(http.MethodGet, "/", nil))
	if ok || user != nil {
		t.Errorf("CurrentUser = %+v, %v; want nil, false", user, ok)
	}
}
