package login_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/metacode22/study-somoim/internal/app/features/login"
	"github.com/metacode22/study-somoim/internal/testutil"
	"go.uber.org/zap"
)

func TestServeLogin_SignedInRedirectsHome(t *testing.T) {
	h := login.NewHandler("teamsparta.co", true, zap.NewNop())
	req := testutil.NewAuthenticatedRequest("GET", "/login", testutil.MemberUser())

	rec := testutil.Serve(h.ServeLogin, req)

	rec.AssertRedirect(t, "/")
}

func TestServeLogin_AnonymousDoesNotRedirect(t *testing.T) {
	h := login.NewHandler("teamsparta.co", true, zap.NewNop())
	req := testutil.NewRequest("GET", "/login?error=InvalidDomain")

	rec := testutil.Serve(h.ServeLogin, req)

	if rec.Header().Get("Location") != "" {
		t.Errorf("unexpected redirect to %q", rec.Header().Get("Location"))
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		code     string
		contains string
	}{
		{login.ErrInvalidDomain, "teamsparta.co 이메일로만"},
		{login.ErrAccountNotLinked, "다른 방법"},
		{login.ErrInvalidState, "만료"},
		{login.ErrGoogleDenied, "취소"},
		{login.ErrTokenExchange, "Google 계정 정보"},
		{login.ErrInternal, "문제가 발생"},
		{login.ErrRateLimited, "너무 많습니다"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got := login.ErrorMessage(tt.code, "teamsparta.co")
			if !strings.Contains(got, tt.contains) {
				t.Errorf("ErrorMessage(%q) = %q, want it to contain %q", tt.code, got, tt.contains)
			}
		})
	}

	for _, code := range []string{"", "SomethingElse"} {
		if got := login.ErrorMessage(code, "teamsparta.co"); got != "" {
			t.Errorf("ErrorMessage(%q) = %q, want empty", code, got)
		}
	}
}

func TestRoutes(t *testing.T) {
	h := login.NewHandler("teamsparta.co", false, zap.NewNop())
	r := login.Routes(h)
	req := testutil.NewAuthenticatedRequest("GET", "/", testutil.MemberUser())
	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusSeeOther)
}
