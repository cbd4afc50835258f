package errors_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/metacode22/study-somoim/internal/app/backend"
	uierrors "github.com/metacode22/study-somoim/internal/app/features/errors"
	"github.com/metacode22/study-somoim/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrorLogger(t *testing.T) {
	tests := []struct {
		name       string
		call       func(e *uierrors.ErrorLogger, w http.ResponseWriter, r *http.Request)
		wantStatus int
		wantLevel  zapcore.Level
		wantLogged bool
	}{
		{
			name: "backend 404 renders not found quietly",
			call: func(e *uierrors.ErrorLogger, w http.ResponseWriter, r *http.Request) {
				e.LogBackendError(w, r, "load group", &backend.APIError{Status: 404, Path: "/chapters/c1/groups/g1"}, "/")
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "backend 500 is a bad gateway",
			call: func(e *uierrors.ErrorLogger, w http.ResponseWriter, r *http.Request) {
				e.LogBackendError(w, r, "load group", &backend.APIError{Status: 500, Path: "/chapters/c1/groups/g1"}, "/")
			},
			wantStatus: http.StatusBadGateway,
			wantLevel:  zapcore.ErrorLevel,
			wantLogged: true,
		},
		{
			name: "server error",
			call: func(e *uierrors.ErrorLogger, w http.ResponseWriter, r *http.Request) {
				e.LogServerError(w, r, "render", errors.New("boom"), "문제가 발생했습니다.", "/")
			},
			wantStatus: http.StatusInternalServerError,
			wantLevel:  zapcore.ErrorLevel,
			wantLogged: true,
		},
		{
			name: "bad request",
			call: func(e *uierrors.ErrorLogger, w http.ResponseWriter, r *http.Request) {
				e.LogBadRequest(w, r, "parse form", errors.New("bad"), "잘못된 요청입니다.", "/")
			},
			wantStatus: http.StatusBadRequest,
			wantLevel:  zapcore.WarnLevel,
			wantLogged: true,
		},
		{
			name: "forbidden",
			call: func(e *uierrors.ErrorLogger, w http.ResponseWriter, r *http.Request) {
				e.LogForbidden(w, r, "not leader", "리더만 접근할 수 있습니다.", "/")
			},
			wantStatus: http.StatusForbidden,
			wantLevel:  zapcore.WarnLevel,
			wantLogged: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			e := uierrors.NewErrorLogger(zap.New(core))
			req := testutil.NewAuthenticatedRequest(http.MethodGet, "/groups/g1", testutil.UserWithID("u1", "김부원"))
			rec := httptest.NewRecorder()

			tt.call(e, rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			entries := logs.All()
			if !tt.wantLogged {
				if len(entries) != 0 {
					t.Errorf("expected no log entries, got %d", len(entries))
				}
				return
			}
			if len(entries) != 1 {
				t.Fatalf("log entries = %d, want 1", len(entries))
			}
			if entries[0].Level != tt.wantLevel {
				t.Errorf("level = %v, want %v", entries[0].Level, tt.wantLevel)
			}
			if entries[0].ContextMap()["user_id"] != "u1" {
				t.Errorf("fields = %v, want user_id", entries[0].ContextMap())
			}
		})
	}
}

func TestNewErrorLogger_NilLogger(t *testing.T) {
	if e := uierrors.NewErrorLogger(nil); e.Log == nil {
		t.Fatal("nil logger should be replaced with a no-op")
	}
}
