package auditlog_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/metacode22/study-somoim/internal/app/store/audit"
	"github.com/metacode22/study-somoim/internal/app/system/auditlog"
	"github.com/metacode22/study-somoim/internal/domain/models"
	"github.com/metacode22/study-somoim/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type memRecorder struct {
	mu     sync.Mutex
	events []audit.Event
	err    error
}

func (m *memRecorder) Log(ctx context.Context, e audit.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func (m *memRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func TestLogger_NilLogger(t *testing.T) {
	// nil logger should be a no-op (not panic)
	var logger *auditlog.Logger
	req := httptest.NewRequest("GET", "/", nil)

	logger.Log(context.Background(), audit.Event{EventType: "test"})
	logger.LoginSuccess(context.Background(), req, "u1", "u1@teamsparta.co")
	logger.Logout(context.Background(), req, "u1")
}

func TestLogger_Destinations(t *testing.T) {
	tests := []struct {
		setting string
		wantDB  int
		wantZap int
	}{
		{auditlog.All, 1, 1},
		{auditlog.DB, 1, 0},
		{auditlog.Log, 0, 1},
		{auditlog.Off, 0, 0},
		{"", 1, 1},
	}
	for _, tt := range tests {
		t.Run("setting="+tt.setting, func(t *testing.T) {
			rec := &memRecorder{}
			core, logs := observer.New(zapcore.InfoLevel)
			logger := auditlog.New(rec, zap.New(core), auditlog.Config{Auth: tt.setting, Admin: auditlog.Off})

			logger.LoginSuccess(context.Background(), httptest.NewRequest("GET", "/", nil), "u1", "u1@teamsparta.co")

			if rec.count() != tt.wantDB {
				t.Errorf("db events: got %d, want %d", rec.count(), tt.wantDB)
			}
			if logs.Len() != tt.wantZap {
				t.Errorf("zap entries: got %d, want %d", logs.Len(), tt.wantZap)
			}
		})
	}
}

func TestLogger_CategoryRouting(t *testing.T) {
	rec := &memRecorder{}
	logger := auditlog.New(rec, zap.NewNop(), auditlog.Config{Auth: auditlog.Off, Admin: auditlog.DB})
	req := httptest.NewRequest("POST", "/admin/chapters/new", nil)

	logger.Logout(context.Background(), req, "u1")
	logger.ChapterCreated(context.Background(), req, "admin1", models.Chapter{ID: "ch1", Name: "10기"})

	if rec.count() != 1 {
		t.Fatalf("got %d events, want only the admin one", rec.count())
	}
	e := rec.events[0]
	if e.EventType != audit.EventChapterCreated || e.ActorID != "admin1" || e.ChapterID != "ch1" {
		t.Errorf("event = %+v", e)
	}
	if e.Details["chapter_name"] != "10기" {
		t.Errorf("details = %v", e.Details)
	}
}

func TestLogger_FailedLoginWarns(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Auth: auditlog.All})

	logger.LoginFailedDomain(context.Background(), httptest.NewRequest("GET", "/auth/google/callback", nil), "x@gmail.com", "teamsparta.co")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("level = %v, want warn", entries[0].Level)
	}
	if entries[0].ContextMap()["event_type"] != audit.EventLoginFailedDomain {
		t.Errorf("fields = %v", entries[0].ContextMap())
	}
}

func TestLogger_MemberSelectedEventType(t *testing.T) {
	rec := &memRecorder{}
	logger := auditlog.New(rec, zap.NewNop(), auditlog.Config{Admin: auditlog.DB})
	req := httptest.NewRequest("POST", "/", nil)

	logger.MemberSelected(context.Background(), req, "leader", "ch1", "g1", models.Membership{ID: "m1", User: models.UserRef{ID: "u1"}, Role: models.RoleRegular})
	logger.MemberSelected(context.Background(), req, "leader", "ch1", "g1", models.Membership{ID: "m1", User: models.UserRef{ID: "u1"}, Role: models.RoleObserver})

	if rec.events[0].EventType != audit.EventMemberSelected || rec.events[1].EventType != audit.EventMemberUnselected {
		t.Errorf("types = %s, %s", rec.events[0].EventType, rec.events[1].EventType)
	}
	if rec.events[0].UserID != "u1" {
		t.Errorf("UserID = %q", rec.events[0].UserID)
	}
}

func TestLogger_StoreErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	logger := auditlog.New(&memRecorder{err: errors.New("disk full")}, zap.New(core), auditlog.Config{Auth: auditlog.DB})

	logger.Logout(context.Background(), httptest.NewRequest("GET", "/logout", nil), "u1")

	if logs.FilterMessage("failed to store audit event").Len() != 1 {
		t.Error("expected store failure to be logged")
	}
}

func TestLogger_WithMongoStore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: auditlog.DB, Admin: auditlog.DB})
	logger.LoginSuccess(ctx, httptest.NewRequest("GET", "/", nil), "u1", "u1@teamsparta.co")

	events, err := store.Query(ctx, audit.QueryFilter{UserID: "u1", Limit: 10})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 || events[0].EventType != audit.EventLoginSuccess {
		t.Errorf("events = %+v", events)
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
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.4"}, "10.0.0.2:1234", "198.51.100.4"},
		{"remote addr", nil, "192.0.2.1:5555", "192.0.2.1:5555"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := auditlog.ClientIP(req); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
