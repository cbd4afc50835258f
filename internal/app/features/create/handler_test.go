package create_test

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/metacode22/study-somoim/internal/app/features/create"
	uierrors "github.com/metacode22/study-somoim/internal/app/features/errors"
	"github.com/metacode22/study-somoim/internal/app/store/activity"
	"github.com/metacode22/study-somoim/internal/app/store/audit"
	"github.com/metacode22/study-somoim/internal/app/system/auditlog"
	"github.com/metacode22/study-somoim/internal/app/system/auth"
	"github.com/metacode22/study-somoim/internal/app/system/phase"
	"github.com/metacode22/study-somoim/internal/domain/models"
	"github.com/metacode22/study-somoim/internal/testutil"
	"go.uber.org/zap"
)

var now = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

type memAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (m *memAudit) Log(ctx context.Context, e audit.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func newFixture(t *testing.T, ph models.ChapterPhase) (*create.Handler, *testutil.Stack, *auth.SessionManager, *memAudit) {
	t.Helper()
	s := testutil.NewStack(t)
	s.Backend.AddChapter(testutil.ChapterAt("c1", ph, now))
	s.Backend.AddTeam("t1", "플랫폼팀")
	sm := testutil.NewSessionManager(t)
	rec := &memAudit{}
	al := auditlog.New(rec, zap.NewNop(), auditlog.Config{Admin: auditlog.DB})
	h := create.NewHandler(s.Chapters, s.Groups, s.Teams, sm, al, s.Activity,
		phase.FixedClock(now), time.UTC, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())
	return h, s, sm, rec
}

func validForm() url.Values {
	return url.Values{
		"teamId":        {"t1"},
		"type":          {string(models.GroupTypeStudyTeam)},
		"category":      {"AI"},
		"name":          {"LLM 논문 읽기"},
		"description":   {"<b>매주</b> 논문 한 편"},
		"hashtags":      {"#AI, 논문"},
		"capacity":      {"8"},
		"day":           {"목"},
		"time":          {"19:00"},
		"location":      {"본사 3층"},
		"operationPlan": {"발표 돌아가며 진행"},
	}
}

func TestHandleSubmit_CreatesApplication(t *testing.T) {
	h, s, sm, rec := newFixture(t, models.PhaseApplication)
	user := testutil.UserWithID("u1", "김리더")

	resp := testutil.Serve(h.HandleSubmit, testutil.NewFormRequest("/create", validForm(), user))

	resp.AssertRedirect(t, "/")
	flash, _ := testutil.FlashOf(t, sm, resp.ResponseRecorder)
	if flash.Kind != "success" {
		t.Errorf("flash = %+v", flash)
	}

	created, ok := s.Backend.Group("cg1")
	if !ok {
		t.Fatalf("no application created; calls = %v", s.Backend.Calls())
	}
	if created.Leader.ID != "u1" || created.Team != "t1" || created.MeetingSchedule != "매주 목 19:00" {
		t.Errorf("created = %+v", created)
	}
	if d := created.Description(); strings.Contains(d, "<b>") || !strings.Contains(d, "#AI #논문") || !strings.Contains(d, "모집 인원: 8명") {
		t.Errorf("description = %q", d)
	}
	if len(rec.events) != 1 || rec.events[0].EventType != audit.EventApplicationCreated {
		t.Errorf("audit = %+v", rec.events)
	}
	events := s.Activity.Events()
	if len(events) != 1 || events[0].EventType != activity.EventCreate || events[0].ChapterGroupID != "cg1" {
		t.Errorf("activity = %+v", events)
	}
}

func TestHandleSubmit_ClosedOutsideApplicationPhase(t *testing.T) {
	for _, ph := range []models.ChapterPhase{models.PhaseUpcoming, models.PhaseRecruitment, models.PhaseActive} {
		t.Run(string(ph), func(t *testing.T) {
			h, s, sm, _ := newFixture(t, ph)

			resp := testutil.Serve(h.HandleSubmit, testutil.NewFormRequest("/create", validForm(), testutil.MemberUser()))

			resp.AssertRedirect(t, "/create")
			flash, _ := testutil.FlashOf(t, sm, resp.ResponseRecorder)
			if flash.Kind != "error" {
				t.Errorf("flash = %+v", flash)
			}
			if s.Backend.CallCount("POST") != 0 {
				t.Error("closed chapter reached the backend")
			}
		})
	}
}

func TestHandleSubmit_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
	}{
		{"missing name", "name", ""},
		{"unknown team", "teamId", "t404"},
		{"bad category", "category", "요리"},
		{"bad day", "day", "월화"},
		{"bad capacity", "capacity", "many"},
		{"missing plan", "operationPlan", "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s, _, _ := newFixture(t, models.PhaseApplication)
			form := validForm()
			form.Set(tt.field, tt.value)

			resp := testutil.Serve(h.HandleSubmit, testutil.NewFormRequest("/create", form, testutil.MemberUser()))

			if loc := resp.Header().Get("Location"); loc != "" {
				t.Errorf("unexpected redirect to %q", loc)
			}
			if s.Backend.CallCount("POST") != 0 {
				t.Error("invalid form reached the backend")
			}
		})
	}
}

func TestHandleSubmit_BackendFailure(t *testing.T) {
	h, s, _, _ := newFixture(t, models.PhaseApplication)
	s.Backend.RejectNextWrite(http.StatusServiceUnavailable, "maintenance")

	resp := testutil.Serve(h.HandleSubmit, testutil.NewFormRequest("/create", validForm(), testutil.MemberUser()))

	resp.AssertStatus(t, http.StatusBadGateway)
}
