package groups_test

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	uierrors "github.com/metacode22/study-somoim/internal/app/features/errors"
	"github.com/metacode22/study-somoim/internal/app/features/groups"
	"github.com/metacode22/study-somoim/internal/app/store/activity"
	"github.com/metacode22/study-somoim/internal/app/store/audit"
	"github.com/metacode22/study-somoim/internal/app/system/auditlog"
	"github.com/metacode22/study-somoim/internal/app/system/auth"
	"github.com/metacode22/study-somoim/internal/app/system/eligibility"
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

func (m *memAudit) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.events {
		out = append(out, e.EventType)
	}
	return out
}

type fixture struct {
	h     *groups.Handler
	s     *testutil.Stack
	sm    *auth.SessionManager
	audit *memAudit
}

// newFixture seeds a recruiting chapter c1 with study g1 (월, led by
// "leader") and study g2 (월, led by "other").
func newFixture(t *testing.T) fixture {
	t.Helper()
	s := testutil.NewStack(t)
	s.Backend.AddChapter(testutil.ChapterAt("c1", models.PhaseRecruitment, now))
	s.Backend.AddGroup(testutil.GroupFixture("g1", "c1", "Go 스터디", models.GroupTypeStudyTeam, "매주 월 19:00", "leader"))
	s.Backend.AddGroup(testutil.GroupFixture("g2", "c1", "SQL 스터디", models.GroupTypeStudyTeam, "월, 목 12:00", "other"))

	sm := testutil.NewSessionManager(t)
	rec := &memAudit{}
	al := auditlog.New(rec, zap.NewNop(), auditlog.Config{Auth: auditlog.Off, Admin: auditlog.DB})
	h := groups.NewHandler(s.Chapters, s.Groups, s.Memberships, sm, al, s.Activity,
		phase.FixedClock(now), time.UTC, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())
	return fixture{h: h, s: s, sm: sm, audit: rec}
}

func post(target string, form url.Values, user testutil.TestUser, params ...string) *http.Request {
	req := testutil.NewFormRequest(target, form, user)
	for i := 0; i+1 < len(params); i += 2 {
		req = testutil.WithChiURLParam(req, params[i], params[i+1])
	}
	return req
}

func get(target string, user testutil.TestUser, params ...string) *http.Request {
	req := testutil.NewAuthenticatedRequest("GET", target, user)
	for i := 0; i+1 < len(params); i += 2 {
		req = testutil.WithChiURLParam(req, params[i], params[i+1])
	}
	return req
}

/*─────────────────────────────────────────────────────────────────────────────*
| Detail                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func TestServeDetail_Status(t *testing.T) {
	f := newFixture(t)
	user := testutil.UserWithID("u1", "김부원")

	tests := []struct {
		name string
		id   string
		want int
	}{
		{"found", "g1", http.StatusOK},
		{"missing", "nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.Serve(f.h.ServeDetail, get("/groups/"+tt.id, user, "id", tt.id))
			rec.AssertStatus(t, tt.want)
		})
	}
}

func TestServeDetail_NoChapter(t *testing.T) {
	f := newFixture(t)
	f.s.Backend.SetCurrent("")

	rec := testutil.Serve(f.h.ServeDetail, get("/groups/g1", testutil.MemberUser(), "id", "g1"))

	rec.AssertStatus(t, http.StatusNotFound)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Apply                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func TestHandleApply_Success(t *testing.T) {
	f := newFixture(t)
	user := testutil.UserWithID("u1", "김부원")

	rec := testutil.Serve(f.h.HandleApply, post("/groups/g1/apply", url.Values{"participationType": {"regular"}}, user, "id", "g1"))

	rec.AssertRedirect(t, "/groups/g1")
	flash, ok := testutil.FlashOf(t, f.sm, rec.ResponseRecorder)
	if !ok || flash.Kind != "success" {
		t.Errorf("flash = %+v, %v", flash, ok)
	}
	members := f.s.Backend.Members("g1")
	if len(members) != 1 || members[0].User.ID != "u1" || members[0].ParticipationType != models.ParticipationRegular {
		t.Fatalf("members = %+v", members)
	}
	if w := f.s.Backend.Writers(); len(w) != 1 || w[0] != "u1" {
		t.Errorf("writers = %v", w)
	}
	events := f.s.Activity.Events()
	if len(events) != 1 || events[0].EventType != activity.EventJoin || events[0].ChapterGroupID != "g1" {
		t.Errorf("activity = %+v", events)
	}
}

func TestHandleApply_WeekdayConflict(t *testing.T) {
	f := newFixture(t)
	f.s.Backend.AddMember("g2", testutil.MembershipFixture("m1", "g2", "u1", models.RoleObserver, models.ParticipationRegular))
	user := testutil.UserWithID("u1", "김부원")

	rec := testutil.Serve(f.h.HandleApply, post("/groups/g1/apply", url.Values{"participationType": {"regular"}}, user, "id", "g1"))

	rec.AssertRedirect(t, "/groups/g1")
	flash, _ := testutil.FlashOf(t, f.sm, rec.ResponseRecorder)
	if flash.Kind != "error" || flash.Message != eligibility.ReasonWeekdayConflict {
		t.Errorf("flash = %+v", flash)
	}
	if n := f.s.Backend.CallCount("POST /chapters/c1/groups/g1/members"); n != 0 {
		t.Errorf("apply reached the backend %d times", n)
	}
	if len(f.s.Activity.Events()) != 0 {
		t.Error("rejected apply must not be recorded")
	}
}

func TestHandleApply_ObserverBypassesConflict(t *testing.T) {
	f := newFixture(t)
	f.s.Backend.AddMember("g2", testutil.MembershipFixture("m1", "g2", "u1", models.RoleObserver, models.ParticipationRegular))

	rec := testutil.Serve(f.h.HandleApply, post("/groups/g1/apply", url.Values{"participationType": {"observer"}}, testutil.UserWithID("u1", "김부원"), "id", "g1"))

	rec.AssertRedirect(t, "/groups/g1")
	if len(f.s.Backend.Members("g1")) != 1 {
		t.Error("observer application should go through")
	}
}

func TestHandleApply_BackendRefusal(t *testing.T) {
	f := newFixture(t)
	f.s.Backend.RejectNextWrite(http.StatusConflict, "이미 신청한 그룹입니다.")

	rec := testutil.Serve(f.h.HandleApply, post("/groups/g1/apply", url.Values{"participationType": {"regular"}}, testutil.UserWithID("u1", "김부원"), "id", "g1"))

	rec.AssertRedirect(t, "/groups/g1")
	flash, _ := testutil.FlashOf(t, f.sm, rec.ResponseRecorder)
	if flash.Kind != "error" || flash.Message != "이미 신청한 그룹입니다." {
		t.Errorf("flash = %+v", flash)
	}
}

func TestHandleApply_BackendFailure(t *testing.T) {
	f := newFixture(t)
	f.s.Backend.RejectNextWrite(http.StatusInternalServerError, "boom")

	rec := testutil.Serve(f.h.HandleApply, post("/groups/g1/apply", url.Values{"participationType": {"regular"}}, testutil.UserWithID("u1", "김부원"), "id", "g1"))

	rec.AssertStatus(t, http.StatusBadGateway)
}

func TestHandleApply_BadParticipation(t *testing.T) {
	f := newFixture(t)

	rec := testutil.Serve(f.h.HandleApply, post("/groups/g1/apply", url.Values{"participationType": {"guest"}}, testutil.MemberUser(), "id", "g1"))

	rec.AssertStatus(t, http.StatusBadRequest)
	if len(f.s.Backend.Writers()) != 0 {
		t.Error("no write expected")
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Selection                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func TestServeSelection_LeaderOnly(t *testing.T) {
	f := newFixture(t)

	rec := testutil.Serve(f.h.ServeSelection, get("/groups/g1/selection", testutil.UserWithID("u1", "김부원"), "id", "g1"))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.Serve(f.h.ServeSelection, get("/groups/g1/selection", testutil.UserWithID("leader", "리더"), "id", "g1"))
	rec.AssertStatus(t, http.StatusOK)
}

func TestHandleSelect(t *testing.T) {
	tests := []struct {
		role      models.Role
		wantEvent string
		wantAudit string
	}{
		{models.RoleRegular, activity.EventSelect, audit.EventMemberSelected},
		{models.RoleObserver, activity.EventUnselect, audit.EventMemberUnselected},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			f := newFixture(t)
			f.s.Backend.AddMember("g1", testutil.MembershipFixture("m1", "g1", "u1", models.RoleObserver, models.ParticipationRegular))

			req := post("/groups/g1/selection/m1", url.Values{"role": {string(tt.role)}}, testutil.UserWithID("leader", "리더"), "id", "g1", "membershipID", "m1")
			rec := testutil.Serve(f.h.HandleSelect, req)

			rec.AssertRedirect(t, "/groups/g1/selection")
			if got := f.s.Backend.Members("g1")[0].Role; got != tt.role {
				t.Errorf("role = %q, want %q", got, tt.role)
			}
			if types := f.audit.types(); len(types) != 1 || types[0] != tt.wantAudit {
				t.Errorf("audit = %v", types)
			}
			events := f.s.Activity.Events()
			if len(events) != 1 || events[0].EventType != tt.wantEvent || events[0].UserID != "u1" {
				t.Errorf("activity = %+v", events)
			}
		})
	}
}

func TestHandleSelect_Refusals(t *testing.T) {
	t.Run("non-leader", func(t *testing.T) {
		f := newFixture(t)
		f.s.Backend.AddMember("g1", testutil.MembershipFixture("m1", "g1", "u1", models.RoleObserver, models.ParticipationRegular))

		req := post("/groups/g1/selection/m1", url.Values{"role": {"regular"}}, testutil.UserWithID("u2", "다른 사람"), "id", "g1", "membershipID", "m1")
		rec := testutil.Serve(f.h.HandleSelect, req)

		rec.AssertStatus(t, http.StatusForbidden)
		if f.s.Backend.CallCount("PATCH") != 0 {
			t.Error("non-leader reached the backend")
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		f := newFixture(t)
		req := post("/groups/g1/selection/m1", url.Values{"role": {"leader"}}, testutil.UserWithID("leader", "리더"), "id", "g1", "membershipID", "m1")
		rec := testutil.Serve(f.h.HandleSelect, req)
		rec.AssertStatus(t, http.StatusBadRequest)
	})

	t.Run("selection complete", func(t *testing.T) {
		f := newFixture(t)
		cg, _ := f.s.Backend.Group("g1")
		cg.IsRegistered = true
		f.s.Backend.AddGroup(cg)

		req := post("/groups/g1/selection/m1", url.Values{"role": {"regular"}}, testutil.UserWithID("leader", "리더"), "id", "g1", "membershipID", "m1")
		rec := testutil.Serve(f.h.HandleSelect, req)

		rec.AssertRedirect(t, "/groups/g1/selection")
		flash, _ := testutil.FlashOf(t, f.sm, rec.ResponseRecorder)
		if flash.Kind != "error" {
			t.Errorf("flash = %+v", flash)
		}
		if f.s.Backend.CallCount("PATCH") != 0 {
			t.Error("select after registration reached the backend")
		}
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Registration                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func TestHandleRegistration(t *testing.T) {
	f := newFixture(t)
	f.s.Backend.AddMember("g1", testutil.MembershipFixture("m1", "g1", "u1", models.RoleRegular, models.ParticipationRegular))
	leader := testutil.UserWithID("leader", "리더")

	form := url.Values{"subLeaderId": {"u1"}, "allowNewHires": {"on"}}
	rec := testutil.Serve(f.h.HandleRegistration, post("/groups/g1/registration", form, leader, "id", "g1"))

	rec.AssertRedirect(t, "/groups/g1")
	cg, _ := f.s.Backend.Group("g1")
	if !cg.SelectionComplete() || !cg.AllowNewHires || cg.LeaderOrientationAttended {
		t.Errorf("group = %+v", cg)
	}
	if cg.SubLeader == nil || cg.SubLeader.ID != "u1" {
		t.Errorf("sub leader = %+v", cg.SubLeader)
	}
	if types := f.audit.types(); len(types) != 1 || types[0] != audit.EventRegistrationFinalized {
		t.Errorf("audit = %v", types)
	}
	events := f.s.Activity.Events()
	if len(events) != 1 || events[0].EventType != activity.EventFinalize || events[0].UserID != "leader" {
		t.Errorf("activity = %+v", events)
	}
}

func TestHandleRegistration_SubLeaderMustBeSelected(t *testing.T) {
	f := newFixture(t)
	f.s.Backend.AddMember("g1", testutil.MembershipFixture("m1", "g1", "u1", models.RoleObserver, models.ParticipationRegular))

	rec := testutil.Serve(f.h.HandleRegistration, post("/groups/g1/registration", url.Values{"subLeaderId": {"u1"}}, testutil.UserWithID("leader", "리더"), "id", "g1"))

	rec.AssertRedirect(t, "/groups/g1/registration")
	flash, _ := testutil.FlashOf(t, f.sm, rec.ResponseRecorder)
	if flash.Kind != "error" || !strings.Contains(flash.Message, "부리더") {
		t.Errorf("flash = %+v", flash)
	}
	if f.s.Backend.CallCount("POST /chapters/c1/groups/g1/registration") != 0 {
		t.Error("invalid registration reached the backend")
	}
}

func TestServeRegistration_AlreadyRegistered(t *testing.T) {
	f := newFixture(t)
	cg, _ := f.s.Backend.Group("g1")
	cg.Status = "registered"
	f.s.Backend.AddGroup(cg)

	rec := testutil.Serve(f.h.ServeRegistration, get("/groups/g1/registration", testutil.UserWithID("leader", "리더"), "id", "g1"))

	rec.AssertRedirect(t, "/groups/g1")
}

func TestRoutes(t *testing.T) {
	f := newFixture(t)
	if groups.Routes(f.h, f.sm) == nil {
		t.Fatal("Routes returned nil")
	}
}
