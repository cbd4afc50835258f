package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/metacode22/study-somoim/internal/app/system/eligibility"
	"github.com/metacode22/study-somoim/internal/domain/models"
	"github.com/metacode22/study-somoim/internal/testutil"
	"gopkg.in/yaml.v3"
)

var now = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

// seed mirrors the API fixture: studies g1 (월) and g2 (월, 목), closed club
// g3 (금), and u1 a regular member of g1.
func seed(t *testing.T) *testutil.FakeBackend {
	t.Helper()
	fb := testutil.NewFakeBackend(t)
	fb.AddChapter(testutil.ChapterAt("c1", models.PhaseRecruitment, now))
	fb.AddGroup(testutil.GroupFixture("g1", "c1", "Go 스터디", models.GroupTypeStudyTeam, "매주 월 19:00", "leader"))
	fb.AddGroup(testutil.GroupFixture("g2", "c1", "SQL 스터디", models.GroupTypeStudyTeam, "월, 목 12:00", "other"))
	club := testutil.GroupFixture("g3", "c1", "등산 소모임", models.GroupTypeClub, "매주 금 18:00", "other")
	club.ApplyStatus = "closed"
	fb.AddGroup(club)
	fb.AddMember("g1", testutil.MembershipFixture("m1", "g1", "u1", models.RoleRegular, models.ParticipationRegular))

	t.Setenv("SOMOIM_BACKEND_BASE_URL", fb.URL())
	t.Setenv("SOMOIM_TIMEZONE", "UTC")
	t.Setenv("SOMOIM_USER_ID", "")
	return fb
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", "", "--at", now.Format(time.RFC3339)}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    format
		wantErr bool
	}{
		{"table", formatTable, false},
		{"JSON", formatJSON, false},
		{" yml ", formatYAML, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPhaseCommand_JSON(t *testing.T) {
	seed(t)
	out, err := run(t, "phase", "-o", "json")
	if err != nil {
		t.Fatalf("phase: %v", err)
	}

	var got phaseReport
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v (%s)", err, out)
	}
	if got.ChapterID != "c1" || got.Phase != models.PhaseRecruitment {
		t.Errorf("report = %+v", got)
	}
	if len(got.Stages) != 4 {
		t.Errorf("stages = %d, want 4", len(got.Stages))
	}
}

func TestPhaseCommand_NoChapter(t *testing.T) {
	fb := seed(t)
	fb.SetCurrent("")
	if _, err := run(t, "phase"); err == nil || !strings.Contains(err.Error(), "no current chapter") {
		t.Fatalf("err = %v", err)
	}
}

func TestChaptersCommand_Table(t *testing.T) {
	seed(t)
	out, err := run(t, "chapters")
	if err != nil {
		t.Fatalf("chapters: %v", err)
	}
	for _, want := range []string{"ID", "c1기", "PHASE"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestGroupsCommand_Filters(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"all", nil, []string{"g1", "g2", "g3"}},
		{"studies", []string{"--kind", "study"}, []string{"g1", "g2"}},
		{"thursday", []string{"--day", "목"}, []string{"g2"}},
		{"closed", []string{"--status", "closed"}, []string{"g3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed(t)
			out, err := run(t, append([]string{"groups", "-o", "yaml"}, tt.args...)...)
			if err != nil {
				t.Fatalf("groups: %v", err)
			}
			var cards []struct {
				ID string `yaml:"id"`
			}
			if err := yaml.Unmarshal([]byte(out), &cards); err != nil {
				t.Fatalf("decode: %v (%s)", err, out)
			}
			var ids []string
			for _, c := range cards {
				ids = append(ids, c.ID)
			}
			if strings.Join(ids, ",") != strings.Join(tt.want, ",") {
				t.Errorf("ids = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestGroupsCommand_BadKind(t *testing.T) {
	seed(t)
	if _, err := run(t, "groups", "--kind", "team"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestEligibilityCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want eligibility.Result
	}{
		{"weekday conflict", []string{"--group", "g2", "--user", "u1"},
			eligibility.Result{CanApply: false, Reason: eligibility.ReasonWeekdayConflict}},
		{"observer bypasses rules", []string{"--group", "g2", "--user", "u1", "--type", "observer"},
			eligibility.Result{CanApply: true}},
		{"unknown group", []string{"--group", "g404", "--user", "u1"},
			eligibility.Result{CanApply: false, Reason: eligibility.ReasonNotFound}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed(t)
			out, err := run(t, append([]string{"eligibility", "-o", "json"}, tt.args...)...)
			if err != nil {
				t.Fatalf("eligibility: %v", err)
			}
			var got eligibility.Result
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("decode: %v (%s)", err, out)
			}
			if got != tt.want {
				t.Errorf("result = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEligibilityCommand_UserFromEnv(t *testing.T) {
	seed(t)
	t.Setenv("SOMOIM_USER_ID", "u1")
	out, err := run(t, "eligibility", "--group", "g2", "-o", "json")
	if err != nil {
		t.Fatalf("eligibility: %v", err)
	}
	if !strings.Contains(out, `"userId": "u1"`) {
		t.Errorf("output = %s", out)
	}
}

func TestEligibilityCommand_Validation(t *testing.T) {
	seed(t)
	if _, err := run(t, "eligibility", "--group", "g2"); err == nil || !strings.Contains(err.Error(), "SOMOIM_USER_ID") {
		t.Errorf("missing user: err = %v", err)
	}
	if _, err := run(t, "eligibility", "--group", "g2", "--user", "u1", "--type", "vip"); err == nil {
		t.Error("expected error for bad --type")
	}
}
