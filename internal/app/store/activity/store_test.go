package activity_test

import (
	"testing"
	"time"

	"github.com/metacode22/study-somoim/internal/app/store/activity"
	"github.com/metacode22/study-somoim/internal/testutil"
)

func TestStore_CreateAndListByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := activity.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC().Add(-time.Hour)
	events := []activity.Event{
		{UserID: "u1", EventType: activity.EventJoin, ChapterGroupID: "g1", GroupName: "러닝", Timestamp: base},
		{UserID: "u1", EventType: activity.EventLeave, ChapterGroupID: "g1", GroupName: "러닝", Timestamp: base.Add(time.Minute)},
		{UserID: "u2", EventType: activity.EventJoin, ChapterGroupID: "g1", GroupName: "러닝", Timestamp: base.Add(2 * time.Minute)},
	}
	for _, e := range events {
		if err := store.Create(ctx, e); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	got, err := store.ListByUser(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].EventType != activity.EventLeave {
		t.Errorf("newest first: got %q", got[0].EventType)
	}
	if got[0].ID.IsZero() {
		t.Error("expected generated ID")
	}

	byGroup, err := store.ListByGroup(ctx, "g1", 10)
	if err != nil {
		t.Fatalf("ListByGroup failed: %v", err)
	}
	if len(byGroup) != 3 || byGroup[0].UserID != "u2" {
		t.Errorf("ListByGroup: got %+v, want 3 newest first", byGroup)
	}

}

func TestStore_ListByUser_Limit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := activity.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 5; i++ {
		_ = store.Create(ctx, activity.Event{UserID: "u1", EventType: activity.EventJoin})
	}
	got, err := store.ListByUser(ctx, "u1", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("got %d, want 3", len(got))
	}
}

func TestStore_EnsureIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := activity.New(db).EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}
}

func TestLabel(t *testing.T) {
	tests := map[string]string{
		activity.EventJoin:     "신청",
		activity.EventLeave:    "취소",
		activity.EventSelect:   "선발",
		activity.EventFinalize: "최종 등록",
		activity.EventCreate:   "개설",
		"attendance":           "활동",
	}
	for in, want := range tests {
		if got := activity.Label(in); got != want {
			t.Errorf("Label(%q) = %q, want %q", in, got, want)
		}
	}
}
