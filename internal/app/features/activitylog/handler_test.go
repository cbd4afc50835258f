package activitylog

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	uierrors "github.com/metacode22/study-somoim/internal/app/features/errors"
	"github.com/metacode22/study-somoim/internal/app/store/activity"
	"github.com/metacode22/study-somoim/internal/testutil"
	"go.uber.org/zap"
)

type fakeLister struct {
	events   []activity.Event
	err      error
	gotUser  string
	gotLimit int64
}

func (f *fakeLister) ListByUser(ctx context.Context, userID string, limit int64) ([]activity.Event, error) {
	f.gotUser, f.gotLimit = userID, limit
	return f.events, f.err
}

func TestRowsFrom(t *testing.T) {
	seoul := time.FixedZone("KST", 9*3600)
	events := []activity.Event{
		{EventType: activity.EventJoin, ChapterGroupID: "g1", GroupName: "Go", Timestamp: time.Date(2025, 3, 9, 16, 0, 0, 0, time.UTC)},
		{EventType: "mystery", GroupName: "?"},
	}

	rows := rowsFrom(events, seoul)

	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0].Label != "신청" || rows[0].Date != "2025.03.10" || rows[0].GroupID != "g1" {
		t.Errorf("row[0] = %+v", rows[0])
	}
	if rows[1].Label != "활동" {
		t.Errorf("unknown type label = %q", rows[1].Label)
	}
}

func TestServeLog(t *testing.T) {
	lister := &fakeLister{}
	h := NewHandler(lister, time.UTC, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())

	rec := testutil.Serve(h.ServeLog, testutil.NewAuthenticatedRequest("GET", "/activity-log", testutil.UserWithID("u1", "김부원")))

	rec.AssertStatus(t, http.StatusOK)
	if lister.gotUser != "u1" || lister.gotLimit != pageLimit {
		t.Errorf("ListByUser(%q, %d)", lister.gotUser, lister.gotLimit)
	}
}

func TestServeLog_StoreError(t *testing.T) {
	h := NewHandler(&fakeLister{err: errors.New("mongo down")}, time.UTC, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())

	rec := testutil.Serve(h.ServeLog, testutil.NewAuthenticatedRequest("GET", "/activity-log", testutil.MemberUser()))

	rec.AssertStatus(t, http.StatusInternalServerError)
}

func TestServeLog_Anonymous(t *testing.T) {
	h := NewHandler(&fakeLister{}, time.UTC, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())

	rec := testutil.Serve(h.ServeLog, testutil.NewRequest("GET", "/activity-log"))

	rec.AssertStatus(t, http.StatusUnauthorized)
}
