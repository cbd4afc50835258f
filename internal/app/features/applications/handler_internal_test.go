package applications

import (
	"testing"
	"time"

	"github.com/metacode22/study-somoim/internal/app/store/queries/usermemberships"
	"github.com/metacode22/study-somoim/internal/app/system/schedule"
	"github.com/metacode22/study-somoim/internal/domain/models"
)

func TestGroupByDay(t *testing.T) {
	enroll := func(id, sched string) usermemberships.Enrollment {
		return usermemberships.Enrollment{
			Membership: models.Membership{ID: "m-" + id},
			Group:      models.ChapterGroup{ID: id, MeetingSchedule: sched},
		}
	}
	mine := []usermemberships.Enrollment{enroll("a", "수 19:00"), enroll("b", "월, 수"), enroll("c", "")}

	got := groupByDay(mine, models.ChapterPeriods{}, time.UTC)

	want := []struct {
		day schedule.Day
		ids []string
	}{
		{schedule.Mon, []string{"m-b"}},
		{schedule.Wed, []string{"m-a", "m-b"}},
		{schedule.Irregular, []string{"m-c"}},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d day groups, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Day != w.day || len(got[i].Items) != len(w.ids) {
			t.Errorf("[%d] = %s with %d items", i, got[i].Day, len(got[i].Items))
			continue
		}
		for j, id := range w.ids {
			if got[i].Items[j].ID != id {
				t.Errorf("[%d][%d] = %s, want %s", i, j, got[i].Items[j].ID, id)
			}
		}
	}
}
