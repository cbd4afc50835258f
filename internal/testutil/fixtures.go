package testutil

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/metacode22/study-somoim/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Day returns midnight UTC of the given date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ChapterAt returns a chapter whose periods place `now` in phase.
// The windows are two weeks of application, two weeks of recruitment and
// sixty days of activity with one-week gaps.
func ChapterAt(id string, phase models.ChapterPhase, now time.Time) models.Chapter {
	var appStart time.Time
	switch phase {
	case models.PhaseUpcoming:
		appStart = now.AddDate(0, 0, 7)
	case models.PhaseApplication:
		appStart = now.AddDate(0, 0, -3)
	case models.PhaseRecruitment:
		appStart = now.AddDate(0, 0, -24)
	case models.PhaseActive:
		appStart = now.AddDate(0, 0, -60)
	default:
		appStart = now.AddDate(0, -6, 0)
	}
	p := models.ChapterPeriods{
		ApplicationStart: appStart,
		ApplicationEnd:   appStart.AddDate(0, 0, 14),
		RecruitmentStart: appStart.AddDate(0, 0, 21),
		RecruitmentEnd:   appStart.AddDate(0, 0, 35),
		ActivityStart:    appStart.AddDate(0, 0, 42),
		ActivityEnd:      appStart.AddDate(0, 0, 102),
	}
	return models.Chapter{ID: id, Name: id + "기", Periods: p, CurrentPhase: phase}
}

// GroupFixture returns a populated chapter group.
func GroupFixture(id, chapterID, name string, typ models.GroupType, schedule, leaderID string) models.ChapterGroup {
	return models.ChapterGroup{
		ID:      id,
		Chapter: chapterID,
		Group: models.GroupRef{ID: "grp-" + id, Group: &models.Group{
			ID: "grp-" + id, Name: name, Type: typ, Schedule: schedule, IsActive: true,
		}},
		Leader:          models.UserRef{ID: leaderID, Name: "리더 " + leaderID},
		Type:            typ,
		MeetingSchedule: schedule,
		ApplyStatus:     "regular",
		Category:        "기타",
		ReviewStatus:    models.ReviewApproved,
		GroupName:       name,
	}
}

// MembershipFixture returns an active membership.
func MembershipFixture(id, groupID, userID string, role models.Role, pt models.ParticipationType) models.Membership {
	return models.Membership{
		ID:                id,
		ChapterGroup:      models.ChapterGroupRef{ID: groupID},
		User:              models.UserRef{ID: userID, Name: "사용자 " + userID},
		Role:              role,
		ParticipationType: pt,
		CreatedAt:         time.Now().UTC(),
	}
}
