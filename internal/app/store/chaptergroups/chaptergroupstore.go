// internal/app/store/chaptergroups/chaptergroupstore.go
package chaptergroupstore

import (
	"context"

	"github.com/metacode22/study-somoim/internal/app/system/querycache"
	"github.com/metacode22/study-somoim/internal/domain/models"
)

// API is the backend surface this store reads and writes.
type API interface {
	RecruitingGroups(ctx context.Context, chapterID string) ([]models.ChapterGroup, error)
	ChapterGroup(ctx context.Context, chapterID, id string) (*models.ChapterGroup, error)
	Applications(ctx context.Context, chapterID string, q models.ApplicationQuery) (models.Page[models.ChapterGroup], error)
	Registrations(ctx context.Context, chapterID string) ([]models.ChapterGroup, error)
	CreateApplication(ctx context.Context, userID, chapterID string, in models.ApplicationInput) (*models.ChapterGroup, error)
}

type Store struct {
	api   API
	cache *querycache.Cache
}

func New(api API, cache *querycache.Cache) *Store {
	return &Store{api: api, cache: cache}
}

// KeyGroups prefixes every chapter-group read.
func KeyGroups() querycache.Key { return querycache.K("groups") }

func KeyRecruiting(chapterID string) querycache.Key {
	return querycache.K("groups", "recruiting", chapterID)
}

func KeyGroup(chapterID, id string) querycache.Key {
	return querycache.K("groups", id, chapterID)
}

func KeyApplications(chapterID string, q models.ApplicationQuery) querycache.Key {
	return querycache.K("chapters", chapterID, "applications", q.Page, q.Limit, string(q.Type), string(q.ReviewStatus), q.Search)
}

func KeyRegistrations(chapterID string) querycache.Key {
	return querycache.K("chapters", chapterID, "registrations")
}

// Recruiting lists the groups recruiting in chapterID.
func (s *Store) Recruiting(ctx context.Context, chapterID string) ([]models.ChapterGroup, error) {
	return querycache.Fetch(ctx, s.cache, KeyRecruiting(chapterID), func(ctx context.Context) ([]models.ChapterGroup, error) {
		return s.api.RecruitingGroups(ctx, chapterID)
	})
}

// Get returns one chapter group.
func (s *Store) Get(ctx context.Context, chapterID, id string) (*models.ChapterGroup, error) {
	return querycache.Fetch(ctx, s.cache, KeyGroup(chapterID, id), func(ctx context.Context) (*models.ChapterGroup, error) {
		return s.api.ChapterGroup(ctx, chapterID, id)
	})
}

// Applications lists chapter applications for admin review.
func (s *Store) Applications(ctx context.Context, chapterID string, q models.ApplicationQuery) (models.Page[models.ChapterGroup], error) {
	return querycache.Fetch(ctx, s.cache, KeyApplications(chapterID, q), func(ctx context.Context) (models.Page[models.ChapterGroup], error) {
		return s.api.Applications(ctx, chapterID, q)
	})
}

// Registrations lists the groups that finalized registration.
func (s *Store) Registrations(ctx context.Context, chapterID string) ([]models.ChapterGroup, error) {
	return querycache.Fetch(ctx, s.cache, KeyRegistrations(chapterID), func(ctx context.Context) ([]models.ChapterGroup, error) {
		return s.api.Registrations(ctx, chapterID)
	})
}

// CreateApplication opens a new group in chapterID.
func (s *Store) CreateApplication(ctx context.Context, userID, chapterID string, in models.ApplicationInput) (*models.ChapterGroup, error) {
	cg, err := s.api.CreateApplication(ctx, userID, chapterID, in)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateAll(
		querycache.K("chapters", chapterID),
		querycache.K("applications"),
	)
	return cg, nil
}
