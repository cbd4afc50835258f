// internal/app/store/chapters/chapterstore.go
package chapterstore

import (
	"context"

	"github.com/metacode22/study-somoim/internal/app/system/querycache"
	"github.com/metacode22/study-somoim/internal/domain/models"
)

// API is the backend surface this store reads and writes.
type API interface {
	CurrentChapter(ctx context.Context) (*models.Chapter, error)
	ListChapters(ctx context.Context) ([]models.Chapter, error)
	GetChapter(ctx context.Context, id string) (*models.Chapter, error)
	CreateChapter(ctx context.Context, userID string, in models.ChapterInput) (*models.Chapter, error)
	UpdateChapter(ctx context.Context, userID, id string, in models.ChapterInput) (*models.Chapter, error)
	DeleteChapter(ctx context.Context, userID, id string) error
}

type Store struct {
	api   API
	cache *querycache.Cache
}

func New(api API, cache *querycache.Cache) *Store {
	return &Store{api: api, cache: cache}
}

// Cache keys.
func KeyAll() querycache.Key       { return querycache.K("chapters") }
func KeyCurrent() querycache.Key   { return querycache.K("chapters", "current") }
func Key(id string) querycache.Key { return querycache.K("chapters", id) }

// Current returns the chapter in progress.
func (s *Store) Current(ctx context.Context) (*models.Chapter, error) {
	return querycache.Fetch(ctx, s.cache, KeyCurrent(), s.api.CurrentChapter)
}

// List returns every chapter.
func (s *Store) List(ctx context.Context) ([]models.Chapter, error) {
	return querycache.Fetch(ctx, s.cache, KeyAll(), s.api.ListChapters)
}

// Get returns one chapter.
func (s *Store) Get(ctx context.Context, id string) (*models.Chapter, error) {
	return querycache.Fetch(ctx, s.cache, Key(id), func(ctx context.Context) (*models.Chapter, error) {
		return s.api.GetChapter(ctx, id)
	})
}

// Create adds a chapter and drops every cached chapter read.
func (s *Store) Create(ctx context.Context, userID string, in models.ChapterInput) (*models.Chapter, error) {
	ch, err := s.api.CreateChapter(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(KeyAll())
	return ch, nil
}

// Update patches a chapter.
func (s *Store) Update(ctx context.Context, userID, id string, in models.ChapterInput) (*models.Chapter, error) {
	ch, err := s.api.UpdateChapter(ctx, userID, id, in)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(KeyAll())
	return ch, nil
}

// Delete removes a chapter.
func (s *Store) Delete(ctx context.Context, userID, id string) error {
	if err := s.api.DeleteChapter(ctx, userID, id); err != nil {
		return err
	}
	s.cache.Invalidate(KeyAll())
	return nil
}
