// internal/app/store/teams/teamstore.go
package teamstore

import (
	"context"
	"sort"

	"github.com/metacode22/study-somoim/internal/app/system/querycache"
	"github.com/metacode22/study-somoim/internal/domain/models"
)

// API is the backend surface this store reads.
type API interface {
	Teams(ctx context.Context) ([]models.Team, error)
}

type Store struct {
	api   API
	cache *querycache.Cache
}

func New(api API, cache *querycache.Cache) *Store {
	return &Store{api: api, cache: cache}
}

func Key() querycache.Key { return querycache.K("teams") }

// List returns teams sorted by name.
func (s *Store) List(ctx context.Context) ([]models.Team, error) {
	return querycache.Fetch(ctx, s.cache, Key(), func(ctx context.Context) ([]models.Team, error) {
		teams, err := s.api.Teams(ctx)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
		return teams, nil
	})
}

// Find returns the team with id, or false.
func (s *Store) Find(ctx context.Context, id string) (models.Team, bool, error) {
	teams, err := s.List(ctx)
	if err != nil {
		return models.Team{}, false, err
	}
	for _, t := range teams {
		if t.ID == id {
			return t, true, nil
		}
	}
	return models.Team{}, false, nil
}
