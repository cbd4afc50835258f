// Package usermemberships aggregates one user's active memberships across the
// groups recruiting in a chapter. The backend has no per-user listing, so the
// aggregation walks every recruiting group's member list.
package usermemberships

import (
	"context"
	"sync"

	"github.com/metacode22/study-somoim/internal/domain/models"
	"golang.org/x/sync/errgroup"
)

// PageSize is the member page size requested from the backend.
const PageSize = 100

// maxParallel bounds concurrent member listings.
const maxParallel = 8

// Source is the subset of the backend API the aggregation reads.
type Source interface {
	RecruitingGroups(ctx context.Context, chapterID string) ([]models.ChapterGroup, error)
	Memberships(ctx context.Context, chapterID, groupID string, q models.MembershipQuery) (models.Page[models.Membership], error)
}

// Enrollment is one active membership together with its chapter group.
type Enrollment struct {
	Membership models.Membership
	Group      models.ChapterGroup
}

// Filter limits which groups are scanned. A nil Filter scans all of them.
type Filter func(models.ChapterGroup) bool

// ExcludeGroup skips the chapter group with the given id.
func ExcludeGroup(id string) Filter {
	return func(cg models.ChapterGroup) bool { return cg.ID != id }
}

// Collect returns userID's active memberships in chapterID's recruiting
// groups. The first failing listing cancels the rest and its error is
// returned. Result order is unspecified.
func Collect(ctx context.Context, src Source, chapterID, userID string, keep Filter) ([]Enrollment, error) {
	groups, err := src.RecruitingGroups(ctx, chapterID)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)

	var (
		mu  sync.Mutex
		out []Enrollment
	)
	for _, cg := range groups {
		if keep != nil && !keep(cg) {
			continue
		}
		g.Go(func() error {
			members, err := allActive(gctx, src, chapterID, cg.ID)
			if err != nil {
				return err
			}
			for _, m := range members {
				if m.User.ID != userID || !m.Active() {
					continue
				}
				mu.Lock()
				out = append(out, Enrollment{Membership: m, Group: cg})
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// allActive pages through a group's active memberships.
func allActive(ctx context.Context, src Source, chapterID, groupID string) ([]models.Membership, error) {
	var all []models.Membership
	for page := 1; ; page++ {
		res, err := src.Memberships(ctx, chapterID, groupID, models.MembershipQuery{
			ActiveOnly: true,
			Page:       page,
			Limit:      PageSize,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, res.Data...)
		if !res.Meta.HasNextPage || len(res.Data) == 0 {
			return all, nil
		}
	}
}
