package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/metacode22/study-somoim/internal/domain/models"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Chapters                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// CurrentChapter returns the chapter in progress. A missing or null chapter
// yields an error matching ErrNotFound.
func (c *Client) CurrentChapter(ctx context.Context) (*models.Chapter, error) {
	var out itemEnvelope[models.Chapter]
	err := c.do(ctx, call{method: http.MethodGet, route: "/chapters/current", path: "/chapters/current"}, &out)
	if errors.Is(err, errEmptyBody) {
		return nil, &APIError{Status: http.StatusNotFound, Message: "no current chapter", Path: "/chapters/current"}
	}
	if err != nil {
		return nil, err
	}
	return &out.item, nil
}

// ListChapters returns every chapter.
func (c *Client) ListChapters(ctx context.Context) ([]models.Chapter, error) {
	var out listEnvelope[models.Chapter]
	err := c.do(ctx, call{method: http.MethodGet, route: "/chapters", path: "/chapters"}, &out)
	if errors.Is(err, errEmptyBody) {
		return nil, nil
	}
	return out.items, err
}

// GetChapter returns one chapter.
func (c *Client) GetChapter(ctx context.Context, id string) (*models.Chapter, error) {
	var out itemEnvelope[models.Chapter]
	err := c.do(ctx, call{method: http.MethodGet, route: "/chapters/{id}", path: "/chapters/" + seg(id)}, &out)
	if errors.Is(err, errEmptyBody) {
		return nil, &APIError{Status: http.StatusNotFound, Path: "/chapters/" + id}
	}
	if err != nil {
		return nil, err
	}
	return &out.item, nil
}

// CreateChapter creates a chapter on behalf of userID.
func (c *Client) CreateChapter(ctx context.Context, userID string, in models.ChapterInput) (*models.Chapter, error) {
	var out itemEnvelope[models.Chapter]
	err := c.do(ctx, call{method: http.MethodPost, route: "/chapters", path: "/chapters", userID: userID, body: in}, &out)
	return itemOrNil(&out, err)
}

// UpdateChapter patches a chapter.
func (c *Client) UpdateChapter(ctx context.Context, userID, id string, in models.ChapterInput) (*models.Chapter, error) {
	var out itemEnvelope[models.Chapter]
	err := c.do(ctx, call{method: http.MethodPatch, route: "/chapters/{id}", path: "/chapters/" + seg(id), userID: userID, body: in}, &out)
	return itemOrNil(&out, err)
}

// DeleteChapter removes a chapter.
func (c *Client) DeleteChapter(ctx context.Context, userID, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, route: "/chapters/{id}", path: "/chapters/" + seg(id), userID: userID}, nil)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Chapter groups                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// RecruitingGroups lists the groups recruiting in chapterID.
func (c *Client) RecruitingGroups(ctx context.Context, chapterID string) ([]models.ChapterGroup, error) {
	var out listEnvelope[models.ChapterGroup]
	err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/chapters/{c}/groups/recruiting",
		path:   "/chapters/" + seg(chapterID) + "/groups/recruiting",
	}, &out)
	if errors.Is(err, errEmptyBody) {
		return nil, nil
	}
	return out.items, err
}

// ChapterGroup returns one chapter group.
func (c *Client) ChapterGroup(ctx context.Context, chapterID, id string) (*models.ChapterGroup, error) {
	path := "/chapters/" + seg(chapterID) + "/groups/" + seg(id)
	var out itemEnvelope[models.ChapterGroup]
	err := c.do(ctx, call{method: http.MethodGet, route: "/chapters/{c}/groups/{id}", path: path}, &out)
	if errors.Is(err, errEmptyBody) {
		return nil, &APIError{Status: http.StatusNotFound, Path: path}
	}
	if err != nil {
		return nil, err
	}
	return &out.item, nil
}

// CreateApplication opens a new group in chapterID.
func (c *Client) CreateApplication(ctx context.Context, userID, chapterID string, in models.ApplicationInput) (*models.ChapterGroup, error) {
	var out itemEnvelope[models.ChapterGroup]
	err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/chapters/{c}/applications",
		path:   "/chapters/" + seg(chapterID) + "/applications",
		userID: userID,
		body:   in,
	}, &out)
	return itemOrNil(&out, err)
}

// Applications lists chapter applications for admin review.
func (c *Client) Applications(ctx context.Context, chapterID string, q models.ApplicationQuery) (models.Page[models.ChapterGroup], error) {
	vals := pageQuery(q.Page, q.Limit)
	if q.Type != "" {
		vals.Set("type", string(q.Type))
	}
	if q.ReviewStatus != "" {
		vals.Set("reviewStatus", string(q.ReviewStatus))
	}
	if q.Search != "" {
		vals.Set("search", q.Search)
	}
	var out pageEnvelope[models.ChapterGroup]
	err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/chapters/{c}/applications",
		path:   "/chapters/" + seg(chapterID) + "/applications",
		query:  vals,
	}, &out)
	if errors.Is(err, errEmptyBody) {
		return models.Page[models.ChapterGroup]{}, nil
	}
	return out.page, err
}

// Registrations lists the groups that finalized registration in chapterID.
func (c *Client) Registrations(ctx context.Context, chapterID string) ([]models.ChapterGroup, error) {
	var out listEnvelope[models.ChapterGroup]
	err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/chapters/{c}/registrations",
		path:   "/chapters/" + seg(chapterID) + "/registrations",
	}, &out)
	if errors.Is(err, errEmptyBody) {
		return nil, nil
	}
	return out.items, err
}

// FinalizeRegistration records the leader's final registration.
func (c *Client) FinalizeRegistration(ctx context.Context, userID, chapterID, groupID string, in models.RegistrationInput) (*models.ChapterGroup, error) {
	var out itemEnvelope[models.ChapterGroup]
	err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/chapters/{c}/groups/{g}/registration",
		path:   "/chapters/" + seg(chapterID) + "/groups/" + seg(groupID) + "/registration",
		userID: userID,
		body:   in,
	}, &out)
	return itemOrNil(&out, err)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Memberships                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

func membersPath(chapterID, groupID string) string {
	return "/chapters/" + seg(chapterID) + "/groups/" + seg(groupID) + "/members"
}

// Memberships lists one page of a group's memberships.
func (c *Client) Memberships(ctx context.Context, chapterID, groupID string, q models.MembershipQuery) (models.Page[models.Membership], error) {
	vals := pageQuery(q.Page, q.Limit)
	if q.ActiveOnly {
		vals.Set("activeOnly", strconv.FormatBool(true))
	}
	if q.Role != "" {
		vals.Set("role", string(q.Role))
	}
	if q.ParticipationType != "" {
		vals.Set("participationType", string(q.ParticipationType))
	}
	var out pageEnvelope[models.Membership]
	err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/chapters/{c}/groups/{g}/members",
		path:   membersPath(chapterID, groupID),
		query:  vals,
	}, &out)
	if errors.Is(err, errEmptyBody) {
		return models.Page[models.Membership]{}, nil
	}
	return out.page, err
}

// Apply creates a membership for in.UserID.
func (c *Client) Apply(ctx context.Context, chapterID, groupID string, in models.ApplyInput) (*models.Membership, error) {
	var out itemEnvelope[models.Membership]
	err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/chapters/{c}/groups/{g}/members",
		path:   membersPath(chapterID, groupID),
		userID: in.UserID,
		body:   in,
	}, &out)
	return itemOrNil(&out, err)
}

// SelectMember sets a member's role. The leader selects with RoleRegular and
// unselects with RoleObserver.
func (c *Client) SelectMember(ctx context.Context, userID, chapterID, groupID, membershipID string, role models.Role) (*models.Membership, error) {
	var out itemEnvelope[models.Membership]
	err := c.do(ctx, call{
		method: http.MethodPatch,
		route:  "/chapters/{c}/groups/{g}/members/{m}",
		path:   membersPath(chapterID, groupID) + "/" + seg(membershipID),
		userID: userID,
		body:   models.SelectInput{Role: role},
	}, &out)
	return itemOrNil(&out, err)
}

// CancelMembership cancels a membership.
func (c *Client) CancelMembership(ctx context.Context, userID, chapterID, groupID, membershipID string) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		route:  "/chapters/{c}/groups/{g}/members/{m}",
		path:   membersPath(chapterID, groupID) + "/" + seg(membershipID),
		userID: userID,
	}, nil)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Lookup                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// Teams lists the teams a new group can belong to.
func (c *Client) Teams(ctx context.Context) ([]models.Team, error) {
	var out listEnvelope[models.Team]
	err := c.do(ctx, call{method: http.MethodGet, route: "/lookup/teams", path: "/lookup/teams"}, &out)
	if errors.Is(err, errEmptyBody) {
		return nil, nil
	}
	return out.items, err
}

// Ping reports whether the backend answers at all. Any HTTP response below
// 500 counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.CurrentChapter(ctx)
	if err == nil || errors.Is(err, ErrNotFound) {
		return nil
	}
	if s := StatusOf(err); s > 0 && s < http.StatusInternalServerError {
		return nil
	}
	return err
}

func itemOrNil[T any](out *itemEnvelope[T], err error) (*T, error) {
	if errors.Is(err, errEmptyBody) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out.item, nil
}

// pageEnvelope accepts {"data": [...], "meta": {...}} or a bare array.
type pageEnvelope[T any] struct {
	page models.Page[T]
}

func (p *pageEnvelope[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var list listEnvelope[T]
	if err := list.UnmarshalJSON(b); err != nil {
		return err
	}
	p.page.Data = list.items
	if len(b) > 0 && b[0] == '{' {
		var env struct {
			Meta models.PageMeta `json:"meta"`
		}
		if err := json.Unmarshal(b, &env); err != nil {
			return err
		}
		p.page.Meta = env.Meta
	}
	if p.page.Meta.Total == 0 && p.page.Meta.Limit == 0 {
		p.page.Meta = models.PageMeta{Total: len(list.items), Page: 1, Limit: len(list.items), TotalPages: 1}
	}
	return nil
}
