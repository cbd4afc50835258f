// internal/app/features/api/groups.go
package api

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/metacode22/study-somoim/internal/app/system/groupcard"
	"github.com/metacode22/study-somoim/internal/app/system/jsonresp"
	"github.com/metacode22/study-somoim/internal/app/system/recruitment"
	"github.com/metacode22/study-somoim/internal/app/system/timeouts"
)

// ServeGroups returns the current chapter's recruiting groups as cards,
// filtered like the home page. ?kind=club or ?kind=study narrows by type.
func (h *Handler) ServeGroups(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "api groups")
	defer cancel()

	ch, err := h.Chapters.Current(ctx)
	if err != nil {
		h.fail(w, r, "load current chapter", err)
		return
	}
	if ch == nil {
		jsonresp.OK(w, []groupcard.Card{})
		return
	}
	groups, err := h.Groups.Recruiting(ctx, ch.ID)
	if err != nil {
		h.fail(w, r, "list recruiting groups", err)
		return
	}

	cards := recruitment.Apply(groupcard.FromAll(groups), recruitment.FromQuery(r.URL.Query()))
	switch strings.TrimSpace(query.Get(r, "kind")) {
	case "":
	case "club":
		cards, _ = groupcard.Split(cards)
	case "study":
		_, cards = groupcard.Split(cards)
	default:
		jsonresp.BadRequest(w, "kind는 club 또는 study여야 합니다.")
		return
	}
	if cards == nil {
		cards = []groupcard.Card{}
	}
	jsonresp.OK(w, cards)
}
