// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/metacode22/study-somoim/internal/domain/models"
)

// PageSize is the default number of rows requested from the backend for
// paged lists.
const PageSize = 20

// ParsePage extracts the 1-based "page" query parameter.
// Returns 1 if not present or invalid.
func ParsePage(r *http.Request) int {
	s := query.Get(r, "page")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Nav holds the pager state for a page-numbered list.
type Nav struct {
	Page       int
	TotalPages int
	Total      int
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
	Start      int // 1-based index of the first row shown (0 if no results)
	End        int // 1-based index of the last row shown (0 if no results)
}

// FromMeta computes pager state from the backend's page metadata and the
// number of rows actually shown.
func FromMeta(meta models.PageMeta, shown int) Nav {
	page := meta.Page
	if page < 1 {
		page = 1
	}
	limit := meta.Limit
	if limit < 1 {
		limit = PageSize
	}
	n := Nav{
		Page:       page,
		TotalPages: meta.TotalPages,
		Total:      meta.Total,
		HasPrev:    page > 1,
		HasNext:    meta.HasNextPage || page < meta.TotalPages,
		PrevPage:   page - 1,
		NextPage:   page + 1,
	}
	if n.PrevPage < 1 {
		n.PrevPage = 1
	}
	if shown > 0 {
		n.Start = (page-1)*limit + 1
		n.End = n.Start + shown - 1
	}
	return n
}
