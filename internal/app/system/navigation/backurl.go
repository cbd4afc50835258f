// Package navigation provides helpers for safe URL navigation and redirects.
package navigation

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// BackURLOptions configures the behavior of SafeBackURL.
type BackURLOptions struct {
	// AllowedPrefix is the required URL prefix (e.g., "/admin/chapters").
	// If empty, any safe local URL is allowed.
	AllowedPrefix string

	// ExcludedSubpaths are subpath patterns to reject (e.g., "/edit", "/delete").
	// These prevent redirect loops back to action pages.
	ExcludedSubpaths []string

	// Fallback is the default URL if no valid return URL is found.
	Fallback string
}

// SafeBackURL extracts and validates a return URL from the request.
//
// It checks the "return" query parameter, then the posted form value,
// rejects anything that is not a local path, and applies the prefix and
// subpath rules from opts.
//
//	url := navigation.SafeBackURL(r, navigation.AdminChaptersBackURL)
func SafeBackURL(r *http.Request, opts BackURLOptions) string {
	ret := urlutil.SafeReturn(query.Get(r, "return"), "", "")
	if ret == "" {
		ret = urlutil.SafeReturn(strings.TrimSpace(r.FormValue("return")), "", "")
	}
	if ret == "" {
		return opts.Fallback
	}

	if opts.AllowedPrefix != "" && !strings.HasPrefix(ret, opts.AllowedPrefix) {
		return opts.Fallback
	}
	for _, excluded := range opts.ExcludedSubpaths {
		if strings.Contains(ret, excluded) {
			return opts.Fallback
		}
	}
	return ret
}

var (
	// AdminChaptersBackURL is used after a chapter is edited or deleted.
	AdminChaptersBackURL = BackURLOptions{
		AllowedPrefix:    "/admin",
		ExcludedSubpaths: []string{"/edit", "/delete", "/new"},
		Fallback:         "/admin/chapters",
	}

	// MyApplicationsBackURL is used after an application is cancelled. The
	// cancel page can be reached from a group page as well as the list.
	MyApplicationsBackURL = BackURLOptions{
		ExcludedSubpaths: []string{"/cancel", "/apply"},
		Fallback:         "/my-applications",
	}
)
