// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
	"github.com/metacode22/study-somoim/internal/app/system/auth"
)

// SiteName is shown in the header and page titles.
const SiteName = "스터디·소모임"

// NavItem is one link in the top navigation.
type NavItem struct {
	Label  string
	Href   string
	Active bool
}

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title", "/default-back"),
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	IsAdmin    bool
	Role       string
	UserID     string
	UserName   string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string
	Nav         []NavItem

	// CSRF protection
	CSRFToken string

	// One-shot notice from the previous request
	Flash *auth.Flash
}

// NewBaseVM creates a fully populated BaseVM for a page.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	vm := BaseVM{
		SiteName:    SiteName,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}
	if u, ok := auth.CurrentUser(r); ok {
		vm.IsLoggedIn = true
		vm.IsAdmin = u.IsAdmin()
		vm.Role = u.Role
		vm.UserID = u.ID
		vm.UserName = u.Name
	}
	if f, ok := auth.FlashFrom(r); ok {
		vm.Flash = &f
	}
	vm.Nav = navFor(vm)
	return vm
}

func navFor(vm BaseVM) []NavItem {
	if !vm.IsLoggedIn {
		return nil
	}
	items := []NavItem{
		{Label: "모집 중", Href: "/"},
		{Label: "한눈에 보기", Href: "/overview"},
		{Label: "신규 개설", Href: "/create"},
		{Label: "내 신청", Href: "/my-applications"},
		{Label: "활동 기록", Href: "/activity-log"},
	}
	if vm.IsAdmin {
		items = append(items, NavItem{Label: "관리", Href: "/admin"})
	}
	for i := range items {
		items[i].Active = isActive(items[i].Href, vm.CurrentPath)
	}
	return items
}

func isActive(href, path string) bool {
	if href == "/" {
		return path == "/"
	}
	return path == href || len(path) > len(href) && path[:len(href)] == href && path[len(href)] == '/'
}
