package viewdata

import (
	"net/http/httptest"
	"testing"

	"github.com/metacode22/study-somoim/internal/app/system/auth"
)

func TestNewBaseVM_Anonymous(t *testing.T) {
	r := httptest.NewRequest("GET", "/login", nil)
	vm := NewBaseVM(r, "로그인", "/")
	if vm.IsLoggedIn || vm.Nav != nil {
		t.Errorf("anonymous vm = %+v", vm)
	}
	if vm.SiteName != SiteName || vm.Title != "로그인" {
		t.Errorf("vm = %+v", vm)
	}
}

func TestNewBaseVM_AdminNav(t *testing.T) {
	r := httptest.NewRequest("GET", "/admin/chapters", nil)
	r = auth.WithTestUser(r, &auth.SessionUser{ID: "u1", Name: "관리자", Role: auth.RoleAdmin})
	vm := NewBaseVM(r, "기수 관리", "/admin")

	if !vm.IsLoggedIn || !vm.IsAdmin || vm.UserID != "u1" {
		t.Fatalf("vm = %+v", vm)
	}
	var active []string
	for _, n := range vm.Nav {
		if n.Active {
			active = append(active, n.Href)
		}
	}
	if len(active) != 1 || active[0] != "/admin" {
		t.Errorf("active nav = %v, want [/admin]", active)
	}
}

func TestIsActive(t *testing.T) {
	tests := []struct {
		href, path string
		want       bool
	}{
		{"/", "/", true},
		{"/", "/overview", false},
		{"/admin", "/admin", true},
		{"/admin", "/admin/chapters", true},
		{"/admin", "/administrator", false},
	}
	for _, tt := range tests {
		if got := isActive(tt.href, tt.path); got != tt.want {
			t.Errorf("isActive(%q, %q) = %v", tt.href, tt.path, got)
		}
	}
}
