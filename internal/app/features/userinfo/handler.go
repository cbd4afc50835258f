// internal/app/features/userinfo/handler.go
package userinfo

import (
	"net/http"

	"github.com/metacode22/study-somoim/internal/app/system/auth"
	"github.com/metacode22/study-somoim/internal/app/system/jsonresp"
)

// Handler serves the signed-in user's identity to client scripts.
type Handler struct{}

// NewHandler creates a new userinfo handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Info is the data half of the /api/me envelope.
type Info struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	IsAdmin         bool   `json:"isAdmin"`
}

// ServeUserInfo reports whether the request carries a session and, if so,
// who it belongs to. Anonymous callers get isAuthenticated=false rather
// than a 401 so pages can check without error handling.
func (h *Handler) ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		jsonresp.OK(w, Info{})
		return
	}
	jsonresp.OK(w, Info{
		IsAuthenticated: true,
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Role:            user.Role,
		IsAdmin:         user.IsAdmin(),
	})
}
