// internal/app/features/userinfo/routes.go
package userinfo

import "github.com/go-chi/chi/v5"

// MountRoutes registers GET /me on the supplied API router. It sits outside
// the API's sign-in guard because the handler itself checks the session.
func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/me", h.ServeUserInfo)
}
