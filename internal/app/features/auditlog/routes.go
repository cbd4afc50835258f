// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/go-chi/chi/v5"
	"github.com/metacode22/study-somoim/internal/app/system/auth"
)

// Routes mounts the audit log viewer. Admins only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(auth.RoleAdmin))
	r.Get("/", h.ServeList)
	return r
}
