// internal/app/features/admin/routes.go
package admin

import (
	"github.com/go-chi/chi/v5"
	"github.com/metacode22/study-somoim/internal/app/system/auth"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(auth.RoleAdmin))

		pr.Get("/", h.ServeDashboard)

		pr.Get("/chapters", h.ServeChapters)
		pr.Get("/chapters/new", h.ServeNew)
		pr.Post("/chapters/new", h.HandleNew)
		pr.Get("/chapters/{id}/edit", h.ServeEdit)
		pr.Post("/chapters/{id}/edit", h.HandleEdit)
		pr.Get("/chapters/{id}/delete", h.ServeDelete)
		pr.Post("/chapters/{id}/delete", h.HandleDelete)

		pr.Get("/applications", h.ServeApplications)
		pr.Get("/registrations", h.ServeRegistrations)
	})

	return r
}
