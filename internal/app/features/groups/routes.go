// internal/app/features/groups/routes.go
package groups

import (
	"github.com/go-chi/chi/v5"
	"github.com/metacode22/study-somoim/internal/app/system/auth"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/{id}", h.ServeDetail)
		pr.Post("/{id}/apply", h.HandleApply)

		// Leader only; checked per request against the group's leader.
		pr.Get("/{id}/selection", h.ServeSelection)
		pr.Post("/{id}/selection/{membershipID}", h.HandleSelect)
		pr.Get("/{id}/registration", h.ServeRegistration)
		pr.Post("/{id}/registration", h.HandleRegistration)
	})

	return r
}
