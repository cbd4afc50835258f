// internal/app/features/api/routes.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/metacode22/study-somoim/internal/app/system/auth"
	"github.com/metacode22/study-somoim/internal/app/system/jsonresp"
)

// requireUser answers anonymous requests with a JSON 401 instead of the
// login redirect the HTML routes use.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.CurrentUser(r); !ok {
			jsonresp.Fail(w, http.StatusUnauthorized, jsonresp.CodeUnauthorized, "로그인이 필요합니다.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Routes returns the API router. Every route it registers needs a session;
// callers may add public routes to the returned router.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(requireUser)

		pr.Get("/groups", h.ServeGroups)
		pr.Post("/groups/{id}/eligibility", h.HandleEligibility)
		pr.Get("/chapters/current/phase", h.ServePhase)
	})

	return r
}
