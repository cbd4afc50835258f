package applications

import (
	"github.com/go-chi/chi/v5"
	"github.com/metacode22/study-somoim/internal/app/system/auth"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeList)
	r.Get("/{membershipID}/cancel", h.ServeCancel)
	r.Post("/{membershipID}/cancel", h.HandleCancel)
	return r
}
