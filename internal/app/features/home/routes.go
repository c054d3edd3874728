package home

import (
	"github.com/go-chi/chi/v5"

	"github.com/poketwo/forms/internal/app/system/auth"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireGuest)
		pr.Get("/", h.ServeRoot)
	})
	return r
}
