package authdiscord

import "github.com/go-chi/chi/v5"

// Routes returns the router for the OAuth endpoints. These run in mode
// NONE: no identity requirement either way.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/login", h.ServeLogin)
	r.Get("/callback", h.ServeCallback)
	r.Get("/logout", h.ServeLogout)
	return r
}
