// internal/app/features/forms/routes.go
package forms

import (
	"github.com/go-chi/chi/v5"

	submissionsfeature "github.com/poketwo/forms/internal/app/features/submissions"
	"github.com/poketwo/forms/internal/app/system/auth"
)

// Routes returns the subrouter for everything under /a: the public form
// page plus the reviewer submission pages. Every page requires a signed-in
// viewer; the reviewer pages add their own per-form role gate.
func Routes(h *Handler, sub *submissionsfeature.Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/{formID}", h.ServeForm)
	r.Get("/{formID}/submissions", sub.ServeList)
	r.Get("/{formID}/submissions/{submissionID}", sub.ServeView)

	return r
}
