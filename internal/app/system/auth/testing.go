package auth

import (
	"net/http"

	"github.com/poketwo/forms/internal/domain/models"
)

// WithTestUser attaches a Viewer to the request context, bypassing the
// session middleware. For handler tests only.
func WithTestUser(r *http.Request, u models.User, m *models.Member) *http.Request {
	return withViewer(r, &Viewer{User: u, Member: m})
}
