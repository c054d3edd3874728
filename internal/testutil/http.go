package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"

	"github.com/poketwo/forms/internal/app/system/auth"
	"github.com/poketwo/forms/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// StaffUser returns a test Discord user snapshot.
func StaffUser(id int64) models.User {
	return models.User{
		ID:            id,
		Username:      "staff",
		Discriminator: "0001",
		Email:         "staff@example.com",
		Verified:      true,
	}
}

// MemberWithRoles returns a member record carrying the given roles.
func MemberWithRoles(id int64, roles ...int64) *models.Member {
	return &models.Member{ID: id, Roles: roles}
}

// NewAuthenticatedRequest creates an HTTP request with a signed-in viewer
// in context, bypassing the session middleware.
func NewAuthenticatedRequest(method, target string, user models.User, member *models.Member) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return auth.WithTestUser(req, user, member)
}
