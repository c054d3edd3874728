// Package gates provides handler-level authorization checks.
//
// Route middleware (auth.RequireSignedIn / RequireGuest) handles the
// authentication modes; gates run inside handlers where the decision needs
// the resolved member. A failed gate writes the response itself: API
// handlers get a plain 403, page handlers get a redirect to the dashboard
// so navigation never dead-ends on an error page.
package gates

import (
	"net/http"

	"github.com/poketwo/forms/internal/app/system/auth"
	"github.com/poketwo/forms/internal/app/system/authz"
	"github.com/poketwo/forms/internal/domain/models"
)

// Result carries the viewer back to the handler when the gate passes.
type Result struct {
	Viewer   *auth.Viewer
	Position models.Position
	OK       bool
}

// RequirePosition ensures the request's member holds at least the required
// position. No member record at all is forbidden.
func RequirePosition(w http.ResponseWriter, r *http.Request, az *authz.Authorizer, required models.Position) Result {
	v, ok := auth.CurrentViewer(r)
	if !ok {
		deny(w, r, http.StatusUnauthorized)
		return Result{OK: false}
	}
	pos := az.PositionFor(v.Member)
	if v.Member == nil || !pos.AtLeast(required) {
		deny(w, r, http.StatusForbidden)
		return Result{OK: false}
	}
	return Result{Viewer: v, Position: pos, OK: true}
}

// RequireFormReviewer ensures the request's member may review the given
// form, per the configured per-form role sets.
func RequireFormReviewer(w http.ResponseWriter, r *http.Request, az *authz.Authorizer, formID string) Result {
	v, ok := auth.CurrentViewer(r)
	if !ok {
		deny(w, r, http.StatusUnauthorized)
		return Result{OK: false}
	}
	if !az.CanReviewForm(v.Member, formID) {
		deny(w, r, http.StatusForbidden)
		return Result{OK: false}
	}
	return Result{Viewer: v, Position: az.PositionFor(v.Member), OK: true}
}

func deny(w http.ResponseWriter, r *http.Request, status int) {
	if isAPI(r) {
		switch status {
		case http.StatusUnauthorized:
			http.Error(w, "unauthorized", status)
		default:
			http.Error(w, "forbidden", status)
		}
		return
	}
	if status == http.StatusUnauthorized {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func isAPI(r *http.Request) bool {
	return len(r.URL.Path) >= 5 && r.URL.Path[:5] == "/api/"
}
