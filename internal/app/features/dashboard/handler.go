package dashboard

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"

	"github.com/poketwo/forms/internal/app/features/errors"
	"github.com/poketwo/forms/internal/app/store/members"
	"github.com/poketwo/forms/internal/app/system/auth"
	"github.com/poketwo/forms/internal/app/system/authz"
	"github.com/poketwo/forms/internal/app/system/formium"
	"github.com/poketwo/forms/internal/app/system/timeouts"
)

// suspensionAppealSlug is the one form with a visibility business rule:
// it is offered only to members the bot currently has suspended.
const suspensionAppealSlug = "suspension-appeal"

// Handler serves the authenticated dashboard: the list of forms the viewer
// may fill in, plus review links for forms their roles permit.
type Handler struct {
	Log     *zap.Logger
	Members *members.Store
	Forms   *formium.Client
	Authz   *authz.Authorizer
	ErrLog  *errors.ErrorLogger

	// Available is the ordered list of form slugs offered to members.
	Available []string
}

func NewHandler(memberStore *members.Store, formClient *formium.Client, az *authz.Authorizer, available []string, errLog *errors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:       logger,
		Members:   memberStore,
		Forms:     formClient,
		Authz:     az,
		ErrLog:    errLog,
		Available: available,
	}
}

type formCard struct {
	Slug string
	Name string
}

// ServeDashboard handles GET /dashboard.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	v, _ := auth.CurrentViewer(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var cards []formCard
	for _, slug := range h.Available {
		if slug == suspensionAppealSlug && !h.viewerSuspended(ctx, v) {
			continue
		}
		form, err := h.Forms.FormBySlug(ctx, slug)
		if err != nil {
			// A broken form definition hides that card rather than
			// breaking the whole dashboard.
			h.Log.Warn("form lookup failed", zap.String("form_id", slug), zap.Error(err))
			continue
		}
		cards = append(cards, formCard{Slug: form.Slug, Name: form.Name})
	}

	data := struct {
		Title      string
		IsLoggedIn bool
		UserTag    string
		Forms      []formCard
		Reviewable []string
	}{
		Title:      "Available Forms",
		IsLoggedIn: true,
		UserTag:    v.User.Tag(),
		Forms:      cards,
		Reviewable: h.Authz.ReviewableForms(v.Member),
	}

	templates.Render(w, r, "dashboard", data)
}

// viewerSuspended checks the bot-side member record for the suspension
// flag. Lookup failures hide the appeal rather than erroring the page.
func (h *Handler) viewerSuspended(ctx context.Context, v *auth.Viewer) bool {
	pm, err := h.Members.FetchPoketwoMember(ctx, v.User.ID)
	if err != nil {
		h.Log.Warn("poketwo member lookup failed",
			zap.Int64("user_id", v.User.ID), zap.Error(err))
		return false
	}
	return pm != nil && pm.Suspended
}
