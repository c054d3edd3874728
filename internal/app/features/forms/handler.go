// Package forms serves the form-filling page and the submission create
// endpoint. Field rendering and validation belong to the hosted form
// service; this side stores whatever the rendered form posted, keyed by
// field slug.
package forms

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	uierrors "github.com/poketwo/forms/internal/app/features/errors"
	"github.com/poketwo/forms/internal/app/store/members"
	"github.com/poketwo/forms/internal/app/store/submissions"
	"github.com/poketwo/forms/internal/app/system/auth"
	"github.com/poketwo/forms/internal/app/system/formium"
	"github.com/poketwo/forms/internal/app/system/mailer"
	"github.com/poketwo/forms/internal/app/system/timeouts"
	"github.com/poketwo/forms/internal/domain/models"
)

const suspensionAppealSlug = "suspension-appeal"

// Handler serves GET /a/{formID} and POST /api/forms/{formID}/submissions.
type Handler struct {
	Log         *zap.Logger
	Members     *members.Store
	Submissions *submissions.Store
	Forms       *formium.Client
	Mail        *mailer.Mailer
	ErrLog      *uierrors.ErrorLogger
}

func NewHandler(memberStore *members.Store, subStore *submissions.Store, formClient *formium.Client, mail *mailer.Mailer, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:         logger,
		Members:     memberStore,
		Submissions: subStore,
		Forms:       formClient,
		Mail:        mail,
		ErrLog:      errLog,
	}
}

// ServeForm handles GET /a/{formID}. A viewer who already submitted sees
// the success panel instead of the form.
func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")
	v, _ := auth.CurrentViewer(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	form, err := h.Forms.FormBySlug(ctx, formID)
	if err == formium.ErrFormNotFound {
		uierrors.RenderNotFound(w, r, "That form doesn't exist.")
		return
	}
	if err != nil {
		h.ErrLog.Page(w, r, "form lookup failed", err)
		return
	}

	if formID == suspensionAppealSlug && !h.viewerSuspended(ctx, v) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	previous, err := h.Submissions.HasSubmitted(ctx, form.Slug, v.User.ID)
	if err != nil {
		h.ErrLog.Page(w, r, "previous submission lookup failed", err)
		return
	}

	data := struct {
		Title      string
		IsLoggedIn bool
		UserTag    string
		Form       *formium.Form
		Submitted  bool
	}{
		Title:      form.Name,
		IsLoggedIn: true,
		UserTag:    v.User.Tag(),
		Form:       form,
		Submitted:  previous,
	}

	templates.Render(w, r, "form_page", data)
}

// ServeCreateSubmission handles POST /api/forms/{formID}/submissions.
// The body is the raw field data keyed by slug. Responds 204 on success.
func (h *Handler) ServeCreateSubmission(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")
	v, _ := auth.CurrentViewer(r)

	var data map[string]any
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	form, err := h.Forms.FormBySlug(ctx, formID)
	if err == formium.ErrFormNotFound {
		http.Error(w, "form not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.ErrLog.API(w, r, "form lookup failed", err)
		return
	}

	sub, err := h.Submissions.Create(ctx, models.Submission{
		FormID:  form.Slug,
		UserID:  v.User.ID,
		UserTag: v.User.Tag(),
		Email:   v.User.Email,
		Data:    data,
	})
	if err != nil {
		h.ErrLog.API(w, r, "submission insert failed", err)
		return
	}

	h.Log.Info("submission created",
		zap.String("form_id", form.Slug),
		zap.Int64("user_id", v.User.ID),
		zap.String("submission_id", sub.ID.Hex()))

	// Best effort: losing the receipt email must not fail the submission.
	if err := h.Mail.SendSubmissionReceived(ctx, sub.Email, sub.UserTag, form.Name); err != nil {
		h.Log.Warn("receipt email failed",
			zap.String("submission_id", sub.ID.Hex()), zap.Error(err))
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) viewerSuspended(ctx context.Context, v *auth.Viewer) bool {
	pm, err := h.Members.FetchPoketwoMember(ctx, v.User.ID)
	if err != nil {
		h.Log.Warn("poketwo member lookup failed",
			zap.Int64("user_id", v.User.ID), zap.Error(err))
		return false
	}
	return pm != nil && pm.Suspended
}
