// Package submissions serves the reviewer surfaces: the per-form
// submission browser pages and the status-update API. Access to every
// endpoint here is governed by the per-form permitted-role sets, not the
// coarse position ladder, so different staff teams can review different
// form types.
package submissions

import (
	"context"
	"bytes"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	uierrors "github.com/poketwo/forms/internal/app/features/errors"
	substore "github.com/poketwo/forms/internal/app/store/submissions"
	"github.com/poketwo/forms/internal/app/system/authz"
	"github.com/poketwo/forms/internal/app/system/formium"
	"github.com/poketwo/forms/internal/app/system/gates"
	"github.com/poketwo/forms/internal/app/system/mailer"
	"github.com/poketwo/forms/internal/app/system/timeouts"
	"github.com/poketwo/forms/internal/domain/models"
)

// noCommentPlaceholder is what the status email carries when the reviewer
// left no comment.
const noCommentPlaceholder = "No comment provided."

// Handler serves the reviewer pages and the PATCH endpoint.
type Handler struct {
	Log         *zap.Logger
	Submissions *substore.Store
	Forms       *formium.Client
	Authz       *authz.Authorizer
	Mail        *mailer.Mailer
	ErrLog      *uierrors.ErrorLogger

	sanitize *bluemonday.Policy
}

func NewHandler(subStore *substore.Store, formClient *formium.Client, az *authz.Authorizer, mail *mailer.Mailer, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:         logger,
		Submissions: subStore,
		Forms:       formClient,
		Authz:       az,
		Mail:        mail,
		ErrLog:      errLog,
		sanitize:    bluemonday.StrictPolicy(),
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /a/{formID}/submissions                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")

	res := gates.RequireFormReviewer(w, r, h.Authz, formID)
	if !res.OK {
		return
	}

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

	opts := listOptionsFromQuery(r)
	subs, err := h.Submissions.List(ctx, form.Slug, opts)
	if err != nil {
		h.ErrLog.Page(w, r, "submission list failed", err)
		return
	}

	data := listViewData(res, form, subs, opts, nil)
	templates.Render(w, r, "submissions_list", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /a/{formID}/submissions/{submissionID}                                   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")

	res := gates.RequireFormReviewer(w, r, h.Authz, formID)
	if !res.OK {
		return
	}

	subID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "submissionID"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "That submission doesn't exist.")
		return
	}

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

	sub, err := h.Submissions.GetByID(ctx, subID)
	if err == substore.ErrNotFound || (err == nil && sub.FormID != form.Slug) {
		uierrors.RenderNotFound(w, r, "That submission doesn't exist.")
		return
	}
	if err != nil {
		h.ErrLog.Page(w, r, "submission fetch failed", err)
		return
	}

	opts := listOptionsFromQuery(r)
	subs, err := h.Submissions.List(ctx, form.Slug, opts)
	if err != nil {
		h.ErrLog.Page(w, r, "submission list failed", err)
		return
	}

	data := listViewData(res, form, subs, opts, sub)
	templates.Render(w, r, "submission_view", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| PATCH /api/forms/{formID}/submissions/{submissionID}                         |
*─────────────────────────────────────────────────────────────────────────────*/

type updateRequest struct {
	Status  *int   `json:"status"`
	Comment string `json:"comment"`
}

// ServeUpdateStatus applies a reviewer decision. The status write is the
// durable effect; the notification email is best-effort and only fires for
// accepted/rejected outcomes, never for triage marks.
func (h *Handler) ServeUpdateStatus(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")

	res := gates.RequireFormReviewer(w, r, h.Authz, formID)
	if !res.OK {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	status := models.SubmissionStatus(*req.Status)
	if !status.Valid() {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	subID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "submissionID"))
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sub, err := h.Submissions.GetByID(ctx, subID)
	if err == substore.ErrNotFound {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.ErrLog.API(w, r, "submission fetch failed", err)
		return
	}
	if sub.FormID != formID {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	reviewerID := res.Viewer.User.ID
	patch := substore.Patch{Status: &status, ReviewerID: &reviewerID}
	// Triage marks are internal bookkeeping and never carry a comment.
	if req.Comment != "" && !status.IsMarked() {
		clean := h.sanitize.Sanitize(req.Comment)
		patch.Comment = &clean
	}

	if err := h.Submissions.Update(ctx, subID, patch); err != nil {
		h.ErrLog.API(w, r, "submission update failed", err)
		return
	}

	h.Log.Info("submission status updated",
		zap.String("submission_id", subID.Hex()),
		zap.String("form_id", formID),
		zap.Int("status", int(status)),
		zap.Int64("reviewer_id", reviewerID))

	if status.Resolved() {
		h.notify(ctx, sub, formID, status, patch.Comment)
	}

	w.WriteHeader(http.StatusNoContent)
}

// notify sends the status email; failures are logged and swallowed.
func (h *Handler) notify(ctx context.Context, sub *models.Submission, formID string, status models.SubmissionStatus, comment *string) {
	if sub.Email == "" {
		return
	}

	form, err := h.Forms.FormBySlug(ctx, formID)
	if err != nil {
		h.Log.Warn("status email skipped: form lookup failed",
			zap.String("form_id", formID), zap.Error(err))
		return
	}

	body := noCommentPlaceholder
	if comment != nil && *comment != "" {
		body = *comment
	}

	if err := h.Mail.SendStatusUpdate(ctx, sub.Email, sub.UserTag, form.Name, status.Label(), body); err != nil {
		h.Log.Warn("status email failed",
			zap.String("submission_id", sub.ID.Hex()), zap.Error(err))
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Query and view helpers                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// listOptionsFromQuery maps the browser query string onto store options:
// ?page=N, ?recent=1, ?user=<snowflake>, ?status=open|none|<number>.
func listOptionsFromQuery(r *http.Request) substore.ListOptions {
	opts := substore.ListOptions{Status: substore.AllStatuses()}

	if page, err := strconv.Atoi(query.Get(r, "page")); err == nil && page > 1 {
		opts.Page = page
	}
	if query.Get(r, "recent") == "1" {
		opts.OnlyRecent = true
	}
	if uid, err := strconv.ParseInt(query.Get(r, "user"), 10, 64); err == nil {
		opts.UserID = uid
	}

	switch st := query.Get(r, "status"); st {
	case "":
		// all statuses
	case "open":
		opts.Status = substore.OpenOnly()
	case "none":
		opts.Status = substore.AbsentStatus()
	default:
		if n, err := strconv.Atoi(st); err == nil {
			s := models.SubmissionStatus(n)
			if s.Valid() {
				opts.Status = substore.ExactStatus(s)
			}
		}
	}

	return opts
}

type listView struct {
	Title      string
	IsLoggedIn bool
	UserTag    string
	Form       *formium.Form
	Items      []models.Submission
	Page       int
	PrevPage   int
	NextPage   int
	Current    *models.Submission
	Fields     map[string]string
}

// orderForDisplay re-ranks a page of submissions for the reviewer views.
// The stored encoding is an identity, not an ordering, so pages sort by the
// display priority table (triage marks first, resolved next, open last) and
// break ties newest-first.
func orderForDisplay(subs []models.Submission) {
	sort.SliceStable(subs, func(i, j int) bool {
		pi, pj := subs[i].Status.SortPriority(), subs[j].Status.SortPriority()
		if pi != pj {
			return pi > pj
		}
		return bytes.Compare(subs[i].ID[:], subs[j].ID[:]) > 0
	})
}

func listViewData(res gates.Result, form *formium.Form, subs []models.Submission, opts substore.ListOptions, current *models.Submission) listView {
	orderForDisplay(subs)
	page := opts.Page
	if page < 1 {
		page = 1
	}
	return listView{
		Title:      form.Name + " Submissions",
		IsLoggedIn: true,
		UserTag:    res.Viewer.User.Tag(),
		Form:       form,
		Items:      subs,
		Page:       page,
		PrevPage:   page - 1,
		NextPage:   page + 1,
		Current:    current,
		Fields:     form.FieldTitles(),
	}
}
