// Package authdiscord implements the Discord OAuth login flow:
// GET /api/login, GET /api/callback, GET /api/logout.
//
// The anti-forgery state is derived deterministically from a per-session
// random nonce (sha256 of the nonce id), so the callback can validate it
// against the cookie alone with no server-side state store.
package authdiscord

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/poketwo/forms/internal/app/system/auth"
	"github.com/poketwo/forms/internal/app/system/discord"
	"github.com/poketwo/forms/internal/app/system/timeouts"
)

// Handler handles the OAuth endpoints.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	OAuth      *discord.Client
}

func NewHandler(sessionMgr *auth.SessionManager, oauthClient *discord.Client, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		OAuth:      oauthClient,
	}
}

// ServeLogin handles GET /api/login. It ensures the session has a nonce,
// then redirects to the provider's consent screen with the derived state.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.OAuth.IsConfigured() {
		h.Log.Warn("Discord OAuth not configured")
		http.Error(w, "login unavailable", http.StatusServiceUnavailable)
		return
	}

	sess, err := h.SessionMgr.GetSession(r)
	if err != nil {
		// A stale cookie still yields a usable fresh session.
		h.Log.Debug("session decode failed on login", zap.Error(err))
	}

	nonce, err := h.SessionMgr.EnsureNonce(w, r, sess)
	if err != nil {
		h.Log.Error("failed to persist login nonce", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	url := h.OAuth.AuthCodeURL(discord.StateFor(nonce))
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// ServeCallback handles GET /api/callback. It validates the state against
// the session nonce, exchanges the code, fetches the profile, stores the
// user snapshot, and redirects to the stored next target or "/".
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	sess, err := h.SessionMgr.GetSession(r)
	if err != nil {
		h.Log.Warn("session decode failed on callback", zap.Error(err))
	}

	nonce := auth.Nonce(sess)
	if nonce == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state != discord.StateFor(nonce) {
		h.Log.Warn("OAuth state mismatch or missing code")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	token, err := h.OAuth.Exchange(ctx, code)
	if err != nil {
		h.Log.Error("OAuth code exchange failed", zap.Error(err))
		h.failLogin(w, r, sess)
		return
	}

	user, err := h.OAuth.FetchUser(ctx, token)
	if err != nil {
		h.Log.Error("profile fetch failed", zap.Error(err))
		h.failLogin(w, r, sess)
		return
	}

	next := auth.TakeNext(sess)

	if err := h.SessionMgr.LoginUser(w, r, sess, *user); err != nil {
		h.Log.Error("save session failed", zap.Error(err),
			zap.Int64("user_id", user.ID))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.Log.Info("user logged in",
		zap.Int64("user_id", user.ID),
		zap.String("user_tag", user.Tag()))

	http.Redirect(w, r, urlutil.SafeReturn(next, "", "/"), http.StatusSeeOther)
}

// failLogin records a one-shot flash in the session and sends the browser
// back to the sign-in page. Provider-side failures are transient and the
// user's only recourse is to try again.
func (h *Handler) failLogin(w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
	auth.SetError(sess, "Signing in with Discord failed. Please try again.")
	if err := sess.Save(r, w); err != nil {
		h.Log.Warn("save login flash failed", zap.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ServeLogout handles GET /api/logout: destroy the session, go home.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.LogoutUser(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
