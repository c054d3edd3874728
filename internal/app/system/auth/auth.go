// Package auth owns the cookie-backed session and the per-request identity
// context. The session cookie holds the Discord user snapshot captured at
// login plus a few transient values (OAuth nonce, post-login redirect, a
// one-shot error message). The member projection is NOT stored: it is
// re-resolved on every authenticated request so authorization always sees
// current role data, bounded only by the directory cache TTL.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/poketwo/forms/internal/domain/models"
)

const (
	userKey  = "user"
	nonceKey = "nonce_id"
	nextKey  = "next"
	errorKey = "error"
)

// MemberFetcher resolves a Discord user id to the guild-member projection.
// Implemented by the members store; nil disables member resolution.
type MemberFetcher interface {
	FetchMember(ctx context.Context, id int64) (*models.Member, error)
}

// Viewer is the typed request identity handed to handlers: the session's
// user snapshot plus the freshly resolved member (nil when the user is not
// in the guild directory).
type Viewer struct {
	User   models.User
	Member *models.Member
}

type ctxKey string

const viewerKey ctxKey = "viewer"

// SessionManager wraps the gorilla cookie store and the middleware that
// turns cookies into Viewers.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	log     *zap.Logger
	members MemberFetcher
}

// NewSessionManager builds the cookie store. maxAge is in seconds; the
// secure flag should be on everywhere except local development.
func NewSessionManager(sessionKey, name, domain string, secure bool, maxAge int, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide >=32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	logger.Info("session store initialized",
		zap.String("cookie", name),
		zap.Bool("secure", secure),
		zap.Int("max_age", maxAge))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SetMemberFetcher wires the directory lookup used to refresh the member
// projection on each request.
func (sm *SessionManager) SetMemberFetcher(f MemberFetcher) {
	sm.members = f
}

// Store exposes the underlying cookie store (logout needs its options).
func (sm *SessionManager) Store() *sessions.CookieStore {
	return sm.store
}

// GetSession decodes the request's session cookie. A malformed or expired
// cookie yields a fresh empty session along with the decode error; callers
// that only read values can ignore the error.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return sm.store.Get(r, sm.name)
}

// CurrentViewer returns the request identity set by LoadSessionUser.
func CurrentViewer(r *http.Request) (*Viewer, bool) {
	v, ok := r.Context().Value(viewerKey).(*Viewer)
	return v, ok
}

// CurrentUser returns just the session user.
func CurrentUser(r *http.Request) (*models.User, bool) {
	v, ok := CurrentViewer(r)
	if !ok {
		return nil, false
	}
	return &v.User, true
}

// LoadSessionUser decodes the cookie once per request and, for
// authenticated requests, re-resolves the member projection before handing
// a Viewer to downstream handlers. Cookie decode failures are treated as
// anonymous, never as errors.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.GetSession(r)
		if err != nil {
			sm.log.Debug("session decode failed; treating as anonymous", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		raw, _ := sess.Values[userKey].(string)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		var u models.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID == 0 {
			sm.log.Warn("corrupt user snapshot in session; treating as anonymous", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		v := &Viewer{User: u}
		if sm.members != nil {
			member, err := sm.members.FetchMember(r.Context(), u.ID)
			if err != nil {
				// Directory unavailable: the user stays authenticated but
				// carries no member record, which fails closed at the gates.
				sm.log.Warn("member lookup failed",
					zap.Int64("user_id", u.ID), zap.Error(err))
			} else {
				v.Member = member
			}
		}

		next.ServeHTTP(w, withViewer(r, v))
	})
}

// RequireSignedIn enforces AUTHENTICATED mode: anonymous API calls get a
// plain 401, anonymous page loads are sent to the sign-in root.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentViewer(r); ok {
			next.ServeHTTP(w, r)
			return
		}

		if isAPI(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// Remember where the user was headed so the callback can return there.
		if sess, err := sm.GetSession(r); err == nil {
			SetNext(sess, r.URL.RequestURI())
			if err := sess.Save(r, w); err != nil {
				sm.log.Warn("save next target failed", zap.Error(err))
			}
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})
}

// RequireGuest enforces GUEST mode: an already signed-in user is sent to
// the dashboard instead of seeing the page again.
func (sm *SessionManager) RequireGuest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentViewer(r); ok {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoginUser stores the user snapshot in the session, replacing any
// transient OAuth state.
func (sm *SessionManager) LoginUser(w http.ResponseWriter, r *http.Request, sess *sessions.Session, u models.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	sess.Values[userKey] = string(raw)
	delete(sess.Values, nonceKey)
	return sess.Save(r, w)
}

// LogoutUser destroys the session by issuing a deletion cookie that matches
// the original store settings.
func (sm *SessionManager) LogoutUser(w http.ResponseWriter, r *http.Request) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		sm.log.Warn("session decode failed during logout", zap.Error(err))
	}
	if opts := sm.store.Options; opts != nil {
		sess.Options.Domain = opts.Domain
		sess.Options.Path = opts.Path
		sess.Options.Secure = opts.Secure
		sess.Options.HttpOnly = opts.HttpOnly
		sess.Options.SameSite = opts.SameSite
	}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

func withViewer(r *http.Request, v *Viewer) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), viewerKey, v))
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}
