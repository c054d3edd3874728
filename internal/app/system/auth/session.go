package auth

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// Transient session values used by the OAuth flow and the UI. The nonce id
// anchors the anti-forgery state (the authorize URL carries sha256(nonce));
// next and error are one-shot: read once, then cleared.

// EnsureNonce returns the session's nonce id, minting and saving one on the
// session's first anonymous hit.
func (sm *SessionManager) EnsureNonce(w http.ResponseWriter, r *http.Request, sess *sessions.Session) (string, error) {
	if id, ok := sess.Values[nonceKey].(string); ok && id != "" {
		return id, nil
	}
	id := uuid.NewString()
	sess.Values[nonceKey] = id
	if err := sess.Save(r, w); err != nil {
		return "", err
	}
	return id, nil
}

// Nonce returns the current nonce id without creating one.
func Nonce(sess *sessions.Session) string {
	id, _ := sess.Values[nonceKey].(string)
	return id
}

// SetNext records the post-login redirect target.
func SetNext(sess *sessions.Session, target string) {
	sess.Values[nextKey] = target
}

// TakeNext returns and clears the post-login redirect target.
func TakeNext(sess *sessions.Session) string {
	target, _ := sess.Values[nextKey].(string)
	delete(sess.Values, nextKey)
	return target
}

// SetError records a one-shot error message surfaced on the next page view.
func SetError(sess *sessions.Session, msg string) {
	sess.Values[errorKey] = msg
}

// TakeError returns and clears the one-shot error message.
func TakeError(sess *sessions.Session) string {
	msg, _ := sess.Values[errorKey].(string)
	delete(sess.Values, errorKey)
	return msg
}
