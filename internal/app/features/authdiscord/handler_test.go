package authdiscord_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"go.uber.org/zap"

	"github.com/poketwo/forms/internal/app/features/authdiscord"
	"github.com/poketwo/forms/internal/app/system/auth"
	"github.com/poketwo/forms/internal/app/system/discord"
)

const testSessionKey = "0123456789abcdef0123456789abcdef"

func newHandler(t *testing.T, configured bool) (*authdiscord.Handler, *auth.SessionManager) {
	t.Helper()
	sm, err := auth.NewSessionManager(testSessionKey, "forms-test", "", false, 3600, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	clientID, secret := "", ""
	if configured {
		clientID, secret = "client-123", "secret"
	}
	oauth := discord.New(clientID, secret, "http://localhost:3000")
	return authdiscord.NewHandler(sm, oauth, zap.NewNop()), sm
}

func TestServeLoginUnconfigured(t *testing.T) {
	h, _ := newHandler(t, false)

	rec := httptest.NewRecorder()
	h.ServeLogin(rec, httptest.NewRequest("GET", "/api/login", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestServeLoginRedirectsWithDerivedState(t *testing.T) {
	h, sm := newHandler(t, true)

	req := httptest.NewRequest("GET", "/api/login", nil)
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}

	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse redirect: %v", err)
	}
	if loc.Host != "discord.com" {
		t.Errorf("redirect host: got %q", loc.Host)
	}

	// The state in the authorize URL must be derivable from the nonce the
	// login just stored in the cookie.
	cookieReq := httptest.NewRequest("GET", "/api/callback", nil)
	for _, c := range rec.Result().Cookies() {
		cookieReq.AddCookie(c)
	}
	sess, _ := sm.GetSession(cookieReq)
	nonce := auth.Nonce(sess)
	if nonce == "" {
		t.Fatal("login must persist a nonce")
	}
	if got := loc.Query().Get("state"); got != discord.StateFor(nonce) {
		t.Errorf("state: got %q, want derived from nonce", got)
	}
}

func TestServeCallbackWithoutNonce(t *testing.T) {
	h, _ := newHandler(t, true)

	rec := httptest.NewRecorder()
	h.ServeCallback(rec, httptest.NewRequest("GET", "/api/callback?code=x&state=y", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestServeCallbackStateMismatch(t *testing.T) {
	h, sm := newHandler(t, true)

	// Obtain a session cookie carrying a nonce.
	loginReq := httptest.NewRequest("GET", "/api/login", nil)
	loginRec := httptest.NewRecorder()
	sess, _ := sm.GetSession(loginReq)
	if _, err := sm.EnsureNonce(loginRec, loginReq, sess); err != nil {
		t.Fatalf("EnsureNonce: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/callback?code=x&state=forged", nil)
	for _, c := range loginRec.Result().Cookies() {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestServeCallbackMissingCode(t *testing.T) {
	h, sm := newHandler(t, true)

	loginReq := httptest.NewRequest("GET", "/api/login", nil)
	loginRec := httptest.NewRecorder()
	sess, _ := sm.GetSession(loginReq)
	nonce, err := sm.EnsureNonce(loginRec, loginReq, sess)
	if err != nil {
		t.Fatalf("EnsureNonce: %v", err)
	}

	// Correct state, no code.
	req := httptest.NewRequest("GET", "/api/callback?state="+discord.StateFor(nonce), nil)
	for _, c := range loginRec.Result().Cookies() {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestServeCallbackExchangeFailureFlashes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token endpoint down", http.StatusInternalServerError)
	}))
	defer ts.Close()

	saved := discord.Endpoint
	discord.Endpoint.TokenURL = ts.URL + "/token"
	defer func() { discord.Endpoint = saved }()

	h, sm := newHandler(t, true)

	loginReq := httptest.NewRequest("GET", "/api/login", nil)
	loginRec := httptest.NewRecorder()
	sess, _ := sm.GetSession(loginReq)
	nonce, err := sm.EnsureNonce(loginRec, loginReq, sess)
	if err != nil {
		t.Fatalf("EnsureNonce: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/callback?code=abc&state="+discord.StateFor(nonce), nil)
	for _, c := range loginRec.Result().Cookies() {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("redirect: got %q, want /", loc)
	}

	// The redirected-to page must find and consume the flash.
	flashReq := httptest.NewRequest("GET", "/", nil)
	for _, c := range rec.Result().Cookies() {
		flashReq.AddCookie(c)
	}
	flashSess, _ := sm.GetSession(flashReq)
	if msg := auth.TakeError(flashSess); msg == "" {
		t.Error("exchange failure must leave a one-shot error in the session")
	}
	if msg := auth.TakeError(flashSess); msg != "" {
		t.Errorf("flash must be one-shot, second read got %q", msg)
	}
}

func TestServeLogout(t *testing.T) {
	h, _ := newHandler(t, true)

	rec := httptest.NewRecorder()
	h.ServeLogout(rec, httptest.NewRequest("GET", "/api/logout", nil))

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("redirect: got %q, want /", loc)
	}

	var expired bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "forms-test" && c.MaxAge < 0 {
			expired = true
		}
	}
	if !expired {
		t.Error("logout must expire the session cookie")
	}
}
