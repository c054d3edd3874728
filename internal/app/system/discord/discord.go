// Package discord wraps the Discord OAuth2 authorization-code flow and the
// profile fetch behind it.
package discord

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/poketwo/forms/internal/domain/models"
)

// Endpoint is Discord's OAuth2 endpoint pair.
var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://discord.com/api/oauth2/authorize",
	TokenURL: "https://discord.com/api/oauth2/token",
}

const userInfoURL = "https://discord.com/api/v10/users/@me"

// Client performs the authorization-code exchange and profile lookup.
type Client struct {
	cfg *oauth2.Config
}

// New builds a client. The redirect URL is baseURL + "/api/callback".
func New(clientID, clientSecret, baseURL string) *Client {
	return &Client{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  baseURL + "/api/callback",
			Scopes:       []string{"identify", "email"},
			Endpoint:     Endpoint,
		},
	}
}

// IsConfigured reports whether OAuth credentials are present.
func (c *Client) IsConfigured() bool {
	return c.cfg.ClientID != "" && c.cfg.ClientSecret != ""
}

// AuthCodeURL returns the provider authorize URL bound to the given state.
func (c *Client) AuthCodeURL(state string) string {
	return c.cfg.AuthCodeURL(state)
}

// Exchange trades the authorization code for a token.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return c.cfg.Exchange(ctx, code)
}

// FetchUser retrieves the authenticated user's profile.
func (c *Client) FetchUser(ctx context.Context, token *oauth2.Token) (*models.User, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch user info: unexpected status %d", resp.StatusCode)
	}

	var u models.User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return &u, nil
}

// StateFor derives the anti-forgery state deterministically from the
// session nonce id. The callback recomputes it from the current session and
// rejects on mismatch, so the state needs no server-side storage.
func StateFor(nonceID string) string {
	sum := sha256.Sum256([]byte(nonceID))
	return hex.EncodeToString(sum[:])
}
