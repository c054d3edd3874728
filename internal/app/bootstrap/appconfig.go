// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, env). AppConfig is everything specific to the forms service:
// database connections, Discord OAuth credentials, Formium access, the
// SendGrid mail settings, and the role tables that drive authorization.
type AppConfig struct {
	// Community guild database (members, submissions)
	MongoURI      string
	MongoDatabase string

	// Pokétwo product database (bot-side member records). When the URI is
	// blank the community connection is reused.
	PoketwoMongoURI      string
	PoketwoMongoDatabase string

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: forms.poketwo.net)
	SessionDomain string // Cookie domain (blank means current host)

	// Discord OAuth2 configuration
	DiscordClientID     string
	DiscordClientSecret string

	// Formium (hosted form schemas)
	FormiumProjectID string
	FormiumToken     string

	// SendGrid email configuration
	SendgridKey          string
	MailFrom             string // From email address (e.g., noreply@poketwo.net)
	MailFromName         string // From display name (e.g., Pokétwo)
	MailReceivedTemplate string // SendGrid dynamic template for submission receipts
	MailStatusTemplate   string // SendGrid dynamic template for status updates

	// Base URL used to build the OAuth redirect URI
	BaseURL string // e.g., "https://forms.poketwo.net" or "http://localhost:3000"

	// Member directory cache TTL
	MemberCacheTTL time.Duration

	// Authorization tables (JSON, see authz.ParsePositionRoles /
	// authz.ParseFormRoles) and the list of form slugs shown on the
	// dashboard (comma-separated).
	PositionRoles    string
	FormsPermissions string
	FormsAvailable   string
}
