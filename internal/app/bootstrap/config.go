// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"

	"github.com/poketwo/forms/internal/app/system/authz"
)

// appConfigKeys defines the configuration keys for the forms service.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: FORMS_MONGO_URI, FORMS_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "Community MongoDB connection URI"},
	{Name: "mongo_database", Default: "support", Desc: "Community MongoDB database name"},
	{Name: "poketwo_mongo_uri", Default: "", Desc: "Pokétwo MongoDB connection URI (blank reuses mongo_uri)"},
	{Name: "poketwo_mongo_database", Default: "pokemon", Desc: "Pokétwo MongoDB database name"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "forms.poketwo.net", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Discord OAuth configuration
	{Name: "discord_client_id", Default: "", Desc: "Discord OAuth2 client ID"},
	{Name: "discord_client_secret", Default: "", Desc: "Discord OAuth2 client secret"},

	// Formium configuration
	{Name: "formium_project_id", Default: "", Desc: "Formium project ID"},
	{Name: "formium_token", Default: "", Desc: "Formium API token"},

	// Email configuration
	{Name: "sendgrid_key", Default: "", Desc: "SendGrid API key (blank disables email)"},
	{Name: "mail_from", Default: "noreply@poketwo.net", Desc: "From email address"},
	{Name: "mail_from_name", Default: "Pokétwo", Desc: "From display name"},
	{Name: "mail_received_template", Default: "d-2eceed634947494e93093a311b88efc9", Desc: "SendGrid template ID for submission receipts"},
	{Name: "mail_status_template", Default: "d-f5c582010b5a49368bbd391f50fcc393", Desc: "SendGrid template ID for status updates"},

	// Base URL for the OAuth redirect URI
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for OAuth callbacks"},

	// Member directory caching
	{Name: "member_cache_ttl", Default: "60s", Desc: "Member directory cache TTL (e.g., 60s, 2m)"},

	// Authorization tables
	{Name: "position_roles", Default: defaultPositionRoles, Desc: "JSON map of position name to Discord role IDs"},
	{Name: "forms_permissions", Default: defaultFormsPermissions, Desc: "JSON map of form slug to permitted reviewer role IDs"},
	{Name: "forms_available", Default: "moderator-application,ban-appeal,suspension-appeal", Desc: "Comma-separated form slugs shown on the dashboard"},
}

const defaultPositionRoles = `{
  "admin": ["718006431231508481"],
  "moderator": ["724879492622843944", "813433839471820810"],
  "helper": ["732712709514199110", "794438698241884200"]
}`

const defaultFormsPermissions = `{
  "moderator-application": ["718006431231508481", "1219500880534179892"],
  "ban-appeal": ["718006431231508481", "1219500880534179892"],
  "suspension-appeal": ["718006431231508481", "1219501453240959006"]
}`

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "FORMS", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:             appValues.String("mongo_uri"),
		MongoDatabase:        appValues.String("mongo_database"),
		PoketwoMongoURI:      appValues.String("poketwo_mongo_uri"),
		PoketwoMongoDatabase: appValues.String("poketwo_mongo_database"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		DiscordClientID:     appValues.String("discord_client_id"),
		DiscordClientSecret: appValues.String("discord_client_secret"),

		FormiumProjectID: appValues.String("formium_project_id"),
		FormiumToken:     appValues.String("formium_token"),

		SendgridKey:          appValues.String("sendgrid_key"),
		MailFrom:             appValues.String("mail_from"),
		MailFromName:         appValues.String("mail_from_name"),
		MailReceivedTemplate: appValues.String("mail_received_template"),
		MailStatusTemplate:   appValues.String("mail_status_template"),

		BaseURL: appValues.String("base_url"),

		MemberCacheTTL: appValues.Duration("member_cache_ttl", 60*time.Second),

		PositionRoles:    appValues.String("position_roles"),
		FormsPermissions: appValues.String("forms_permissions"),
		FormsAvailable:   appValues.String("forms_available"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Mongo URIs and the authorization tables are checked here so that
// misconfiguration fails fast instead of surfacing per-request.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.PoketwoMongoURI != "" {
		if err := wafflemongo.ValidateURI(appCfg.PoketwoMongoURI); err != nil {
			logger.Error("invalid Pokétwo MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid Pokétwo MongoDB URI: %w", err)
		}
	}

	if _, err := authz.ParsePositionRoles(appCfg.PositionRoles); err != nil {
		return fmt.Errorf("invalid position_roles: %w", err)
	}
	if _, err := authz.ParseFormRoles(appCfg.FormsPermissions); err != nil {
		return fmt.Errorf("invalid forms_permissions: %w", err)
	}

	if coreCfg.Env == "prod" {
		if appCfg.DiscordClientID == "" || appCfg.DiscordClientSecret == "" {
			return fmt.Errorf("discord_client_id and discord_client_secret are required in prod")
		}
	}

	return nil
}
