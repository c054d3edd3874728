// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authdiscordfeature "github.com/poketwo/forms/internal/app/features/authdiscord"
	dashboardfeature "github.com/poketwo/forms/internal/app/features/dashboard"
	errorsfeature "github.com/poketwo/forms/internal/app/features/errors"
	formsfeature "github.com/poketwo/forms/internal/app/features/forms"
	healthfeature "github.com/poketwo/forms/internal/app/features/health"
	homefeature "github.com/poketwo/forms/internal/app/features/home"
	submissionsfeature "github.com/poketwo/forms/internal/app/features/submissions"
	memberstore "github.com/poketwo/forms/internal/app/store/members"
	submissionstore "github.com/poketwo/forms/internal/app/store/submissions"
	"github.com/poketwo/forms/internal/app/system/auth"
	"github.com/poketwo/forms/internal/app/system/authz"
	"github.com/poketwo/forms/internal/app/system/discord"
	"github.com/poketwo/forms/internal/app/system/formium"
	"github.com/poketwo/forms/internal/app/system/mailer"
	"github.com/poketwo/forms/internal/app/system/memcache"
)

// sessionMaxAge keeps reviewers signed in for 28 days.
const sessionMaxAge = 28 * 24 * 60 * 60

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It builds the shared service objects
// (session manager, member directory, Formium client, mailer, authorizer),
// then mounts the feature routers: the public home page, the dashboard,
// the form pages under /a, and the JSON API under /api.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, sessionMaxAge, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Short-TTL cache shared by the member directory and the Formium
	// client, matching role changes within a minute.
	cache := memcache.New(appCfg.MemberCacheTTL)

	memberStore := memberstore.New(deps.CommunityMongoDatabase, deps.PoketwoMongoDatabase, cache)

	// Refresh member/role data on every request so role changes and
	// server departures take effect immediately.
	sessionMgr.SetMemberFetcher(memberStore)

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Authorization tables were validated at startup; parse errors here
	// mean the config changed underneath us.
	positionRoles, err := authz.ParsePositionRoles(appCfg.PositionRoles)
	if err != nil {
		return nil, err
	}
	formRoles, err := authz.ParseFormRoles(appCfg.FormsPermissions)
	if err != nil {
		return nil, err
	}
	az := authz.New(positionRoles, formRoles)

	oauthClient := discord.New(appCfg.DiscordClientID, appCfg.DiscordClientSecret, appCfg.BaseURL)
	if !oauthClient.IsConfigured() {
		logger.Warn("Discord OAuth is not configured; sign-in is disabled")
	}

	formClient := formium.New(appCfg.FormiumProjectID, appCfg.FormiumToken, cache)

	mail := mailer.New(mailer.Config{
		APIKey:             appCfg.SendgridKey,
		FromAddress:        appCfg.MailFrom,
		FromName:           appCfg.MailFromName,
		ReceivedTemplateID: appCfg.MailReceivedTemplate,
		StatusTemplateID:   appCfg.MailStatusTemplate,
	})
	if mail == nil {
		logger.Warn("SendGrid is not configured; notification email is disabled")
	}

	subStore := submissionstore.New(deps.CommunityMongoDatabase)

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// Global auth middleware: loads the signed-in viewer (user + fresh
	// member record) into context for every handler.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.CommunityMongoClient, deps.PoketwoMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public landing page
	homeHandler := homefeature.NewHandler(sessionMgr, logger)
	r.Mount("/", homefeature.Routes(homeHandler, sessionMgr))

	// Signed-in dashboard
	dashHandler := dashboardfeature.NewHandler(memberStore, formClient, az, availableForms(appCfg.FormsAvailable), errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashHandler, sessionMgr))

	// Form pages and reviewer pages
	formsHandler := formsfeature.NewHandler(memberStore, subStore, formClient, mail, errLog, logger)
	subsHandler := submissionsfeature.NewHandler(subStore, formClient, az, mail, errLog, logger)
	r.Mount("/a", formsfeature.Routes(formsHandler, subsHandler, sessionMgr))

	// JSON API: OAuth endpoints are public, the submission endpoints
	// require a signed-in viewer.
	authHandler := authdiscordfeature.NewHandler(sessionMgr, oauthClient, logger)
	api := authdiscordfeature.Routes(authHandler)
	api.Group(func(pr chi.Router) {
		pr.Use(sessionMgr.RequireSignedIn)
		pr.Post("/forms/{formID}/submissions", formsHandler.ServeCreateSubmission)
		pr.Patch("/forms/{formID}/submissions/{submissionID}", subsHandler.ServeUpdateStatus)
	})
	r.Mount("/api", api)

	return r, nil
}

// availableForms splits the comma-separated forms_available config value.
func availableForms(raw string) []string {
	var slugs []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			slugs = append(slugs, s)
		}
	}
	return slugs
}
