package home

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"

	"github.com/poketwo/forms/internal/app/system/auth"
)

// Handler serves the sign-in landing page.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
}

func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
	}
}

// ServeRoot handles GET /. Signed-in users never reach this handler: the
// guest middleware bounces them to the dashboard.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	flash := ""
	if sess, err := h.SessionMgr.GetSession(r); err == nil {
		flash = auth.TakeError(sess)
		if flash != "" {
			if err := sess.Save(r, w); err != nil {
				h.Log.Warn("clear flash failed", zap.Error(err))
			}
		}
	}

	data := struct {
		Title      string
		IsLoggedIn bool
		UserTag    string
		Error      string
	}{
		Title: "Welcome",
		Error: flash,
	}

	templates.Render(w, r, "home", data)
}
