// Package errors renders friendly error pages and centralizes handler
// error logging.
package errors

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"

	"github.com/poketwo/forms/internal/app/system/auth"
)

// pageData is the view model for error pages.
type pageData struct {
	Title      string
	IsLoggedIn bool
	UserTag    string
	Message    string
	BackURL    string
}

// RenderNotFound shows a friendly "not found" page.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg string) {
	u, signed := auth.CurrentUser(r)
	tag := ""
	if signed {
		tag = u.Tag()
	}
	if msg == "" {
		msg = "That page doesn't exist."
	}

	w.WriteHeader(http.StatusNotFound)
	templates.Render(w, r, "error_page", pageData{
		Title:      "Not found",
		IsLoggedIn: signed,
		UserTag:    tag,
		Message:    msg,
		BackURL:    "/dashboard",
	})
}

// RenderServerError shows a friendly failure page for upstream/service
// errors that the submitter can do nothing about.
func RenderServerError(w http.ResponseWriter, r *http.Request, msg string) {
	u, signed := auth.CurrentUser(r)
	tag := ""
	if signed {
		tag = u.Tag()
	}
	if msg == "" {
		msg = "Something went wrong. Please try again."
	}

	w.WriteHeader(http.StatusInternalServerError)
	templates.Render(w, r, "error_page", pageData{
		Title:      "Something went wrong",
		IsLoggedIn: signed,
		UserTag:    tag,
		Message:    msg,
		BackURL:    "/dashboard",
	})
}

// ErrorLogger gives handlers a shared way to log failures before rendering.
type ErrorLogger struct {
	log *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// Page logs a page-handler failure and renders the server-error page.
func (e *ErrorLogger) Page(w http.ResponseWriter, r *http.Request, op string, err error) {
	e.log.Error(op, zap.Error(err), zap.String("path", r.URL.Path))
	RenderServerError(w, r, "")
}

// API logs an API-handler failure and writes a plain 500.
func (e *ErrorLogger) API(w http.ResponseWriter, r *http.Request, op string, err error) {
	e.log.Error(op, zap.Error(err), zap.String("path", r.URL.Path))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
