// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/twfhub/internal/app/system/authz"
	"github.com/dalemusser/twfhub/internal/app/system/viewdata"
)

// pageData is the view model for error pages.
type pageData struct {
	Title      string
	SiteName   string
	IsLoggedIn bool
	Role       string
	UserName   string
	Message    string
	BackURL    string
	// Reference is shown on server errors so users can quote it.
	Reference string
}

var render = viewdata.TemplateRenderer()

// UseRenderer replaces the page renderer. For tests.
func UseRenderer(r viewdata.Renderer) { render = r }

func newPage(r *http.Request, title, msg, backURL string) pageData {
	role, name, _, signedIn := authz.UserCtx(r)
	return pageData{
		Title:      title,
		SiteName:   viewdata.SiteName,
		IsLoggedIn: signedIn,
		Role:       role,
		UserName:   name,
		Message:    msg,
		BackURL:    backURL,
	}
}

func renderStatus(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	render(w, r, "error_page", data)
}

// Handler serves the standalone error pages.
// No DB needed; it just renders templates.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden renders a friendly "access denied" page.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	RenderForbidden(w, r, "You don't have permission to view this page.", "/")
}

// Unauthorized renders a friendly "sign in required" page.
// GET /unauthorized
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	RenderUnauthorized(w, r, "/login")
}

// NotFound is installed as the router's 404 handler.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	RenderNotFound(w, r, "The page you asked for does not exist.", "/")
}
