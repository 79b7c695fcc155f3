// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/httpnav"
)

// RenderUnauthorized shows a friendly "sign in required" page.
// If backURL is empty, it will default to /login.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	if backURL == "" {
		backURL = "/login"
	}
	renderStatus(w, r, http.StatusUnauthorized,
		newPage(r, "Sign in required", "Please sign in to continue.", backURL))
}

// RenderForbidden shows an access error page with a message.
// If backURL is empty, it resolves a safe back URL with a default fallback.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, "/")
	}
	renderStatus(w, r, http.StatusForbidden, newPage(r, "Access denied", msg, backURL))
}

// RenderNotFound shows a 404 page.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, "/")
	}
	renderStatus(w, r, http.StatusNotFound, newPage(r, "Not found", msg, backURL))
}

// RenderBadRequest shows a 400 page.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, "/")
	}
	renderStatus(w, r, http.StatusBadRequest, newPage(r, "Invalid request", msg, backURL))
}

// RenderError shows a failed action with its message. Used for domain
// refusals such as tracking or subscription errors.
func RenderError(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, "/")
	}
	renderStatus(w, r, http.StatusUnprocessableEntity, newPage(r, "Action not possible", msg, backURL))
}

// RenderServerError shows a 500 page without logging. Prefer
// ErrorLogger.LogServerError when an error value is at hand.
func RenderServerError(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	renderServerError(w, r, msg, backURL, "")
}

func renderServerError(w http.ResponseWriter, r *http.Request, msg, backURL, ref string) {
	if backURL == "" {
		backURL = "/"
	}
	data := newPage(r, "Something went wrong", msg, backURL)
	data.Reference = ref
	renderStatus(w, r, http.StatusInternalServerError, data)
}
