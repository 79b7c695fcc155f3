// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"
	"net/url"

	"github.com/dalemusser/twfhub/internal/app/system/auth"
	"github.com/dalemusser/twfhub/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/gorilla/csrf"
)

// SiteName is shown in the page header.
const SiteName = "Forums"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(w, r, sm, "Page Title", "/default-back"),
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	IsGuest    bool
	Role       string
	UserName   string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string

	// One-shot messages queued by the previous request.
	Flashes []string
}

// NewBaseVM creates a populated BaseVM. sm may be nil, in which case no
// flash messages are read.
func NewBaseVM(w http.ResponseWriter, r *http.Request, sm *auth.SessionManager, title, backDefault string) BaseVM {
	role, name, _, signedIn := authz.UserCtx(r)

	vm := BaseVM{
		SiteName:    SiteName,
		IsLoggedIn:  signedIn,
		IsGuest:     signedIn && role == "guest",
		Role:        role,
		UserName:    name,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}
	if sm != nil {
		vm.Flashes = sm.Flashes(w, r)
	}
	return vm
}

// Renderer draws a named page. Handlers hold one so tests can capture
// what would be rendered.
type Renderer func(w http.ResponseWriter, r *http.Request, name string, data any)

// TemplateRenderer renders through the shared template engine.
func TemplateRenderer() Renderer {
	return func(w http.ResponseWriter, r *http.Request, name string, data any) {
		templates.Render(w, r, name, data)
	}
}

// PromptVM backs the "login_prompt" page shown to guests and anonymous
// visitors who try a forum action that needs a real account.
type PromptVM struct {
	BaseVM
	Message     string
	ContinueURL string
}

// LoginPrompt builds the prompt; continueTo is where login should send
// the user afterwards.
func LoginPrompt(w http.ResponseWriter, r *http.Request, sm *auth.SessionManager, msg, continueTo, backDefault string) PromptVM {
	return PromptVM{
		BaseVM:      NewBaseVM(w, r, sm, "Log in required", backDefault),
		Message:     msg,
		ContinueURL: url.QueryEscape(continueTo),
	}
}
