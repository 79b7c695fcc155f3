// internal/app/features/login/login.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/twfhub/internal/app/system/authutil"
	"github.com/dalemusser/twfhub/internal/app/system/inputval"
	"github.com/dalemusser/twfhub/internal/app/system/normalize"
	"github.com/dalemusser/twfhub/internal/app/system/timeouts"
	"github.com/dalemusser/twfhub/internal/app/system/viewdata"
	"github.com/dalemusser/twfhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(w, r, h.SessionMgr, "Log in", "/"),
		ReturnURL: query.Get(r, "return"),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login  loginid=&password=&return=  |  guest=1&return=                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	asGuest := inputval.IsTruthy(r.FormValue("guest"))
	loginID := strings.TrimSpace(r.FormValue("loginid"))
	if asGuest {
		loginID = GuestLoginID
	}
	if loginID == "" {
		h.renderFormWithError(w, r, "Please enter your login ID.", loginID)
		return
	}

	/*── look-up user by login_id_ci (case/diacritic-insensitive) ──────────*/

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByLoginID(ctx, loginID)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		if asGuest {
			h.renderFormWithError(w, r, "Guest access is not available on this site.", "")
			return
		}
		h.AuditLog.LoginFailedUserNotFound(ctx, r, loginID)
		h.renderFormWithError(w, r, "No account found for that login ID.", loginID)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB find user", err, "A server error occurred.", "/login")
		return
	}

	/*── check status: disabled users cannot log in ────────────────────────*/

	if normalize.Status(u.Status) == models.StatusDisabled {
		h.AuditLog.LoginFailedUserDisabled(ctx, r, u.ID, u.LoginID)
		h.renderFormWithError(w, r,
			"Your account is currently disabled. Please contact an administrator.", loginID)
		return
	}

	/*── check credentials ─────────────────────────────────────────────────*/

	authMethod := normalize.AuthMethod(u.AuthMethod)
	switch {
	case u.IsGuest():
		// the guest account never has a password
	case authMethod == authutil.MethodTrust:
	case authutil.RequiresPassword(authMethod):
		if u.PasswordHash == "" {
			h.renderFormWithError(w, r, "No password set for this account. Please contact an administrator.", loginID)
			return
		}
		if !authutil.CheckPassword(r.FormValue("password"), u.PasswordHash) {
			h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, u.LoginID)
			h.renderFormWithError(w, r, "Incorrect password. Please try again.", loginID)
			return
		}
	default:
		h.renderFormWithError(w, r, "Unknown authentication method. Please contact an administrator.", loginID)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID.Hex()); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("login_id", u.LoginID))
		h.renderFormWithError(w, r, "Unable to create session. Please try again.", loginID)
		return
	}
	h.AuditLog.LoginSuccess(ctx, r, u.ID, authMethod, u.LoginID)

	dest := urlutil.SafeReturn(strings.TrimSpace(r.FormValue("return")), "", "/")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| helper: render the form with an error                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, loginID string) {
	// From POST, "return" will be in the form; from GET, we might rely on the query.
	ret := strings.TrimSpace(r.FormValue("return"))
	if ret == "" {
		ret = query.Get(r, "return")
	}

	h.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(w, r, h.SessionMgr, "Log in", "/"),
		Error:     msg,
		LoginID:   loginID,
		ReturnURL: ret,
	})
}
