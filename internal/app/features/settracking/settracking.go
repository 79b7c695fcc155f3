// internal/app/features/settracking/settracking.go
package settracking

import (
	"fmt"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/twfhub/internal/app/features/errors"
	"github.com/dalemusser/twfhub/internal/app/policy/capability"
	"github.com/dalemusser/twfhub/internal/app/system/auth"
	"github.com/dalemusser/twfhub/internal/app/system/forumctx"
	"github.com/dalemusser/twfhub/internal/app/system/inputval"
	"github.com/dalemusser/twfhub/internal/app/system/viewdata"
	"github.com/dalemusser/twfhub/internal/domain/twferr"
	"go.uber.org/zap"
)

type trackingInput struct {
	Forum      string `validate:"required,objectid" label:"Forum"`
	ReturnPage string `validate:"returnpage" label:"Return page"`
}

func nowTracking(user, forum string) string {
	return fmt.Sprintf("%s is now tracking %s.", user, forum)
}

func noLongerTracking(user, forum string) string {
	return fmt.Sprintf("%s is no longer tracking %s.", user, forum)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /twf/settracking  id=&returnpage=                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleSetTracking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/")
		return
	}
	in := trackingInput{
		Forum:      strings.TrimSpace(r.PostFormValue("id")),
		ReturnPage: strings.TrimSpace(r.PostFormValue("returnpage")),
	}
	if res := inputval.Validate(in); res.HasErrors() {
		uierrors.RenderBadRequest(w, r, res.First(), "/")
		return
	}
	forumID, _ := inputval.ParseObjectID(in.Forum)

	fc, err := h.St.ForumCtx.Resolve(ctx, forumID)
	if err != nil {
		h.ErrLog.RenderDomainError(w, r, "resolve forum failed", err, "/")
		return
	}
	returnTo := fc.ReturnURL(inputval.ReturnPage(in.ReturnPage))

	u, _ := auth.CurrentUser(r)
	if u.IsGuest() {
		h.Render(w, r, "login_prompt", viewdata.LoginPrompt(w, r, h.SM,
			"Guests cannot change read tracking. Log in with your own account first.",
			returnTo, returnTo))
		return
	}
	rd, err := forumctx.Reader(u)
	if err != nil {
		h.ErrLog.RenderDomainError(w, r, "session user", err, returnTo)
		return
	}
	ok, err := h.St.Caps.HasCapability(ctx, rd.ID, capability.ViewDiscussion, fc.Caps())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "capability check failed", err, "A database error occurred.", returnTo)
		return
	}
	if !ok {
		h.ErrLog.RenderDomainError(w, r, "view discussion denied", twferr.ErrUnauthorized, returnTo)
		return
	}

	tracked, err := h.St.Reading.IsTracked(ctx, rd, fc.Forum)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "check tracking failed", err, "A database error occurred.", returnTo)
		return
	}

	var msg string
	if tracked {
		err = h.St.Reading.StopTracking(ctx, rd, fc.Forum)
		msg = noLongerTracking(u.Name, fc.Forum.Name)
	} else {
		err = h.St.Reading.StartTracking(ctx, rd, fc.Forum)
		msg = nowTracking(u.Name, fc.Forum.Name)
	}
	if err != nil {
		h.ErrLog.RenderDomainError(w, r, "set tracking failed", err, returnTo)
		return
	}

	h.Log.Info("read tracking changed",
		zap.String("forum_id", fc.Forum.ID.Hex()),
		zap.String("user_id", rd.ID.Hex()),
		zap.Bool("tracking", !tracked))
	h.SM.AddFlash(w, r, msg)
	http.Redirect(w, r, returnTo, http.StatusSeeOther)
}
