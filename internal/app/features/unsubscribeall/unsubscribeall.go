// internal/app/features/unsubscribeall/unsubscribeall.go
package unsubscribeall

import (
	"fmt"
	"net/http"

	"github.com/dalemusser/twfhub/internal/app/system/auth"
	"github.com/dalemusser/twfhub/internal/app/system/forumctx"
	"github.com/dalemusser/twfhub/internal/app/system/inputval"
	"github.com/dalemusser/twfhub/internal/app/system/viewdata"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const pagePath = "/twf/unsubscribeall"

func plural(n int64, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

// confirmMessage words the question for what the user still has.
// The empty string means there is nothing to do.
func confirmMessage(forums int, discussions int64) string {
	switch {
	case forums > 0 && discussions > 0:
		return fmt.Sprintf("You are subscribed to %s and %s. Do you really want to unsubscribe from all of them?",
			plural(int64(forums), "forum", "forums"), plural(discussions, "discussion", "discussions"))
	case forums > 0:
		return fmt.Sprintf("Do you really want to unsubscribe from all %s where subscription is allowed?",
			plural(int64(forums), "forum", "forums"))
	case discussions > 0:
		return fmt.Sprintf("Do you really want to unsubscribe from %s?",
			plural(discussions, "discussion", "discussions"))
	}
	return ""
}

// user returns the signed-in non-guest account. Guests go home.
func (h *Handler) user(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	u, _ := auth.CurrentUser(r)
	if u.IsGuest() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return primitive.NilObjectID, false
	}
	id, err := forumctx.UserID(u)
	if err != nil {
		h.ErrLog.RenderDomainError(w, r, "session user", err, "/")
		return primitive.NilObjectID, false
	}
	return id, true
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /twf/unsubscribeall                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeConfirm(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	forums, discussions, err := h.St.Subs.Counts(r.Context(), userID)
	if err != nil {
		h.ErrLog.RenderDomainError(w, r, "count subscriptions failed", err, "/")
		return
	}

	vm := confirmVM{
		BaseVM:  viewdata.NewBaseVM(w, r, h.SM, "Unsubscribe from all forums", "/"),
		Message: confirmMessage(forums, discussions),
	}
	if vm.Message == "" {
		vm.Nothing = true
		vm.Message = "You are not subscribed to any forum or discussion you can leave."
	}
	h.Render(w, r, "unsubscribeall_confirm", vm)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /twf/unsubscribeall  confirm=                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleUnsubscribeAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", pagePath)
		return
	}
	if !inputval.IsTruthy(r.PostFormValue("confirm")) {
		http.Redirect(w, r, pagePath, http.StatusSeeOther)
		return
	}

	res, err := h.St.Subs.UnsubscribeAll(r.Context(), userID)
	if err != nil {
		if res.Forums == 0 && res.Discussions == 0 {
			h.ErrLog.RenderDomainError(w, r, "unsubscribe all failed", err, pagePath)
			return
		}
		h.Log.Warn("unsubscribe all partly failed",
			zap.String("user_id", userID.Hex()),
			zap.Int("failed", res.Failed),
			zap.Error(err))
	}
	h.Log.Info("unsubscribed from all",
		zap.String("user_id", userID.Hex()),
		zap.Int("forums", res.Forums),
		zap.Int64("discussions", res.Discussions))

	vm := resultVM{
		BaseVM:      viewdata.NewBaseVM(w, r, h.SM, "Unsubscribed", "/"),
		Forums:      res.Forums,
		Discussions: res.Discussions,
		Failed:      res.Failed,
		Message: fmt.Sprintf("You were unsubscribed from %s and %s.",
			plural(int64(res.Forums), "forum", "forums"), plural(res.Discussions, "discussion", "discussions")),
	}
	if err != nil && res.Failed == 0 {
		// discussion cleanup or the autosubscribe preference failed
		vm.Failed = 1
	}
	h.Render(w, r, "unsubscribeall_result", vm)
}
