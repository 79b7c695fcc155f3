// internal/app/features/markposts/markposts.go
package markposts

import (
	"net/http"

	uierrors "github.com/dalemusser/twfhub/internal/app/features/errors"
	"github.com/dalemusser/twfhub/internal/app/policy/capability"
	"github.com/dalemusser/twfhub/internal/app/system/auth"
	"github.com/dalemusser/twfhub/internal/app/system/forumctx"
	"github.com/dalemusser/twfhub/internal/app/system/inputval"
	"github.com/dalemusser/twfhub/internal/app/system/viewdata"
	"github.com/dalemusser/twfhub/internal/domain/twferr"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

type markInput struct {
	Forum      string `validate:"required,objectid" label:"Forum"`
	Mark       string `validate:"required,oneof=read unread" label:"Mark"`
	Discussion string `validate:"omitempty,objectid" label:"Discussion"`
	ReturnPage string `validate:"returnpage" label:"Return page"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /twf/markposts?f=&mark=read|unread[&d=][&returnpage=]                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeMarkPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	in := markInput{
		Forum:      query.Get(r, "f"),
		Mark:       query.Get(r, "mark"),
		Discussion: query.Get(r, "d"),
		ReturnPage: query.Get(r, "returnpage"),
	}
	if res := inputval.Validate(in); res.HasErrors() {
		uierrors.RenderBadRequest(w, r, res.First(), "/")
		return
	}
	forumID, _ := inputval.ParseObjectID(in.Forum)
	discussionID, _ := inputval.ParseOptionalObjectID(in.Discussion)

	fc, err := h.St.ForumCtx.Resolve(ctx, forumID)
	if err != nil {
		h.ErrLog.RenderDomainError(w, r, "resolve forum failed", err, "/")
		return
	}
	returnTo := fc.ReturnURL(inputval.ReturnPage(in.ReturnPage))

	u, _ := auth.CurrentUser(r)
	if u.IsGuest() {
		h.Render(w, r, "login_prompt", viewdata.LoginPrompt(w, r, h.SM,
			"Guests cannot mark posts as read. Log in with your own account to keep track of what you have read.",
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

	// Nothing to record for readers without tracking.
	if !h.St.Reading.CanTrack(rd, fc.Forum) {
		http.Redirect(w, r, returnTo, http.StatusSeeOther)
		return
	}

	switch {
	case in.Mark == "read" && discussionID != nil:
		err = h.St.Reading.MarkDiscussionRead(ctx, rd, fc.Forum, *discussionID)
	case in.Mark == "read":
		st, gerr := h.Groups.Current(w, r, rd.ID, fc.Module)
		if gerr != nil {
			h.ErrLog.LogServerError(w, r, "resolve active group failed", gerr, "A database error occurred.", returnTo)
			return
		}
		var n int
		n, err = h.St.Reading.MarkForumRead(ctx, rd, fc.Forum, st.Active)
		if err == nil {
			h.Log.Debug("forum marked read",
				zap.String("forum_id", fc.Forum.ID.Hex()),
				zap.String("user_id", rd.ID.Hex()),
				zap.Int("discussions", n))
		}
	case discussionID != nil:
		err = h.St.Reading.MarkDiscussionUnread(ctx, rd, fc.Forum, *discussionID)
	default:
		uierrors.RenderBadRequest(w, r, "Marking posts unread needs a discussion.", returnTo)
		return
	}
	if err != nil {
		h.ErrLog.RenderDomainError(w, r, "mark posts failed", err, returnTo)
		return
	}
	http.Redirect(w, r, returnTo, http.StatusSeeOther)
}
