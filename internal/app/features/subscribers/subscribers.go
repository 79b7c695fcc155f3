// internal/app/features/subscribers/subscribers.go
package subscribers

import (
	"fmt"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/twfhub/internal/app/features/errors"
	"github.com/dalemusser/twfhub/internal/app/policy/capability"
	"github.com/dalemusser/twfhub/internal/app/policy/visibility"
	"github.com/dalemusser/twfhub/internal/app/services/subscriptions"
	"github.com/dalemusser/twfhub/internal/app/system/auth"
	"github.com/dalemusser/twfhub/internal/app/system/forumctx"
	"github.com/dalemusser/twfhub/internal/app/system/groupscope"
	"github.com/dalemusser/twfhub/internal/app/system/inputval"
	"github.com/dalemusser/twfhub/internal/app/system/viewdata"
	"github.com/dalemusser/twfhub/internal/domain/models"
	"github.com/dalemusser/twfhub/internal/domain/twferr"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// editingKey holds the "currently editing subscribers" flag. It lives in
// the session only; it is never a user preference.
const editingKey = "subscriptions_editing"

func pageURL(forumID primitive.ObjectID) string {
	return "/twf/subscribers?id=" + forumID.Hex()
}

// page is the request context shared by GET and POST.
type page struct {
	fc        forumctx.Context
	userID    primitive.ObjectID
	canManage bool
	groups    groupscope.State
}

// load validates id, resolves the forum and checks viewsubscribers.
// It writes the response itself and returns false when the request ends.
func (h *Handler) load(w http.ResponseWriter, r *http.Request, rawID string) (page, bool) {
	ctx := r.Context()
	var p page

	if !inputval.IsValidObjectID(rawID) {
		uierrors.RenderBadRequest(w, r, "Forum is not a valid id.", "/")
		return p, false
	}
	forumID, _ := inputval.ParseObjectID(rawID)
	fc, err := h.St.ForumCtx.Resolve(ctx, forumID)
	if err != nil {
		h.ErrLog.RenderDomainError(w, r, "resolve forum failed", err, "/")
		return p, false
	}
	p.fc = fc
	back := forumctx.ForumURL(fc.Forum.ID)

	u, _ := auth.CurrentUser(r)
	if u.IsGuest() {
		h.Render(w, r, "login_prompt", viewdata.LoginPrompt(w, r, h.SM,
			"Guests cannot view or change forum subscribers.", pageURL(fc.Forum.ID), back))
		return p, false
	}
	if p.userID, err = forumctx.UserID(u); err != nil {
		h.ErrLog.RenderDomainError(w, r, "session user", err, back)
		return p, false
	}

	ok, err := h.St.Caps.HasCapability(ctx, p.userID, capability.ViewSubscribers, fc.Caps())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "capability check failed", err, "A database error occurred.", back)
		return p, false
	}
	if !ok {
		h.ErrLog.RenderDomainError(w, r, "view subscribers denied", twferr.ErrUnauthorized, back)
		return p, false
	}

	manage, err := h.St.Caps.HasCapability(ctx, p.userID, capability.ManageSubscriptions, fc.Caps())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "capability check failed", err, "A database error occurred.", back)
		return p, false
	}
	p.canManage = manage && !subscriptions.IsForceSubscribed(fc.Forum)

	if p.groups, err = h.Groups.Current(w, r, p.userID, fc.Module); err != nil {
		h.ErrLog.LogServerError(w, r, "resolve active group failed", err, "A database error occurred.", back)
		return p, false
	}
	return p, true
}

// editing applies an explicit edit=0/1 and returns the effective flag.
// Users who cannot manage subscriptions are never editing.
func (h *Handler) editing(w http.ResponseWriter, r *http.Request, canManage bool) bool {
	sess, _ := h.SM.GetSession(r)
	current, _ := sess.Values[editingKey].(bool)
	next := current

	if !canManage {
		next = false
	} else if raw := query.Get(r, "edit"); raw != "" {
		next = inputval.IsTruthy(raw)
	}
	if next != current {
		sess.Values[editingKey] = next
		if err := sess.Save(r, w); err != nil {
			h.Log.Warn("save editing flag failed", zap.Error(err))
		}
	}
	return next
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /twf/subscribers?id=[&group=][&edit=][&search=]                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeSubscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, ok := h.load(w, r, query.Get(r, "id"))
	if !ok {
		return
	}
	fc := p.fc
	back := forumctx.ForumURL(fc.Forum.ID)

	h.Audit.SubscribersViewed(ctx, r, p.userID, fc.Course.ID, fc.Forum.ID, p.groups.Active)

	editing := h.editing(w, r, p.canManage)
	vm := subscribersVM{
		BaseVM:       viewdata.NewBaseVM(w, r, h.SM, "Subscribers of "+fc.Forum.Name, back),
		ForumID:      fc.Forum.ID.Hex(),
		ForumName:    fc.Forum.Name,
		CourseName:   fc.Course.FullName,
		ForumURL:     back,
		Forced:       subscriptions.IsForceSubscribed(fc.Forum),
		CanManage:    p.canManage,
		Editing:      editing,
		GroupOptions: p.groups.Choices(),
	}

	if !editing {
		users, err := h.St.Subs.FetchSubscribedUsers(ctx, fc.Forum, p.groups.Active, fc.Caps())
		if err != nil {
			h.ErrLog.RenderDomainError(w, r, "fetch subscribers failed", err, back)
			return
		}
		if vm.Forced {
			viewers, err := h.St.Caps.UsersWithCapability(ctx, capability.ViewHiddenActivities, fc.Caps())
			if err != nil {
				h.ErrLog.LogServerError(w, r, "list hidden activity viewers failed", err, "A database error occurred.", back)
				return
			}
			users = visibility.FilterHiddenUsers(fc.Module.Visible, viewers, users)
		}
		vm.Subscribers = rows(users)
		h.Render(w, r, "subscribers", vm)
		return
	}

	vm.Search = strings.TrimSpace(query.Get(r, "search"))
	existing, err := h.St.Subs.FetchSubscribedUsers(ctx, fc.Forum, p.groups.Active, fc.Caps())
	if err != nil {
		h.ErrLog.RenderDomainError(w, r, "fetch subscribers failed", err, back)
		return
	}
	potential, err := h.St.Subs.PotentialSubscribers(ctx, fc.Forum, p.groups.Active, fc.Caps(), vm.Search)
	if err != nil {
		h.ErrLog.RenderDomainError(w, r, "fetch potential subscribers failed", err, back)
		return
	}
	vm.Existing = rows(existing)
	vm.Potential = rows(potential)
	h.Render(w, r, "subscribers", vm)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /twf/subscribers  id=&subscribe|unsubscribe&addselect[]|removeselect[]  |
*─────────────────────────────────────────────────────────────────────────────*/

// selected parses the submitted ids and keeps the ones present in allowed.
// A malformed id rejects the whole submission.
func selected(raw []string, allowed []models.User) ([]primitive.ObjectID, error) {
	ok := make(map[primitive.ObjectID]struct{}, len(allowed))
	for _, u := range allowed {
		ok[u.ID] = struct{}{}
	}
	var out []primitive.ObjectID
	seen := make(map[primitive.ObjectID]struct{}, len(raw))
	for _, s := range raw {
		id, err := inputval.ParseObjectID(s)
		if err != nil {
			return nil, fmt.Errorf("selected user %q: %w", s, err)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, valid := ok[id]; valid {
			out = append(out, id)
		}
	}
	return out, nil
}

// pressed reports whether a submit button was sent. Buttons carry their
// label as value; explicit false values count as not pressed.
func pressed(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "off", "no":
		return false
	}
	return true
}

func formList(r *http.Request, name string) []string {
	if vs := r.PostForm[name+"[]"]; len(vs) > 0 {
		return vs
	}
	return r.PostForm[name]
}

func (h *Handler) HandleSubscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/")
		return
	}
	p, ok := h.load(w, r, strings.TrimSpace(r.PostFormValue("id")))
	if !ok {
		return
	}
	fc := p.fc
	back := pageURL(fc.Forum.ID)

	subscribe := pressed(r.PostFormValue("subscribe"))
	unsubscribe := pressed(r.PostFormValue("unsubscribe"))
	if subscribe == unsubscribe {
		h.ErrLog.RenderDomainError(w, r, "subscribers form", twferr.ErrInvalidAction, back)
		return
	}
	if !p.canManage {
		h.ErrLog.RenderDomainError(w, r, "manage subscriptions denied", twferr.ErrUnauthorized, back)
		return
	}

	var (
		allowed []models.User
		raw     []string
		err     error
	)
	if subscribe {
		allowed, err = h.St.Subs.PotentialSubscribers(ctx, fc.Forum, p.groups.Active, fc.Caps(), "")
		raw = formList(r, "addselect")
	} else {
		allowed, err = h.St.Subs.FetchSubscribedUsers(ctx, fc.Forum, p.groups.Active, fc.Caps())
		raw = formList(r, "removeselect")
	}
	if err != nil {
		h.ErrLog.RenderDomainError(w, r, "load selectable users failed", err, back)
		return
	}
	ids, err := selected(raw, allowed)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad selected user", err, "One of the selected users is not valid.", back)
		return
	}

	for _, id := range ids {
		if subscribe {
			err = h.St.Subs.SubscribeUser(ctx, id, fc.Forum, false)
		} else {
			err = h.St.Subs.UnsubscribeUser(ctx, id, fc.Forum, false)
		}
		if err != nil {
			h.ErrLog.RenderDomainError(w, r, "change subscriber failed", err, back)
			return
		}
	}

	verb := "Subscribed"
	if unsubscribe {
		verb = "Unsubscribed"
	}
	h.Log.Info("subscribers changed",
		zap.String("forum_id", fc.Forum.ID.Hex()),
		zap.String("user_id", p.userID.Hex()),
		zap.Bool("subscribe", subscribe),
		zap.Int("users", len(ids)))
	h.SM.AddFlash(w, r, fmt.Sprintf("%s %d %s.", verb, len(ids), plural(len(ids), "user", "users")))
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
