// internal/app/features/forumview/forumview.go
package forumview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	uierrors "github.com/dalemusser/twfhub/internal/app/features/errors"
	"github.com/dalemusser/twfhub/internal/app/policy/capability"
	"github.com/dalemusser/twfhub/internal/app/services/readtracking"
	"github.com/dalemusser/twfhub/internal/app/services/subscriptions"
	"github.com/dalemusser/twfhub/internal/app/system/auth"
	"github.com/dalemusser/twfhub/internal/app/system/forumctx"
	"github.com/dalemusser/twfhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/twfhub/internal/app/system/inputval"
	"github.com/dalemusser/twfhub/internal/app/system/viewdata"
	"github.com/dalemusser/twfhub/internal/domain/models"
	"github.com/dalemusser/twfhub/internal/domain/twferr"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const dateLayout = "2 Jan 2006, 15:04"

func markURL(forumID primitive.ObjectID, mark string, d *primitive.ObjectID, returnPage string) string {
	q := url.Values{"f": {forumID.Hex()}, "mark": {mark}, "returnpage": {returnPage}}
	if d != nil {
		q.Set("d", d.Hex())
	}
	return "/twf/markposts?" + q.Encode()
}

// tracking works out the toggle state. Forced tracking with the site
// override on cannot be turned off.
func (h *Handler) tracking(ctx context.Context, rd readtracking.Reader, forum models.Forum, returnPage, csrfToken string) (trackingState, error) {
	ts := trackingState{ForumID: forum.ID.Hex(), ReturnPage: returnPage, CSRF: csrfToken}
	if !h.St.Reading.CanTrack(rd, forum) {
		return ts, nil
	}
	tracked, err := h.St.Reading.IsTracked(ctx, rd, forum)
	if err != nil {
		return ts, err
	}
	ts.Tracked = tracked
	ts.Toggle = !(forum.TrackingType == models.TrackingForced && h.St.Reading.Config().AllowForcedReadTracking)
	return ts, nil
}

// canView checks viewdiscussion and, for hidden modules, viewhiddenactivities.
func (h *Handler) canView(ctx context.Context, userID primitive.ObjectID, cm models.CourseModule) (bool, error) {
	caps := capability.Context{CourseID: cm.CourseID, ModuleID: cm.ID}
	ok, err := h.St.Caps.HasCapability(ctx, userID, capability.ViewDiscussion, caps)
	if err != nil || !ok {
		return false, err
	}
	if cm.Visible {
		return true, nil
	}
	return h.St.Caps.HasCapability(ctx, userID, capability.ViewHiddenActivities, caps)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /twf/forum/{id}                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeForum(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	forumID, err := inputval.ParseObjectID(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderBadRequest(w, r, "Forum is not a valid id.", "/")
		return
	}
	fc, err := h.St.ForumCtx.Resolve(ctx, forumID)
	if err != nil {
		h.ErrLog.RenderDomainError(w, r, "resolve forum failed", err, "/")
		return
	}
	courseURL := forumctx.CourseURL(fc.Course.ID)

	u, _ := auth.CurrentUser(r)
	rd, err := forumctx.Reader(u)
	if err != nil {
		h.ErrLog.RenderDomainError(w, r, "session user", err, courseURL)
		return
	}
	ok, err := h.canView(ctx, rd.ID, fc.Module)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "capability check failed", err, "A database error occurred.", courseURL)
		return
	}
	if !ok {
		if rd.Guest {
			h.Render(w, r, "login_prompt", viewdata.LoginPrompt(w, r, h.SM,
				"This forum is only open to course participants.", forumctx.ForumURL(fc.Forum.ID), "/"))
			return
		}
		h.ErrLog.RenderDomainError(w, r, "view forum denied", twferr.ErrUnauthorized, courseURL)
		return
	}

	groups, err := h.Groups.Current(w, r, rd.ID, fc.Module)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "resolve active group failed", err, "A database error occurred.", courseURL)
		return
	}
	ts, err := h.tracking(ctx, rd, fc.Forum, inputval.ReturnView, csrf.Token(r))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "check tracking failed", err, "A database error occurred.", courseURL)
		return
	}
	subscribed, err := h.St.Subs.IsSubscribed(ctx, rd.ID, fc.Forum, nil)
	if err != nil {
		h.ErrLog.RenderDomainError(w, r, "check subscription failed", err, courseURL)
		return
	}
	viewSubs, err := h.St.Caps.HasCapability(ctx, rd.ID, capability.ViewSubscribers, fc.Caps())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "capability check failed", err, "A database error occurred.", courseURL)
		return
	}

	discussions, err := h.St.Discussions.ListByForum(ctx, fc.Forum.ID, groups.Active)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list discussions failed", err, "A database error occurred.", courseURL)
		return
	}
	unread := map[primitive.ObjectID]int{}
	if ts.Tracked {
		ids := make([]primitive.ObjectID, 0, len(discussions))
		for _, d := range discussions {
			ids = append(ids, d.ID)
		}
		if unread, err = h.St.Reading.UnreadCounts(ctx, rd, ids); err != nil {
			h.ErrLog.LogServerError(w, r, "count unread posts failed", err, "A database error occurred.", courseURL)
			return
		}
	}

	vm := forumVM{
		BaseVM:         viewdata.NewBaseVM(w, r, h.SM, fc.Forum.Name, courseURL),
		ForumID:        fc.Forum.ID.Hex(),
		ForumName:      fc.Forum.Name,
		CourseName:     fc.Course.FullName,
		CourseURL:      courseURL,
		Intro:          htmlsanitize.Intro(fc.Forum.Intro),
		Hidden:         !fc.Module.Visible,
		Tracking:       ts,
		Subscribed:     subscribed,
		Forced:         subscriptions.IsForceSubscribed(fc.Forum),
		CanViewSubs:    viewSubs,
		SubscribersURL: "/twf/subscribers?id=" + fc.Forum.ID.Hex(),
		GroupOptions:   groups.Choices(),
	}
	if ts.Tracked {
		vm.MarkAllReadURL = markURL(fc.Forum.ID, "read", nil, inputval.ReturnView)
	}
	for _, d := range discussions {
		row := discussionRow{
			ID:       d.ID.Hex(),
			Name:     d.Name,
			Modified: d.TimeModified.Format(dateLayout),
			Unread:   unread[d.ID],
		}
		if ts.Tracked {
			id := d.ID
			if row.Unread > 0 {
				row.MarkURL, row.MarkLabel = markURL(fc.Forum.ID, "read", &id, inputval.ReturnView), "Mark read"
			} else {
				row.MarkURL, row.MarkLabel = markURL(fc.Forum.ID, "unread", &id, inputval.ReturnView), "Mark unread"
			}
		}
		vm.UnreadTotal += row.Unread
		vm.Discussions = append(vm.Discussions, row)
	}
	h.Render(w, r, "forum_view", vm)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /twf/course/{id}                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courseID, err := inputval.ParseObjectID(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderBadRequest(w, r, "Course is not a valid id.", "/")
		return
	}
	course, err := h.St.Courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			err = fmt.Errorf("course %s: %w", courseID.Hex(), twferr.ErrNotFound)
		}
		h.ErrLog.RenderDomainError(w, r, "load course failed", err, "/")
		return
	}

	u, _ := auth.CurrentUser(r)
	rd, err := forumctx.Reader(u)
	if err != nil {
		h.ErrLog.RenderDomainError(w, r, "session user", err, "/")
		return
	}

	forums, err := h.St.Forums.ListByCourse(ctx, course.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list forums failed", err, "A database error occurred.", "/")
		return
	}
	modules, err := h.St.Modules.ListByCourse(ctx, course.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list course modules failed", err, "A database error occurred.", "/")
		return
	}

	vm := courseVM{
		BaseVM:     viewdata.NewBaseVM(w, r, h.SM, "Forums in "+course.FullName, "/"),
		CourseName: course.FullName,
	}
	for _, f := range forums {
		cm, ok := modules[f.ID]
		if !ok {
			continue
		}
		row, visible, err := h.forumRow(w, r, rd, f, cm)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "build forum row failed", err, "A database error occurred.", "/")
			return
		}
		if visible {
			vm.Forums = append(vm.Forums, row)
		}
	}
	if len(vm.Forums) == 0 && len(forums) > 0 && rd.Guest {
		h.Render(w, r, "login_prompt", viewdata.LoginPrompt(w, r, h.SM,
			"These forums are only open to course participants.", forumctx.CourseURL(course.ID), "/"))
		return
	}
	h.Render(w, r, "course_index", vm)
}

// forumRow summarises one forum for the index. visible is false when the
// reader may not see it.
func (h *Handler) forumRow(w http.ResponseWriter, r *http.Request, rd readtracking.Reader, f models.Forum, cm models.CourseModule) (forumRow, bool, error) {
	ctx := r.Context()
	row := forumRow{
		ID:     f.ID.Hex(),
		Name:   f.Name,
		URL:    forumctx.ForumURL(f.ID),
		Hidden: !cm.Visible,
		Forced: subscriptions.IsForceSubscribed(f),
	}
	ok, err := h.canView(ctx, rd.ID, cm)
	if err != nil || !ok {
		return row, false, err
	}

	groups, err := h.Groups.Current(w, r, rd.ID, cm)
	if err != nil {
		return row, false, err
	}
	ids, err := h.St.Discussions.ListIDsByForum(ctx, f.ID, groups.Active)
	if err != nil {
		return row, false, err
	}
	row.Discussions = len(ids)

	if row.Tracking, err = h.tracking(ctx, rd, f, inputval.ReturnIndex, csrf.Token(r)); err != nil {
		return row, false, err
	}
	if row.Tracking.Tracked {
		counts, err := h.St.Reading.UnreadCounts(ctx, rd, ids)
		if err != nil {
			return row, false, err
		}
		for _, n := range counts {
			row.Unread += n
		}
		if row.Unread > 0 {
			row.MarkReadURL = markURL(f.ID, "read", nil, inputval.ReturnIndex)
		}
	}
	if row.Subscribed, err = h.St.Subs.IsSubscribed(ctx, rd.ID, f, nil); err != nil {
		return row, false, err
	}
	return row, true, nil
}
