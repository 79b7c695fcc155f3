package subscribers

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/dalemusser/twfhub/internal/app/store/audit"
	"github.com/dalemusser/twfhub/internal/domain/models"
	"github.com/dalemusser/twfhub/internal/testutil"
	"github.com/dalemusser/twfhub/internal/testutil/forumtest"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	env      *forumtest.Env
	h        *Handler
	course   models.Course
	forum    models.Forum
	cm       models.CourseModule
	editor   models.User // editingteacher
	teacher  models.User // teacher, cannot manage
	students []models.User
}

func setup(t *testing.T, opts testutil.ForumOptions) fixture {
	t.Helper()
	env := forumtest.New(t, forumtest.DefaultReading)
	ctx := env.Ctx
	course := env.Fx.CreateCourse(ctx, "History")
	forum, cm := env.Fx.CreateForum(ctx, course.ID, "Debates", opts)

	editor := env.Fx.CreateSiteUser(ctx, "Erin Editor", "erin")
	teacher := env.Fx.CreateSiteUser(ctx, "Theo Teacher", "theo")
	env.Fx.Enrol(ctx, course.ID, editor.ID, models.CourseRoleEditingTeacher)
	env.Fx.Enrol(ctx, course.ID, teacher.ID, models.CourseRoleTeacher)

	var students []models.User
	for _, name := range []string{"Ada", "Bea", "Cal"} {
		u := env.Fx.CreateSiteUser(ctx, name+" Student", strings.ToLower(name))
		env.Fx.Enrol(ctx, course.ID, u.ID, models.CourseRoleStudent)
		students = append(students, u)
	}

	h := NewHandler(env.Stack, env.Groups, env.SM, env.Events, env.ErrLog, env.Log)
	h.Render = env.Render.Render
	return fixture{env: env, h: h, course: course, forum: forum, cm: cm, editor: editor, teacher: teacher, students: students}
}

func (f fixture) get(t *testing.T, query string, u models.User, carry *testutil.ResponseRecorder) (*testutil.ResponseRecorder, subscribersVM) {
	t.Helper()
	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/twf/subscribers?id="+f.forum.ID.Hex()+query, testutil.FromModel(u))
	if carry != nil {
		req = testutil.CarryCookies(carry.Header(), req)
	}
	rec := testutil.NewRecorder()
	f.h.ServeSubscribers(rec, req)
	vm, _ := f.env.Render.Last().Data.(subscribersVM)
	return rec, vm
}

func (f fixture) post(form url.Values, u models.User) *testutil.ResponseRecorder {
	form.Set("id", f.forum.ID.Hex())
	rec := testutil.NewRecorder()
	f.h.HandleSubscribers(rec, testutil.NewFormRequest("/twf/subscribers", form.Encode(), testutil.FromModel(u)))
	return rec
}

func names(rs []userRow) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Name)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestOverview_ListsEnrolledSubscribers(t *testing.T) {
	f := setup(t, testutil.ForumOptions{})
	outsider := f.env.Fx.CreateSiteUser(f.env.Ctx, "Otto Outsider", "otto")
	f.env.Fx.Subscribe(f.env.Ctx, f.students[2].ID, f.forum.ID)
	f.env.Fx.Subscribe(f.env.Ctx, f.students[0].ID, f.forum.ID)
	f.env.Fx.Subscribe(f.env.Ctx, outsider.ID, f.forum.ID)

	rec, vm := f.get(t, "", f.teacher, nil)

	rec.AssertStatus(t, http.StatusOK)
	if got := names(vm.Subscribers); !equal(got, []string{"Ada Student", "Cal Student"}) {
		t.Errorf("subscribers = %v", got)
	}
	if vm.CanManage || vm.Editing {
		t.Errorf("teacher should not manage: %+v", vm)
	}
	if n := f.env.EventCount(t, audit.EventSubscribersViewed, f.forum.ID); n != 1 {
		t.Errorf("subscribers_viewed events = %d", n)
	}
}

func TestOverview_ForcedHiddenForumShowsOnlyHiddenViewers(t *testing.T) {
	f := setup(t, testutil.ForumOptions{SubscriptionMode: models.SubscriptionForced, Hidden: true})

	_, vm := f.get(t, "", f.teacher, nil)

	got := names(vm.Subscribers)
	if len(got) != 2 || !vm.Forced {
		t.Fatalf("subscribers = %v, forced = %v", got, vm.Forced)
	}
	for _, n := range got {
		if strings.Contains(n, "Student") {
			t.Errorf("student %s listed for a hidden forum", n)
		}
	}
}

func TestOverview_ForcedVisibleForumShowsEveryone(t *testing.T) {
	f := setup(t, testutil.ForumOptions{SubscriptionMode: models.SubscriptionForced})

	_, vm := f.get(t, "", f.teacher, nil)

	if len(vm.Subscribers) != 5 {
		t.Errorf("subscribers = %v, want all 5 enrolled users", names(vm.Subscribers))
	}
}

func TestOverview_GroupScope(t *testing.T) {
	f := setup(t, testutil.ForumOptions{GroupMode: models.GroupModeSeparate})
	red := f.env.Fx.CreateGroup(f.env.Ctx, f.course.ID, "Red")
	f.env.Fx.AddToGroup(f.env.Ctx, red, f.students[1].ID)
	for _, s := range f.students {
		f.env.Fx.Subscribe(f.env.Ctx, s.ID, f.forum.ID)
	}

	_, vm := f.get(t, "&group="+red.ID.Hex(), f.teacher, nil)

	if got := names(vm.Subscribers); !equal(got, []string{"Bea Student"}) {
		t.Errorf("subscribers = %v", got)
	}
	if len(vm.GroupOptions) != 2 || !vm.GroupOptions[1].Selected {
		t.Errorf("group options = %+v", vm.GroupOptions)
	}
}

func TestEditing_StoredInSessionForManagers(t *testing.T) {
	f := setup(t, testutil.ForumOptions{})
	f.env.Fx.Subscribe(f.env.Ctx, f.students[0].ID, f.forum.ID)

	rec, vm := f.get(t, "&edit=1", f.editor, nil)
	if !vm.Editing || !vm.CanManage {
		t.Fatalf("editor with edit=1: %+v", vm)
	}
	if got := names(vm.Existing); !equal(got, []string{"Ada Student"}) {
		t.Errorf("existing = %v", got)
	}
	if len(vm.Potential) != 4 {
		t.Errorf("potential = %v", names(vm.Potential))
	}

	// the flag survives a request without edit=
	_, vm = f.get(t, "&search=bea", f.editor, rec)
	if !vm.Editing {
		t.Fatal("editing flag not kept in the session")
	}
	if got := names(vm.Potential); !equal(got, []string{"Bea Student"}) {
		t.Errorf("search potential = %v", got)
	}
}

func TestEditing_RefusedWithoutManage(t *testing.T) {
	f := setup(t, testutil.ForumOptions{})
	_, vm := f.get(t, "&edit=1", f.teacher, nil)
	if vm.Editing {
		t.Error("teacher without managesubscriptions got the edit form")
	}

	g := setup(t, testutil.ForumOptions{SubscriptionMode: models.SubscriptionForced})
	_, vm = g.get(t, "&edit=1", g.editor, nil)
	if vm.Editing || vm.CanManage {
		t.Error("forced forum offered the edit form")
	}
}

func TestServeSubscribers_Denied(t *testing.T) {
	f := setup(t, testutil.ForumOptions{})
	rec, _ := f.get(t, "", f.students[0], nil)
	rec.AssertStatus(t, http.StatusForbidden)

	guest := f.env.Fx.CreateGuest(f.env.Ctx)
	rec, _ = f.get(t, "", guest, nil)
	rec.AssertStatus(t, http.StatusOK)
	if f.env.Render.Last().Name != "login_prompt" {
		t.Errorf("guest rendered %q", f.env.Render.Last().Name)
	}
}

func TestPost_InvalidActionChangesNothing(t *testing.T) {
	f := setup(t, testutil.ForumOptions{})
	target := f.students[0].ID.Hex()

	for name, form := range map[string]url.Values{
		"both":    {"subscribe": {"1"}, "unsubscribe": {"1"}, "addselect[]": {target}},
		"neither": {"addselect[]": {target}},
	} {
		t.Run(name, func(t *testing.T) {
			f.post(form, f.editor).AssertStatus(t, http.StatusBadRequest)
			ok, _ := f.env.Stack.Subscriptions.Exists(f.env.Ctx, f.students[0].ID, f.forum.ID)
			if ok {
				t.Error("invalid action created a subscription")
			}
		})
	}
}

func TestPost_SubscribeAndUnsubscribe(t *testing.T) {
	f := setup(t, testutil.ForumOptions{})
	outsider := f.env.Fx.CreateSiteUser(f.env.Ctx, "Otto Outsider", "otto")

	rec := f.post(url.Values{
		"subscribe":   {"Add"},
		"addselect[]": {f.students[0].ID.Hex(), f.students[1].ID.Hex(), outsider.ID.Hex()},
	}, f.editor)
	rec.AssertRedirect(t, "/twf/subscribers?id="+f.forum.ID.Hex())

	subs, _ := f.env.Stack.Subscriptions.ListUserIDsByForum(f.env.Ctx, f.forum.ID)
	if len(subs) != 2 {
		t.Fatalf("subscriptions = %d, want 2 (outsider ignored)", len(subs))
	}
	if n := f.env.EventCount(t, audit.EventSubscriptionCreated, f.forum.ID); n != 2 {
		t.Errorf("subscription_created events = %d", n)
	}

	rec = f.post(url.Values{"unsubscribe": {"Remove"}, "removeselect[]": {f.students[0].ID.Hex()}}, f.editor)
	rec.AssertStatus(t, http.StatusSeeOther)
	subs, _ = f.env.Stack.Subscriptions.ListUserIDsByForum(f.env.Ctx, f.forum.ID)
	if len(subs) != 1 || subs[0] != f.students[1].ID {
		t.Errorf("after removal subscriptions = %v", subs)
	}
}

func TestPost_Refusals(t *testing.T) {
	f := setup(t, testutil.ForumOptions{})
	form := func() url.Values {
		return url.Values{"subscribe": {"1"}, "addselect[]": {f.students[0].ID.Hex()}}
	}

	f.post(form(), f.teacher).AssertStatus(t, http.StatusForbidden)
	bad := form()
	bad.Set("addselect[]", "not-an-id")
	f.post(bad, f.editor).AssertStatus(t, http.StatusBadRequest)

	rec := testutil.NewRecorder()
	f.h.HandleSubscribers(rec, testutil.NewFormRequest("/twf/subscribers",
		url.Values{"id": {primitive.NewObjectID().Hex()}, "subscribe": {"1"}}.Encode(), testutil.FromModel(f.editor)))
	rec.AssertStatus(t, http.StatusNotFound)

	ok, _ := f.env.Stack.Subscriptions.Exists(f.env.Ctx, f.students[0].ID, f.forum.ID)
	if ok {
		t.Error("refused submissions created a subscription")
	}
}

func TestSelected(t *testing.T) {
	a, b := models.User{ID: primitive.NewObjectID()}, models.User{ID: primitive.NewObjectID()}
	ids, err := selected([]string{a.ID.Hex(), a.ID.Hex(), primitive.NewObjectID().Hex()}, []models.User{a, b})
	if err != nil || len(ids) != 1 || ids[0] != a.ID {
		t.Errorf("selected = %v, %v", ids, err)
	}
	if _, err := selected([]string{"12"}, nil); err == nil {
		t.Error("expected error for malformed id")
	}
}

func TestPressed(t *testing.T) {
	for v, want := range map[string]bool{"": false, "0": false, "false": false, "1": true, "Add": true, "→ Remove": true} {
		if got := pressed(v); got != want {
			t.Errorf("pressed(%q) = %v", v, got)
		}
	}
}
