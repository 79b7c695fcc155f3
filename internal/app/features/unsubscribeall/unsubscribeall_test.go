package unsubscribeall

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/dalemusser/twfhub/internal/app/store/audit"
	"github.com/dalemusser/twfhub/internal/domain/models"
	"github.com/dalemusser/twfhub/internal/testutil"
	"github.com/dalemusser/twfhub/internal/testutil/forumtest"
)

type fixture struct {
	env  *forumtest.Env
	h    *Handler
	user models.User
}

func setup(t *testing.T) fixture {
	t.Helper()
	env := forumtest.New(t, forumtest.DefaultReading)
	u := env.Fx.CreateSiteUser(env.Ctx, "Una User", "una")
	h := NewHandler(env.Stack, env.SM, env.ErrLog, env.Log)
	h.Render = env.Render.Render
	return fixture{env: env, h: h, user: u}
}

func (f fixture) get() *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	f.h.ServeConfirm(rec, testutil.NewAuthenticatedRequest(http.MethodGet, pagePath, testutil.FromModel(f.user)))
	return rec
}

func (f fixture) post(form url.Values) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	f.h.HandleUnsubscribeAll(rec, testutil.NewFormRequest(pagePath, form.Encode(), testutil.FromModel(f.user)))
	return rec
}

func TestConfirmMessage(t *testing.T) {
	tests := []struct {
		name        string
		forums      int
		discussions int64
		want        string
	}{
		{"both", 2, 1, "You are subscribed to 2 forums and 1 discussion. Do you really want to unsubscribe from all of them?"},
		{"forums only", 1, 0, "Do you really want to unsubscribe from all 1 forum where subscription is allowed?"},
		{"discussions only", 0, 3, "Do you really want to unsubscribe from 3 discussions?"},
		{"nothing", 0, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := confirmMessage(tt.forums, tt.discussions); got != tt.want {
				t.Errorf("confirmMessage(%d, %d) = %q, want %q", tt.forums, tt.discussions, got, tt.want)
			}
		})
	}
}

func TestServeConfirm_CountsLeavableSubscriptions(t *testing.T) {
	f := setup(t)
	ctx := f.env.Ctx
	course := f.env.Fx.CreateCourse(ctx, "Art")
	open, _ := f.env.Fx.CreateForum(ctx, course.ID, "Open", testutil.ForumOptions{})
	forced, _ := f.env.Fx.CreateForum(ctx, course.ID, "News", testutil.ForumOptions{SubscriptionMode: models.SubscriptionForced})
	f.env.Fx.Subscribe(ctx, f.user.ID, open.ID)
	f.env.Fx.Subscribe(ctx, f.user.ID, forced.ID)
	d := f.env.Fx.CreateDiscussion(ctx, forced, "Term dates", nil)
	f.env.Fx.SetDiscussionPreference(ctx, f.user.ID, d, models.DiscussionSubscribed)

	f.get().AssertStatus(t, http.StatusOK)

	last := f.env.Render.Last()
	vm, ok := last.Data.(confirmVM)
	if last.Name != "unsubscribeall_confirm" || !ok {
		t.Fatalf("rendered %q with %T", last.Name, last.Data)
	}
	want := "You are subscribed to 1 forum and 1 discussion. Do you really want to unsubscribe from all of them?"
	if vm.Nothing || vm.Message != want {
		t.Errorf("confirm = %+v", vm)
	}
}

func TestServeConfirm_Nothing(t *testing.T) {
	f := setup(t)
	f.get().AssertStatus(t, http.StatusOK)
	vm := f.env.Render.Last().Data.(confirmVM)
	if !vm.Nothing {
		t.Errorf("expected nothing to unsubscribe, got %q", vm.Message)
	}
}

func TestHandleUnsubscribeAll(t *testing.T) {
	f := setup(t)
	ctx := f.env.Ctx
	course := f.env.Fx.CreateCourse(ctx, "Art")
	a, _ := f.env.Fx.CreateForum(ctx, course.ID, "Painting", testutil.ForumOptions{})
	b, _ := f.env.Fx.CreateForum(ctx, course.ID, "Sculpture", testutil.ForumOptions{})
	forced, _ := f.env.Fx.CreateForum(ctx, course.ID, "News", testutil.ForumOptions{SubscriptionMode: models.SubscriptionForced})
	for _, fm := range []models.Forum{a, b, forced} {
		f.env.Fx.Subscribe(ctx, f.user.ID, fm.ID)
	}
	d := f.env.Fx.CreateDiscussion(ctx, a, "Oils", nil)
	f.env.Fx.SetDiscussionPreference(ctx, f.user.ID, d, models.DiscussionSubscribed)
	if err := f.env.Stack.Users.SetAutoSubscribe(ctx, f.user.ID, true); err != nil {
		t.Fatal(err)
	}

	f.post(url.Values{"confirm": {"1"}}).AssertStatus(t, http.StatusOK)

	vm, ok := f.env.Render.Last().Data.(resultVM)
	if !ok {
		t.Fatalf("rendered %q", f.env.Render.Last().Name)
	}
	if vm.Forums != 2 || vm.Discussions != 1 || vm.Failed != 0 {
		t.Errorf("result = %+v", vm)
	}
	left, _ := f.env.Stack.Subscriptions.ListForumIDsByUser(ctx, f.user.ID)
	if len(left) != 1 || left[0] != forced.ID {
		t.Errorf("remaining subscriptions = %v, want only the forced forum", left)
	}
	u, err := f.env.Stack.Users.GetByID(ctx, f.user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if u.AutoSubscribe {
		t.Error("autosubscribe still on")
	}
	n, err := f.env.Audit.CountByFilter(ctx, audit.QueryFilter{EventType: audit.EventUnsubscribedAll})
	if err != nil || n != 1 {
		t.Errorf("unsubscribed_all events = %d, %v", n, err)
	}
}

func TestHandleUnsubscribeAll_NeedsConfirm(t *testing.T) {
	f := setup(t)
	course := f.env.Fx.CreateCourse(f.env.Ctx, "Art")
	a, _ := f.env.Fx.CreateForum(f.env.Ctx, course.ID, "Painting", testutil.ForumOptions{})
	f.env.Fx.Subscribe(f.env.Ctx, f.user.ID, a.ID)

	f.post(url.Values{}).AssertRedirect(t, pagePath)

	ok, _ := f.env.Stack.Subscriptions.Exists(f.env.Ctx, f.user.ID, a.ID)
	if !ok {
		t.Error("subscription removed without confirmation")
	}
}

func TestGuestGoesHome(t *testing.T) {
	f := setup(t)
	f.user = f.env.Fx.CreateGuest(f.env.Ctx)

	f.get().AssertRedirect(t, "/")
	f.post(url.Values{"confirm": {"1"}}).AssertRedirect(t, "/")
}
