package login_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/twfhub/internal/app/features/errors"
	"github.com/dalemusser/twfhub/internal/app/features/login"
	"github.com/dalemusser/twfhub/internal/app/store/audit"
	"github.com/dalemusser/twfhub/internal/app/system/auditlog"
	"github.com/dalemusser/twfhub/internal/app/system/authutil"
	"github.com/dalemusser/twfhub/internal/domain/models"
	"github.com/dalemusser/twfhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type env struct {
	h      *login.Handler
	fx     *testutil.Fixtures
	db     *mongo.Database
	audit  *audit.Store
	render *testutil.RenderRecorder
}

func newTestHandler(t *testing.T) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	store := audit.New(db)
	events := auditlog.New(store, logger, auditlog.Config{Auth: "db", Twf: "db"})

	handler := login.NewHandler(db, testutil.NewSessionManager(t), events, uierrors.NewErrorLogger(logger), logger)
	rr := testutil.NewRenderRecorder()
	handler.Render = rr.Render
	return env{h: handler, fx: testutil.NewFixtures(t, db), db: db, audit: store, render: rr}
}

func post(e env, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	e.h.HandleLoginPost(rec, req)
	return rec
}

func hasSessionCookie(rec *httptest.ResponseRecorder) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			return true
		}
	}
	return false
}

func (e env) events(t *testing.T, eventType string) int64 {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, err := e.audit.CountByFilter(ctx, audit.QueryFilter{EventType: eventType})
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestHandleLoginPost_Trust(t *testing.T) {
	e := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fx.CreateSiteUser(ctx, "Tess Trust", "tess")

	rec := post(e, url.Values{"loginid": {"TESS"}})

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Errorf("got %d to %q", rec.Code, rec.Header().Get("Location"))
	}
	if !hasSessionCookie(rec) {
		t.Error("expected session cookie to be set")
	}
	if n := e.events(t, audit.EventLoginSuccess); n != 1 {
		t.Errorf("login_success events = %d", n)
	}
}

func TestHandleLoginPost_ReturnURL(t *testing.T) {
	e := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fx.CreateSiteUser(ctx, "Tess Trust", "tess")

	tests := []struct {
		ret  string
		want string
	}{
		{"/twf/forum/abc", "/twf/forum/abc"},
		{"https://evil.example.com/", "/"},
	}
	for _, tt := range tests {
		rec := post(e, url.Values{"loginid": {"tess"}, "return": {tt.ret}})
		if got := rec.Header().Get("Location"); got != tt.want {
			t.Errorf("return %q: redirected to %q, want %q", tt.ret, got, tt.want)
		}
	}
}

func TestHandleLoginPost_Password(t *testing.T) {
	e := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := e.fx.CreateSiteUser(ctx, "Pat Password", "pat")
	hash, err := authutil.HashPassword("correct horse")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.db.Collection("users").UpdateByID(ctx, u.ID, map[string]any{
		"$set": map[string]any{"auth_method": "password", "password_hash": hash},
	}); err != nil {
		t.Fatal(err)
	}

	rec := post(e, url.Values{"loginid": {"pat"}, "password": {"wrong"}})
	if rec.Code != http.StatusOK || hasSessionCookie(rec) {
		t.Errorf("wrong password: status %d, cookie %v", rec.Code, hasSessionCookie(rec))
	}
	if !e.render.Last().Contains("Incorrect password") {
		t.Errorf("form data = %+v", e.render.Last().Data)
	}
	if n := e.events(t, audit.EventLoginFailedWrongPassword); n != 1 {
		t.Errorf("wrong password events = %d", n)
	}

	rec = post(e, url.Values{"loginid": {"pat"}, "password": {"correct horse"}})
	if rec.Code != http.StatusSeeOther {
		t.Errorf("right password: status %d", rec.Code)
	}
}

func TestHandleLoginPost_Guest(t *testing.T) {
	e := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	post(e, url.Values{"guest": {"1"}})
	if !e.render.Last().Contains("Guest access is not available") {
		t.Errorf("no guest account: %+v", e.render.Last().Data)
	}

	e.fx.CreateGuest(ctx)
	rec := post(e, url.Values{"guest": {"1"}, "return": {"/twf/course/x"}})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/twf/course/x" {
		t.Errorf("guest login: %d to %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestHandleLoginPost_Rejections(t *testing.T) {
	e := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := e.fx.CreateSiteUser(ctx, "Dee Disabled", "dee")
	if _, err := e.db.Collection("users").UpdateByID(ctx, u.ID, map[string]any{
		"$set": map[string]any{"status": models.StatusDisabled},
	}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		form  url.Values
		want  string
		event string
	}{
		{"empty", url.Values{}, "Please enter your login ID.", ""},
		{"unknown", url.Values{"loginid": {"nobody"}}, "No account found", audit.EventLoginFailedUserNotFound},
		{"disabled", url.Values{"loginid": {"dee"}}, "currently disabled", audit.EventLoginFailedUserDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(e, tt.form)
			if rec.Code != http.StatusOK || hasSessionCookie(rec) {
				t.Errorf("status %d, cookie %v", rec.Code, hasSessionCookie(rec))
			}
			if !e.render.Last().Contains(tt.want) {
				t.Errorf("form data %+v does not mention %q", e.render.Last().Data, tt.want)
			}
			if tt.event != "" && e.events(t, tt.event) != 1 {
				t.Errorf("expected one %s event", tt.event)
			}
		})
	}
}

func TestServeLogin_KeepsReturn(t *testing.T) {
	e := newTestHandler(t)
	rec := httptest.NewRecorder()
	e.h.ServeLogin(rec, httptest.NewRequest(http.MethodGet, "/login?return=%2Ftwf%2Funsubscribeall", nil))

	if !e.render.Last().Contains("/twf/unsubscribeall") {
		t.Errorf("return URL not carried: %+v", e.render.Last().Data)
	}
}
