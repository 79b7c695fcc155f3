// Package forumtest builds a complete forum environment over a test
// database for feature handler tests.
package forumtest

import (
	"context"
	"testing"

	uierrors "github.com/dalemusser/twfhub/internal/app/features/errors"
	"github.com/dalemusser/twfhub/internal/app/services/readtracking"
	"github.com/dalemusser/twfhub/internal/app/services/stack"
	"github.com/dalemusser/twfhub/internal/app/store/audit"
	"github.com/dalemusser/twfhub/internal/app/system/auditlog"
	"github.com/dalemusser/twfhub/internal/app/system/auth"
	"github.com/dalemusser/twfhub/internal/app/system/groupscope"
	"github.com/dalemusser/twfhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// DefaultReading is the read tracking configuration most tests run with.
var DefaultReading = readtracking.Config{TrackReadPosts: true, OldPostDays: 14}

type Env struct {
	Ctx    context.Context
	DB     *mongo.Database
	Fx     *testutil.Fixtures
	Stack  *stack.Stack
	SM     *auth.SessionManager
	Groups *groupscope.Resolver
	ErrLog *uierrors.ErrorLogger
	Audit  *audit.Store
	Events *auditlog.Logger
	Render *testutil.RenderRecorder
	Log    *zap.Logger
}

// New skips the test when MongoDB is unavailable. Error pages render
// into the same recorder as feature pages.
func New(t *testing.T, cfg readtracking.Config) *Env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	t.Cleanup(cancel)

	logger := zap.NewNop()
	auditStore := audit.New(db)
	events := auditlog.New(auditStore, logger, auditlog.Config{Auth: "db", Twf: "db"})
	st := stack.New(db, cfg, events)
	sm := testutil.NewSessionManager(t)

	rr := testutil.NewRenderRecorder()
	uierrors.UseRenderer(rr.Render)

	return &Env{
		Ctx:    ctx,
		DB:     db,
		Fx:     testutil.NewFixtures(t, db),
		Stack:  st,
		SM:     sm,
		Groups: groupscope.NewResolver(sm, st.Groups, st.Memberships, st.Caps, logger),
		ErrLog: uierrors.NewErrorLogger(logger),
		Audit:  auditStore,
		Events: events,
		Render: rr,
		Log:    logger,
	}
}

// EventCount counts stored audit events of one type for a forum.
func (e *Env) EventCount(t *testing.T, eventType string, forumID primitive.ObjectID) int64 {
	t.Helper()
	n, err := e.Audit.CountByFilter(e.Ctx, audit.QueryFilter{EventType: eventType, ForumID: &forumID})
	if err != nil {
		t.Fatalf("count audit events: %v", err)
	}
	return n
}
