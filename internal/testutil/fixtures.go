package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/twfhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert into %s: %v", coll, err)
	}
}

// CreateCourse creates a test course.
func (f *Fixtures) CreateCourse(ctx context.Context, name string) models.Course {
	f.t.Helper()
	c := models.Course{
		ID:        primitive.NewObjectID(),
		FullName:  name,
		ShortName: name,
		CreatedAt: time.Now().UTC(),
	}
	f.insert(ctx, "courses", c)
	return c
}

// ForumOptions controls the forum and module created by CreateForum.
// Zero values mean optional tracking, optional subscription, a visible
// module and no group mode.
type ForumOptions struct {
	TrackingType     string
	SubscriptionMode string
	Hidden           bool
	GroupMode        string
}

// CreateForum creates a forum and its course module.
func (f *Fixtures) CreateForum(ctx context.Context, courseID primitive.ObjectID, name string, opts ForumOptions) (models.Forum, models.CourseModule) {
	f.t.Helper()
	if opts.TrackingType == "" {
		opts.TrackingType = models.TrackingOptional
	}
	if opts.SubscriptionMode == "" {
		opts.SubscriptionMode = models.SubscriptionOptional
	}
	if opts.GroupMode == "" {
		opts.GroupMode = models.GroupModeNone
	}

	now := time.Now().UTC()
	forum := models.Forum{
		ID:               primitive.NewObjectID(),
		CourseID:         courseID,
		Name:             name,
		Intro:            "<p>About " + name + "</p>",
		TrackingType:     opts.TrackingType,
		SubscriptionMode: opts.SubscriptionMode,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	f.insert(ctx, "forums", forum)

	cm := models.CourseModule{
		ID:        primitive.NewObjectID(),
		CourseID:  courseID,
		ForumID:   forum.ID,
		Visible:   !opts.Hidden,
		GroupMode: opts.GroupMode,
	}
	f.insert(ctx, "course_modules", cm)
	return forum, cm
}

// CreateUser creates a test user. Tracking is on by default.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, loginID, role string) models.User {
	f.t.Helper()
	now := time.Now().UTC()
	u := models.User{
		ID:          primitive.NewObjectID(),
		FullName:    fullName,
		FullNameCI:  text.Fold(fullName),
		LoginID:     loginID,
		LoginIDCI:   text.Fold(loginID),
		Role:        role,
		Status:      "active",
		AuthMethod:  "trust",
		TrackForums: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateSiteUser creates an ordinary site user.
func (f *Fixtures) CreateSiteUser(ctx context.Context, fullName, loginID string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, loginID, models.RoleUser)
}

// CreateGuest creates the guest account.
func (f *Fixtures) CreateGuest(ctx context.Context) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, "Guest user", "guest", models.RoleGuest)
}

// Enrol enrols a user in a course with the given course role.
func (f *Fixtures) Enrol(ctx context.Context, courseID, userID primitive.ObjectID, role string) {
	f.t.Helper()
	f.insert(ctx, "enrolments", models.Enrolment{
		ID:        primitive.NewObjectID(),
		CourseID:  courseID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	})
}

// CreateGroup creates a course group.
func (f *Fixtures) CreateGroup(ctx context.Context, courseID primitive.ObjectID, name string) models.CourseGroup {
	f.t.Helper()
	g := models.CourseGroup{
		ID:        primitive.NewObjectID(),
		CourseID:  courseID,
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: time.Now().UTC(),
	}
	f.insert(ctx, "course_groups", g)
	return g
}

// AddToGroup makes a user a member of a course group.
func (f *Fixtures) AddToGroup(ctx context.Context, g models.CourseGroup, userID primitive.ObjectID) {
	f.t.Helper()
	f.insert(ctx, "group_memberships", models.GroupMembership{
		ID:        primitive.NewObjectID(),
		GroupID:   g.ID,
		UserID:    userID,
		CourseID:  g.CourseID,
		CreatedAt: time.Now().UTC(),
	})
}

// CreateDiscussion creates a discussion in a forum, optionally for one group.
func (f *Fixtures) CreateDiscussion(ctx context.Context, forum models.Forum, name string, groupID *primitive.ObjectID) models.Discussion {
	f.t.Helper()
	d := models.Discussion{
		ID:           primitive.NewObjectID(),
		ForumID:      forum.ID,
		CourseID:     forum.CourseID,
		GroupID:      groupID,
		Name:         name,
		TimeModified: time.Now().UTC(),
	}
	f.insert(ctx, "discussions", d)
	return d
}

// CreatePost creates a post in a discussion modified at the given time.
func (f *Fixtures) CreatePost(ctx context.Context, d models.Discussion, authorID primitive.ObjectID, modified time.Time) models.Post {
	f.t.Helper()
	p := models.Post{
		ID:           primitive.NewObjectID(),
		DiscussionID: d.ID,
		ForumID:      d.ForumID,
		UserID:       authorID,
		Subject:      "Re: " + d.Name,
		Modified:     modified,
	}
	f.insert(ctx, "posts", p)
	return p
}

// Subscribe inserts a forum subscription row directly.
func (f *Fixtures) Subscribe(ctx context.Context, userID, forumID primitive.ObjectID) {
	f.t.Helper()
	f.insert(ctx, "subscriptions", models.Subscription{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		ForumID:   forumID,
		CreatedAt: time.Now().UTC(),
	})
}

// SetDiscussionPreference inserts a discussion subscription override directly.
func (f *Fixtures) SetDiscussionPreference(ctx context.Context, userID primitive.ObjectID, d models.Discussion, pref string) {
	f.t.Helper()
	f.insert(ctx, "discussion_subscriptions", models.DiscussionSubscription{
		ID:           primitive.NewObjectID(),
		UserID:       userID,
		ForumID:      d.ForumID,
		DiscussionID: d.ID,
		Preference:   pref,
		UpdatedAt:    time.Now().UTC(),
	})
}
