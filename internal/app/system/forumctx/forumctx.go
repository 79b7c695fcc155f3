// Package forumctx resolves the forum a request names into the forum, its
// course and its course module, and turns the session user into the
// service-level reader.
package forumctx

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/twfhub/internal/app/policy/capability"
	"github.com/dalemusser/twfhub/internal/app/services/readtracking"
	"github.com/dalemusser/twfhub/internal/app/system/auth"
	"github.com/dalemusser/twfhub/internal/domain/models"
	"github.com/dalemusser/twfhub/internal/domain/twferr"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Forums interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Forum, error)
}

type Courses interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Course, error)
}

type Modules interface {
	GetByForum(ctx context.Context, forumID primitive.ObjectID) (models.CourseModule, error)
}

// Context is everything a forum action needs to know about where it runs.
type Context struct {
	Forum  models.Forum
	Course models.Course
	Module models.CourseModule
}

// Caps is the capability context of the forum's module.
func (c Context) Caps() capability.Context {
	return capability.Context{CourseID: c.Course.ID, ModuleID: c.Module.ID}
}

type Resolver struct {
	forums  Forums
	courses Courses
	modules Modules
}

func NewResolver(forums Forums, courses Courses, modules Modules) *Resolver {
	return &Resolver{forums: forums, courses: courses, modules: modules}
}

func notFound(what string, id primitive.ObjectID, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s %s: %w", what, id.Hex(), twferr.ErrNotFound)
	}
	return fmt.Errorf("load %s %s: %w", what, id.Hex(), err)
}

// Resolve loads forum, course and module, in that order. Any missing link
// is twferr.ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, forumID primitive.ObjectID) (Context, error) {
	var fc Context
	f, err := r.forums.GetByID(ctx, forumID)
	if err != nil {
		return fc, notFound("forum", forumID, err)
	}
	c, err := r.courses.GetByID(ctx, f.CourseID)
	if err != nil {
		return fc, notFound("course", f.CourseID, err)
	}
	cm, err := r.modules.GetByForum(ctx, f.ID)
	if err != nil {
		return fc, notFound("course module for forum", f.ID, err)
	}
	fc.Forum, fc.Course, fc.Module = f, c, cm
	return fc, nil
}

// UserID parses the session user's id. A nil or malformed user is
// twferr.ErrUnauthorized.
func UserID(u *auth.SessionUser) (primitive.ObjectID, error) {
	if u == nil {
		return primitive.NilObjectID, twferr.ErrUnauthorized
	}
	id, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("session user id %q: %w", u.ID, twferr.ErrUnauthorized)
	}
	return id, nil
}

// Reader builds the read-tracking reader for the session user.
func Reader(u *auth.SessionUser) (readtracking.Reader, error) {
	id, err := UserID(u)
	if err != nil {
		return readtracking.Reader{}, err
	}
	return readtracking.Reader{ID: id, Guest: u.IsGuest(), TrackForums: u.TrackForums}, nil
}

// CourseURL is the forum index of a course.
func CourseURL(courseID primitive.ObjectID) string {
	return "/twf/course/" + courseID.Hex()
}

// ForumURL is the discussion list of a forum.
func ForumURL(forumID primitive.ObjectID) string {
	return "/twf/forum/" + forumID.Hex()
}

// ReturnURL maps a validated return page onto its route: "view.php" is
// the forum itself, anything else the course index.
func (c Context) ReturnURL(page string) string {
	if page == "view.php" {
		return ForumURL(c.Forum.ID)
	}
	return CourseURL(c.Course.ID)
}
