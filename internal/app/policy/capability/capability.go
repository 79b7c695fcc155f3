// internal/app/policy/capability/capability.go
//
// Package capability answers "may this user do X in this forum": course
// enrolment roles map onto a fixed set of capabilities, and site admins
// hold all of them.
package capability

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/twfhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Capability names a permission checked in a course module context.
type Capability string

const (
	ViewDiscussion       Capability = "mod/twf:viewdiscussion"
	ViewSubscribers      Capability = "mod/twf:viewsubscribers"
	ManageSubscriptions  Capability = "mod/twf:managesubscriptions"
	AllowForceSubscribe  Capability = "mod/twf:allowforcesubscribe"
	ViewHiddenActivities Capability = "moodle/course:viewhiddenactivities"
	AccessAllGroups      Capability = "moodle/site:accessallgroups"
)

// Context is the course module a capability is evaluated in.
type Context struct {
	CourseID primitive.ObjectID
	ModuleID primitive.ObjectID
}

// Checker is what handlers and services depend on.
type Checker interface {
	HasCapability(ctx context.Context, userID primitive.ObjectID, c Capability, cm Context) (bool, error)
	UsersWithCapability(ctx context.Context, c Capability, cm Context) ([]primitive.ObjectID, error)
}

var roleCaps = map[string][]Capability{
	models.CourseRoleStudent: {ViewDiscussion, AllowForceSubscribe},
	models.CourseRoleTeacher: {ViewDiscussion, AllowForceSubscribe, ViewSubscribers,
		ViewHiddenActivities, AccessAllGroups},
	models.CourseRoleEditingTeacher: {ViewDiscussion, AllowForceSubscribe, ViewSubscribers,
		ViewHiddenActivities, AccessAllGroups, ManageSubscriptions},
	models.CourseRoleManager: {ViewDiscussion, AllowForceSubscribe, ViewSubscribers,
		ViewHiddenActivities, AccessAllGroups, ManageSubscriptions},
}

// RoleAllows reports whether a course role grants c.
func RoleAllows(role string, c Capability) bool {
	for _, have := range roleCaps[strings.ToLower(role)] {
		if have == c {
			return true
		}
	}
	return false
}

// Enrolments is the subset of the enrolment store the checker reads.
type Enrolments interface {
	Get(ctx context.Context, courseID, userID primitive.ObjectID) (models.Enrolment, error)
	ListByCourse(ctx context.Context, courseID primitive.ObjectID) ([]models.Enrolment, error)
}

// Users resolves site roles.
type Users interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// RoleChecker is the default Checker.
type RoleChecker struct {
	enrolments Enrolments
	users      Users
}

func NewRoleChecker(enrolments Enrolments, users Users) *RoleChecker {
	return &RoleChecker{enrolments: enrolments, users: users}
}

// HasCapability is true for site admins, otherwise when the user's
// enrolment role in the course grants c.
func (rc *RoleChecker) HasCapability(ctx context.Context, userID primitive.ObjectID, c Capability, cm Context) (bool, error) {
	u, err := rc.users.GetByID(ctx, userID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if strings.EqualFold(u.Role, models.RoleAdmin) {
		return true, nil
	}
	if u.IsGuest() {
		return false, nil
	}

	e, err := rc.enrolments.Get(ctx, cm.CourseID, userID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return RoleAllows(e.Role, c), nil
}

// UsersWithCapability lists enrolled users whose role grants c, in user id
// order. Site admins who are not enrolled are not listed.
func (rc *RoleChecker) UsersWithCapability(ctx context.Context, c Capability, cm Context) ([]primitive.ObjectID, error) {
	list, err := rc.enrolments.ListByCourse(ctx, cm.CourseID)
	if err != nil {
		return nil, err
	}
	out := make([]primitive.ObjectID, 0, len(list))
	for _, e := range list {
		if RoleAllows(e.Role, c) {
			out = append(out, e.UserID)
		}
	}
	return out, nil
}
