// Package stack assembles the stores and services of the forum state
// model over one Mongo database. Bootstrap builds one per process; handler
// tests build one per test database.
package stack

import (
	"github.com/dalemusser/twfhub/internal/app/policy/capability"
	"github.com/dalemusser/twfhub/internal/app/services/readtracking"
	"github.com/dalemusser/twfhub/internal/app/services/subscriptions"
	coursegroupstore "github.com/dalemusser/twfhub/internal/app/store/coursegroups"
	coursemodulestore "github.com/dalemusser/twfhub/internal/app/store/coursemodules"
	coursestore "github.com/dalemusser/twfhub/internal/app/store/courses"
	discussionstore "github.com/dalemusser/twfhub/internal/app/store/discussions"
	discussionsubstore "github.com/dalemusser/twfhub/internal/app/store/discussionsubs"
	enrolmentstore "github.com/dalemusser/twfhub/internal/app/store/enrolments"
	forumstore "github.com/dalemusser/twfhub/internal/app/store/forums"
	membershipstore "github.com/dalemusser/twfhub/internal/app/store/memberships"
	poststore "github.com/dalemusser/twfhub/internal/app/store/posts"
	readmarkstore "github.com/dalemusser/twfhub/internal/app/store/readmarks"
	subscriptionstore "github.com/dalemusser/twfhub/internal/app/store/subscriptions"
	trackprefstore "github.com/dalemusser/twfhub/internal/app/store/trackprefs"
	userstore "github.com/dalemusser/twfhub/internal/app/store/users"
	"github.com/dalemusser/twfhub/internal/app/system/auditlog"
	"github.com/dalemusser/twfhub/internal/app/system/forumctx"
	"go.mongodb.org/mongo-driver/mongo"
)

type Stack struct {
	Courses        *coursestore.Store
	Forums         *forumstore.Store
	Modules        *coursemodulestore.Store
	Discussions    *discussionstore.Store
	Posts          *poststore.Store
	ReadMarks      *readmarkstore.Store
	TrackPrefs     *trackprefstore.Store
	Subscriptions  *subscriptionstore.Store
	DiscussionSubs *discussionsubstore.Store
	Users          *userstore.Store
	Enrolments     *enrolmentstore.Store
	Groups         *coursegroupstore.Store
	Memberships    *membershipstore.Store

	Caps     capability.Checker
	ForumCtx *forumctx.Resolver
	Reading  *readtracking.Service
	Subs     *subscriptions.Service
}

// New wires every store and service over db. events may be nil.
func New(db *mongo.Database, cfg readtracking.Config, events *auditlog.Logger) *Stack {
	s := &Stack{
		Courses:        coursestore.New(db),
		Forums:         forumstore.New(db),
		Modules:        coursemodulestore.New(db),
		Discussions:    discussionstore.New(db),
		Posts:          poststore.New(db),
		ReadMarks:      readmarkstore.New(db),
		TrackPrefs:     trackprefstore.New(db),
		Subscriptions:  subscriptionstore.New(db),
		DiscussionSubs: discussionsubstore.New(db),
		Users:          userstore.New(db),
		Enrolments:     enrolmentstore.New(db),
		Groups:         coursegroupstore.New(db),
		Memberships:    membershipstore.New(db),
	}
	s.Caps = capability.NewRoleChecker(s.Enrolments, s.Users)
	s.ForumCtx = forumctx.NewResolver(s.Forums, s.Courses, s.Modules)
	s.Reading = readtracking.New(cfg, s.ReadMarks, s.TrackPrefs, s.Discussions, s.Posts, events)
	s.Subs = subscriptions.New(subscriptions.Deps{
		Subscriptions:  s.Subscriptions,
		DiscussionSubs: s.DiscussionSubs,
		Forums:         s.Forums,
		Discussions:    s.Discussions,
		Users:          s.Users,
		Memberships:    s.Memberships,
		Caps:           s.Caps,
		Events:         events,
	})
	return s
}
