package forumview

import (
	"html/template"

	"github.com/dalemusser/twfhub/internal/app/system/groupscope"
	"github.com/dalemusser/twfhub/internal/app/system/viewdata"
)

// trackingState drives the tracking toggle form. Toggle is false when the
// reader cannot change it.
type trackingState struct {
	Tracked bool
	Toggle  bool

	// form fields
	ForumID    string
	ReturnPage string
	CSRF       string
}

type discussionRow struct {
	ID       string
	Name     string
	Modified string
	Unread   int
	// MarkURL marks the discussion read, or unread when it has nothing unread.
	MarkURL   string
	MarkLabel string
}

type forumVM struct {
	viewdata.BaseVM

	ForumID    string
	ForumName  string
	CourseName string
	CourseURL  string
	Intro      template.HTML
	Hidden     bool

	Tracking       trackingState
	Subscribed     bool
	Forced         bool
	CanViewSubs    bool
	SubscribersURL string
	MarkAllReadURL string
	GroupOptions   []groupscope.Choice
	Discussions    []discussionRow
	UnreadTotal    int
}

type forumRow struct {
	ID          string
	Name        string
	URL         string
	Hidden      bool
	Discussions int
	Tracking    trackingState
	Unread      int
	Subscribed  bool
	Forced      bool
	MarkReadURL string
}

type courseVM struct {
	viewdata.BaseVM

	CourseName string
	Forums     []forumRow
}
