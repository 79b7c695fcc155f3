// internal/app/services/subscriptions/subscriptions.go
//
// Package subscriptions manages forum and discussion subscriptions.
package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/twfhub/internal/app/policy/capability"
	"github.com/dalemusser/twfhub/internal/app/store/audit"
	"github.com/dalemusser/twfhub/internal/domain/models"
	"github.com/dalemusser/twfhub/internal/domain/twferr"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/multierr"
)

// Subscriptions stores forum-level subscription rows.
type Subscriptions interface {
	Exists(ctx context.Context, userID, forumID primitive.ObjectID) (bool, error)
	Add(ctx context.Context, userID, forumID primitive.ObjectID) (bool, error)
	Remove(ctx context.Context, userID, forumID primitive.ObjectID) (bool, error)
	ListUserIDsByForum(ctx context.Context, forumID primitive.ObjectID) ([]primitive.ObjectID, error)
	ListForumIDsByUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// DiscussionSubs stores per-discussion overrides.
type DiscussionSubs interface {
	Get(ctx context.Context, userID, discussionID primitive.ObjectID) (models.DiscussionSubscription, error)
	Set(ctx context.Context, userID, forumID, discussionID primitive.ObjectID, preference string) error
	Delete(ctx context.Context, userID, discussionID primitive.ObjectID) (bool, error)
	DeleteByForum(ctx context.Context, userID, forumID primitive.ObjectID) (int64, error)
	DeleteUnsubscribedByForum(ctx context.Context, userID, forumID primitive.ObjectID) (int64, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	CountSubscribedByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type Forums interface {
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Forum, error)
}

type Discussions interface {
	GetInForum(ctx context.Context, id, forumID primitive.ObjectID) (models.Discussion, error)
}

type Users interface {
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	SetAutoSubscribe(ctx context.Context, id primitive.ObjectID, on bool) error
}

// Memberships lists the members of a course group.
type Memberships interface {
	ListUserIDsByGroup(ctx context.Context, groupID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// Events receives audit events.
type Events interface {
	Log(ctx context.Context, event audit.Event)
}

// Deps groups the collaborators of Service.
type Deps struct {
	Subscriptions  Subscriptions
	DiscussionSubs DiscussionSubs
	Forums         Forums
	Discussions    Discussions
	Users          Users
	Memberships    Memberships
	Caps           capability.Checker
	Events         Events
}

type Service struct {
	d Deps
}

func New(d Deps) *Service {
	return &Service{d: d}
}

// IsForceSubscribed reports whether everyone is subscribed to forum.
func IsForceSubscribed(forum models.Forum) bool {
	return forum.SubscriptionMode == models.SubscriptionForced
}

// IsSubscribable reports whether users may change their subscription.
func IsSubscribable(forum models.Forum) bool {
	return forum.SubscriptionMode != models.SubscriptionForced &&
		forum.SubscriptionMode != models.SubscriptionDisallowed
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", twferr.ErrSubscription, op, err)
}

// SubscribeUser subscribes userID to forum. Subscribing twice is not an
// error. When the user asked for it, earlier per-discussion opt-outs in the
// forum are dropped.
func (s *Service) SubscribeUser(ctx context.Context, userID primitive.ObjectID, forum models.Forum, userRequest bool) error {
	created, err := s.d.Subscriptions.Add(ctx, userID, forum.ID)
	if err != nil {
		return storageErr("add subscription", err)
	}
	if userRequest {
		if _, err := s.d.DiscussionSubs.DeleteUnsubscribedByForum(ctx, userID, forum.ID); err != nil {
			return storageErr("clear discussion opt-outs", err)
		}
	}
	if created {
		s.emit(ctx, audit.EventSubscriptionCreated, userID, forum, nil)
	}
	return nil
}

// UnsubscribeUser removes the subscription. When the user asked for it,
// all discussion-level preferences in the forum go too.
func (s *Service) UnsubscribeUser(ctx context.Context, userID primitive.ObjectID, forum models.Forum, userRequest bool) error {
	removed, err := s.d.Subscriptions.Remove(ctx, userID, forum.ID)
	if err != nil {
		return storageErr("remove subscription", err)
	}
	if userRequest {
		if _, err := s.d.DiscussionSubs.DeleteByForum(ctx, userID, forum.ID); err != nil {
			return storageErr("clear discussion subscriptions", err)
		}
	}
	if removed {
		s.emit(ctx, audit.EventSubscriptionDeleted, userID, forum, nil)
	}
	return nil
}

// IsSubscribed reports the effective subscription. A discussion override
// wins over the forum-level row.
func (s *Service) IsSubscribed(ctx context.Context, userID primitive.ObjectID, forum models.Forum, discussionID *primitive.ObjectID) (bool, error) {
	if IsForceSubscribed(forum) {
		return true, nil
	}
	if discussionID != nil {
		pref, err := s.d.DiscussionSubs.Get(ctx, userID, *discussionID)
		switch {
		case err == nil:
			return pref.Preference == models.DiscussionSubscribed, nil
		case !errors.Is(err, mongo.ErrNoDocuments):
			return false, storageErr("load discussion subscription", err)
		}
	}
	ok, err := s.d.Subscriptions.Exists(ctx, userID, forum.ID)
	if err != nil {
		return false, storageErr("check subscription", err)
	}
	return ok, nil
}

func (s *Service) checkDiscussion(ctx context.Context, forum models.Forum, discussionID primitive.ObjectID) error {
	_, err := s.d.Discussions.GetInForum(ctx, discussionID, forum.ID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return twferr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load discussion: %w", err)
	}
	return nil
}

// SubscribeToDiscussion subscribes userID to one discussion. For a user
// already subscribed to the forum this just clears an opt-out.
func (s *Service) SubscribeToDiscussion(ctx context.Context, userID primitive.ObjectID, forum models.Forum, discussionID primitive.ObjectID) error {
	if err := s.checkDiscussion(ctx, forum, discussionID); err != nil {
		return err
	}
	forumSub, err := s.d.Subscriptions.Exists(ctx, userID, forum.ID)
	if err != nil {
		return storageErr("check subscription", err)
	}
	if forumSub {
		_, err = s.d.DiscussionSubs.Delete(ctx, userID, discussionID)
	} else {
		err = s.d.DiscussionSubs.Set(ctx, userID, forum.ID, discussionID, models.DiscussionSubscribed)
	}
	if err != nil {
		return storageErr("write discussion subscription", err)
	}
	s.emit(ctx, audit.EventDiscussionSubscriptionCreated, userID, forum,
		map[string]string{"discussion_id": discussionID.Hex()})
	return nil
}

// UnsubscribeFromDiscussion opts userID out of one discussion.
func (s *Service) UnsubscribeFromDiscussion(ctx context.Context, userID primitive.ObjectID, forum models.Forum, discussionID primitive.ObjectID) error {
	if err := s.checkDiscussion(ctx, forum, discussionID); err != nil {
		return err
	}
	forumSub, err := s.d.Subscriptions.Exists(ctx, userID, forum.ID)
	if err != nil {
		return storageErr("check subscription", err)
	}
	if forumSub {
		err = s.d.DiscussionSubs.Set(ctx, userID, forum.ID, discussionID, models.DiscussionUnsubscribed)
	} else {
		_, err = s.d.DiscussionSubs.Delete(ctx, userID, discussionID)
	}
	if err != nil {
		return storageErr("write discussion subscription", err)
	}
	s.emit(ctx, audit.EventDiscussionSubscriptionDeleted, userID, forum,
		map[string]string{"discussion_id": discussionID.Hex()})
	return nil
}

// restrict keeps the ids present in allowed, preserving order.
func restrict(ids []primitive.ObjectID, allowed []primitive.ObjectID) []primitive.ObjectID {
	set := make(map[primitive.ObjectID]struct{}, len(allowed))
	for _, id := range allowed {
		set[id] = struct{}{}
	}
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := set[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func (s *Service) inScope(ctx context.Context, ids []primitive.ObjectID, scope *primitive.ObjectID) ([]primitive.ObjectID, error) {
	if scope == nil {
		return ids, nil
	}
	members, err := s.d.Memberships.ListUserIDsByGroup(ctx, *scope)
	if err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	return restrict(ids, members), nil
}

// FetchSubscribedUsers lists the subscribers of forum, ordered by name.
// For a forced forum that is every enrolled user allowed to be force
// subscribed. A non-nil scope limits the list to that group's members.
func (s *Service) FetchSubscribedUsers(ctx context.Context, forum models.Forum, scope *primitive.ObjectID, cm capability.Context) ([]models.User, error) {
	var ids []primitive.ObjectID
	if IsForceSubscribed(forum) {
		enrolled, err := s.d.Caps.UsersWithCapability(ctx, capability.AllowForceSubscribe, cm)
		if err != nil {
			return nil, fmt.Errorf("list enrolled users: %w", err)
		}
		ids = enrolled
	} else {
		subs, err := s.d.Subscriptions.ListUserIDsByForum(ctx, forum.ID)
		if err != nil {
			return nil, storageErr("list subscribers", err)
		}
		enrolled, err := s.d.Caps.UsersWithCapability(ctx, capability.ViewDiscussion, cm)
		if err != nil {
			return nil, fmt.Errorf("list enrolled users: %w", err)
		}
		ids = restrict(subs, enrolled)
	}

	ids, err := s.inScope(ctx, ids, scope)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return s.d.Users.ListByIDs(ctx, ids)
}

// PotentialSubscribers lists enrolled users that could be subscribed and
// are not yet. search, when set, matches names and login ids.
func (s *Service) PotentialSubscribers(ctx context.Context, forum models.Forum, scope *primitive.ObjectID, cm capability.Context, search string) ([]models.User, error) {
	enrolled, err := s.d.Caps.UsersWithCapability(ctx, capability.AllowForceSubscribe, cm)
	if err != nil {
		return nil, fmt.Errorf("list enrolled users: %w", err)
	}
	enrolled, err = s.inScope(ctx, enrolled, scope)
	if err != nil {
		return nil, err
	}
	subs, err := s.d.Subscriptions.ListUserIDsByForum(ctx, forum.ID)
	if err != nil {
		return nil, storageErr("list subscribers", err)
	}
	taken := make(map[primitive.ObjectID]struct{}, len(subs))
	for _, id := range subs {
		taken[id] = struct{}{}
	}
	ids := make([]primitive.ObjectID, 0, len(enrolled))
	for _, id := range enrolled {
		if _, ok := taken[id]; !ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	users, err := s.d.Users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	q := text.Fold(strings.TrimSpace(search))
	if q == "" {
		return users, nil
	}
	out := users[:0]
	for _, u := range users {
		if strings.Contains(u.FullNameCI, q) || strings.Contains(u.LoginIDCI, q) {
			out = append(out, u)
		}
	}
	return out, nil
}

// UnsubscribableForums lists forums userID is subscribed to and may leave.
func (s *Service) UnsubscribableForums(ctx context.Context, userID primitive.ObjectID) ([]models.Forum, error) {
	ids, err := s.d.Subscriptions.ListForumIDsByUser(ctx, userID)
	if err != nil {
		return nil, storageErr("list subscribed forums", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	forums, err := s.d.Forums.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load forums: %w", err)
	}
	out := forums[:0]
	for _, f := range forums {
		if !IsForceSubscribed(f) {
			out = append(out, f)
		}
	}
	return out, nil
}

// Result reports what UnsubscribeAll removed.
type Result struct {
	Forums      int
	Discussions int64
	Failed      int
}

// UnsubscribeAll removes every subscription userID can leave, then all
// discussion subscriptions, then turns off auto-subscribe. Each step is
// attempted even when an earlier one fails; failures are combined.
func (s *Service) UnsubscribeAll(ctx context.Context, userID primitive.ObjectID) (Result, error) {
	var res Result

	forums, err := s.UnsubscribableForums(ctx, userID)
	if err != nil {
		return res, err
	}

	var errs error
	for _, f := range forums {
		if err := s.UnsubscribeUser(ctx, userID, f, false); err != nil {
			res.Failed++
			errs = multierr.Append(errs, fmt.Errorf("forum %s: %w", f.ID.Hex(), err))
			continue
		}
		res.Forums++
	}

	n, err := s.d.DiscussionSubs.DeleteByUser(ctx, userID)
	if err != nil {
		errs = multierr.Append(errs, storageErr("delete discussion subscriptions", err))
	}
	res.Discussions = n

	if err := s.d.Users.SetAutoSubscribe(ctx, userID, false); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("disable autosubscribe: %w", err))
	}

	if s.d.Events != nil {
		uid := userID
		e := audit.Event{
			Category:  audit.CategoryTwf,
			EventType: audit.EventUnsubscribedAll,
			UserID:    &uid,
			Success:   errs == nil,
			Details: map[string]string{
				"forums":      fmt.Sprint(res.Forums),
				"discussions": fmt.Sprint(res.Discussions),
			},
		}
		if errs != nil {
			e.FailureReason = errs.Error()
		}
		s.d.Events.Log(ctx, e)
	}
	return res, errs
}

// Counts returns how many forums and subscribed discussions UnsubscribeAll
// would touch.
func (s *Service) Counts(ctx context.Context, userID primitive.ObjectID) (forums int, discussions int64, err error) {
	list, err := s.UnsubscribableForums(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	n, err := s.d.DiscussionSubs.CountSubscribedByUser(ctx, userID)
	if err != nil {
		return 0, 0, storageErr("count discussion subscriptions", err)
	}
	return len(list), n, nil
}

func (s *Service) emit(ctx context.Context, eventType string, userID primitive.ObjectID, forum models.Forum, details map[string]string) {
	if s.d.Events == nil {
		return
	}
	uid, fid, cid := userID, forum.ID, forum.CourseID
	s.d.Events.Log(ctx, audit.Event{
		Category:  audit.CategoryTwf,
		EventType: eventType,
		UserID:    &uid,
		ForumID:   &fid,
		CourseID:  &cid,
		Success:   true,
		Details:   details,
	})
}
