// internal/app/services/readtracking/readtracking.go
//
// Package readtracking keeps per-user read state for forum discussions and
// the per-forum opt-out preference.
package readtracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/twfhub/internal/app/store/audit"
	poststore "github.com/dalemusser/twfhub/internal/app/store/posts"
	"github.com/dalemusser/twfhub/internal/domain/models"
	"github.com/dalemusser/twfhub/internal/domain/twferr"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Config holds the site-wide read tracking settings.
type Config struct {
	TrackReadPosts          bool
	AllowForcedReadTracking bool
	// OldPostDays: posts older than this count as read. 0 disables the cutoff.
	OldPostDays int
}

// Reader is the user whose read state is being examined.
type Reader struct {
	ID          primitive.ObjectID
	Guest       bool
	TrackForums bool
}

// Marks stores read marks.
type Marks interface {
	Upsert(ctx context.Context, userID, forumID, discussionID primitive.ObjectID, at time.Time) error
	UpsertMany(ctx context.Context, userID, forumID primitive.ObjectID, discussionIDs []primitive.ObjectID, at time.Time) (int, error)
	Delete(ctx context.Context, userID, discussionID primitive.ObjectID) error
	DeleteByForum(ctx context.Context, userID, forumID primitive.ObjectID) (int64, error)
	ListForDiscussions(ctx context.Context, userID primitive.ObjectID, discussionIDs []primitive.ObjectID) ([]models.ReadMark, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Prefs stores the "not tracking this forum" rows.
type Prefs interface {
	Exists(ctx context.Context, userID, forumID primitive.ObjectID) (bool, error)
	Add(ctx context.Context, userID, forumID primitive.ObjectID) error
	Remove(ctx context.Context, userID, forumID primitive.ObjectID) error
}

// Discussions looks up discussions of a forum.
type Discussions interface {
	GetInForum(ctx context.Context, id, forumID primitive.ObjectID) (models.Discussion, error)
	ListIDsByForum(ctx context.Context, forumID primitive.ObjectID, groupID *primitive.ObjectID) ([]primitive.ObjectID, error)
}

// Posts reports post modification times.
type Posts interface {
	ModifiedSince(ctx context.Context, discussionIDs []primitive.ObjectID, cutoff time.Time) ([]poststore.Stamp, error)
}

// Events receives audit events.
type Events interface {
	Log(ctx context.Context, event audit.Event)
}

// Service implements read tracking.
type Service struct {
	cfg         Config
	marks       Marks
	prefs       Prefs
	discussions Discussions
	posts       Posts
	events      Events
	now         func() time.Time
}

func New(cfg Config, marks Marks, prefs Prefs, discussions Discussions, posts Posts, events Events) *Service {
	return &Service{
		cfg:         cfg,
		marks:       marks,
		prefs:       prefs,
		discussions: discussions,
		posts:       posts,
		events:      events,
		now:         time.Now,
	}
}

// SetClock replaces the time source. For tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Config returns the settings the service runs with.
func (s *Service) Config() Config { return s.cfg }

// Cutoff is the time before which posts count as read (zero when disabled).
func (s *Service) Cutoff() time.Time {
	if s.cfg.OldPostDays <= 0 {
		return time.Time{}
	}
	return s.now().Add(-time.Duration(s.cfg.OldPostDays) * 24 * time.Hour)
}

// CanTrack reports whether tracking is possible at all for the reader in forum.
func (s *Service) CanTrack(rd Reader, forum models.Forum) bool {
	if !s.cfg.TrackReadPosts || rd.Guest || rd.ID.IsZero() {
		return false
	}
	switch forum.TrackingType {
	case models.TrackingForced:
		if s.cfg.AllowForcedReadTracking {
			return true
		}
		return rd.TrackForums
	case models.TrackingOptional:
		return rd.TrackForums
	default:
		return false
	}
}

// IsTracked reports whether read state is currently kept for the reader in forum.
func (s *Service) IsTracked(ctx context.Context, rd Reader, forum models.Forum) (bool, error) {
	if !s.CanTrack(rd, forum) {
		return false, nil
	}
	if forum.TrackingType == models.TrackingForced && s.cfg.AllowForcedReadTracking {
		return true, nil
	}
	optedOut, err := s.prefs.Exists(ctx, rd.ID, forum.ID)
	if err != nil {
		return false, fmt.Errorf("check tracking preference: %w", err)
	}
	return !optedOut, nil
}

// StartTracking removes the reader's opt-out for forum.
func (s *Service) StartTracking(ctx context.Context, rd Reader, forum models.Forum) error {
	if !s.CanTrack(rd, forum) {
		return twferr.ErrTrackingDisallowed
	}
	if err := s.prefs.Remove(ctx, rd.ID, forum.ID); err != nil {
		return fmt.Errorf("remove tracking preference: %w", err)
	}
	s.emit(ctx, audit.EventReadTrackingEnabled, rd.ID, forum, nil)
	return nil
}

// StopTracking records the opt-out and drops the reader's marks in forum.
// Forced tracking cannot be opted out of.
func (s *Service) StopTracking(ctx context.Context, rd Reader, forum models.Forum) error {
	if !s.CanTrack(rd, forum) {
		return twferr.ErrTrackingDisallowed
	}
	if forum.TrackingType == models.TrackingForced && s.cfg.AllowForcedReadTracking {
		return twferr.ErrTrackingDisallowed
	}
	if err := s.prefs.Add(ctx, rd.ID, forum.ID); err != nil {
		return fmt.Errorf("add tracking preference: %w", err)
	}
	if _, err := s.marks.DeleteByForum(ctx, rd.ID, forum.ID); err != nil {
		return fmt.Errorf("delete read marks: %w", err)
	}
	s.emit(ctx, audit.EventReadTrackingDisabled, rd.ID, forum, nil)
	return nil
}

func (s *Service) discussionInForum(ctx context.Context, forumID, discussionID primitive.ObjectID) error {
	_, err := s.discussions.GetInForum(ctx, discussionID, forumID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return twferr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load discussion: %w", err)
	}
	return nil
}

// MarkDiscussionRead records that the reader has read discussionID up to now.
func (s *Service) MarkDiscussionRead(ctx context.Context, rd Reader, forum models.Forum, discussionID primitive.ObjectID) error {
	if err := s.discussionInForum(ctx, forum.ID, discussionID); err != nil {
		return err
	}
	if err := s.marks.Upsert(ctx, rd.ID, forum.ID, discussionID, s.now().UTC()); err != nil {
		return fmt.Errorf("upsert read mark: %w", err)
	}
	s.emit(ctx, audit.EventDiscussionMarkedRead, rd.ID, forum, map[string]string{
		"discussion_id": discussionID.Hex(),
	})
	return nil
}

// MarkDiscussionUnread forgets the reader's mark on discussionID.
func (s *Service) MarkDiscussionUnread(ctx context.Context, rd Reader, forum models.Forum, discussionID primitive.ObjectID) error {
	if err := s.discussionInForum(ctx, forum.ID, discussionID); err != nil {
		return err
	}
	if err := s.marks.Delete(ctx, rd.ID, discussionID); err != nil {
		return fmt.Errorf("delete read mark: %w", err)
	}
	return nil
}

// MarkForumRead marks every discussion of forum read. A non-nil scope limits
// it to that group's discussions and those open to all participants.
func (s *Service) MarkForumRead(ctx context.Context, rd Reader, forum models.Forum, scope *primitive.ObjectID) (int, error) {
	ids, err := s.discussions.ListIDsByForum(ctx, forum.ID, scope)
	if err != nil {
		return 0, fmt.Errorf("list discussions: %w", err)
	}
	n, err := s.marks.UpsertMany(ctx, rd.ID, forum.ID, ids, s.now().UTC())
	if err != nil {
		return n, fmt.Errorf("upsert read marks: %w", err)
	}
	details := map[string]string{"discussions": fmt.Sprint(len(ids))}
	if scope != nil {
		details["group_id"] = scope.Hex()
	}
	s.emit(ctx, audit.EventForumMarkedRead, rd.ID, forum, details)
	return n, nil
}

// UnreadCounts returns, per discussion, the posts the reader has not seen.
// Discussions without unread posts are absent from the map.
func (s *Service) UnreadCounts(ctx context.Context, rd Reader, discussionIDs []primitive.ObjectID) (map[primitive.ObjectID]int, error) {
	out := make(map[primitive.ObjectID]int)
	if len(discussionIDs) == 0 {
		return out, nil
	}
	stamps, err := s.posts.ModifiedSince(ctx, discussionIDs, s.Cutoff())
	if err != nil {
		return nil, fmt.Errorf("list post stamps: %w", err)
	}
	marks, err := s.marks.ListForDiscussions(ctx, rd.ID, discussionIDs)
	if err != nil {
		return nil, fmt.Errorf("list read marks: %w", err)
	}
	lastRead := make(map[primitive.ObjectID]time.Time, len(marks))
	for _, m := range marks {
		lastRead[m.DiscussionID] = m.LastRead
	}
	for _, st := range stamps {
		if lr, ok := lastRead[st.DiscussionID]; ok && !st.Modified.After(lr) {
			continue
		}
		out[st.DiscussionID]++
	}
	return out, nil
}

// CleanupOldMarks deletes marks whose last read falls before the cutoff.
func (s *Service) CleanupOldMarks(ctx context.Context) (int64, error) {
	cutoff := s.Cutoff()
	if cutoff.IsZero() {
		return 0, nil
	}
	n, err := s.marks.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old read marks: %w", err)
	}
	return n, nil
}

func (s *Service) emit(ctx context.Context, eventType string, userID primitive.ObjectID, forum models.Forum, details map[string]string) {
	if s.events == nil {
		return
	}
	uid, fid, cid := userID, forum.ID, forum.CourseID
	s.events.Log(ctx, audit.Event{
		Category:  audit.CategoryTwf,
		EventType: eventType,
		UserID:    &uid,
		ForumID:   &fid,
		CourseID:  &cid,
		Success:   true,
		Details:   details,
	})
}
