package readtracking_test

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/twfhub/internal/app/store/audit"
	poststore "github.com/dalemusser/twfhub/internal/app/store/posts"
	"github.com/dalemusser/twfhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type markKey struct{ user, discussion primitive.ObjectID }

type fakeMarks struct {
	rows map[markKey]models.ReadMark
}

func newFakeMarks() *fakeMarks { return &fakeMarks{rows: map[markKey]models.ReadMark{}} }

func (f *fakeMarks) Upsert(_ context.Context, userID, forumID, discussionID primitive.ObjectID, at time.Time) error {
	k := markKey{userID, discussionID}
	m, ok := f.rows[k]
	if !ok {
		m = models.ReadMark{UserID: userID, DiscussionID: discussionID, FirstRead: at}
	}
	m.ForumID = forumID
	m.LastRead = at
	f.rows[k] = m
	return nil
}

func (f *fakeMarks) UpsertMany(ctx context.Context, userID, forumID primitive.ObjectID, ids []primitive.ObjectID, at time.Time) (int, error) {
	for _, id := range ids {
		_ = f.Upsert(ctx, userID, forumID, id, at)
	}
	return len(ids), nil
}

func (f *fakeMarks) Delete(_ context.Context, userID, discussionID primitive.ObjectID) error {
	delete(f.rows, markKey{userID, discussionID})
	return nil
}

func (f *fakeMarks) DeleteByForum(_ context.Context, userID, forumID primitive.ObjectID) (int64, error) {
	var n int64
	for k, m := range f.rows {
		if k.user == userID && m.ForumID == forumID {
			delete(f.rows, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeMarks) ListForDiscussions(_ context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) ([]models.ReadMark, error) {
	var out []models.ReadMark
	for _, id := range ids {
		if m, ok := f.rows[markKey{userID, id}]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMarks) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for k, m := range f.rows {
		if m.LastRead.Before(cutoff) {
			delete(f.rows, k)
			n++
		}
	}
	return n, nil
}

type prefKey struct{ user, forum primitive.ObjectID }

type fakePrefs map[prefKey]bool

func (f fakePrefs) Exists(_ context.Context, userID, forumID primitive.ObjectID) (bool, error) {
	return f[prefKey{userID, forumID}], nil
}

func (f fakePrefs) Add(_ context.Context, userID, forumID primitive.ObjectID) error {
	f[prefKey{userID, forumID}] = true
	return nil
}

func (f fakePrefs) Remove(_ context.Context, userID, forumID primitive.ObjectID) error {
	delete(f, prefKey{userID, forumID})
	return nil
}

type fakeDiscussions []models.Discussion

func (f fakeDiscussions) GetInForum(_ context.Context, id, forumID primitive.ObjectID) (models.Discussion, error) {
	for _, d := range f {
		if d.ID == id && d.ForumID == forumID {
			return d, nil
		}
	}
	return models.Discussion{}, mongo.ErrNoDocuments
}

func (f fakeDiscussions) ListIDsByForum(_ context.Context, forumID primitive.ObjectID, groupID *primitive.ObjectID) ([]primitive.ObjectID, error) {
	var out []primitive.ObjectID
	for _, d := range f {
		if d.ForumID != forumID {
			continue
		}
		if groupID != nil && d.GroupID != nil && *d.GroupID != *groupID {
			continue
		}
		out = append(out, d.ID)
	}
	return out, nil
}

type fakePosts []poststore.Stamp

func (f fakePosts) ModifiedSince(_ context.Context, ids []primitive.ObjectID, cutoff time.Time) ([]poststore.Stamp, error) {
	in := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		in[id] = true
	}
	var out []poststore.Stamp
	for _, st := range f {
		if in[st.DiscussionID] && st.Modified.After(cutoff) {
			out = append(out, st)
		}
	}
	return out, nil
}

type recordedEvents struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordedEvents) Log(_ context.Context, e audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordedEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType
	}
	return out
}
