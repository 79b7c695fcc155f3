package subscriptions_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/dalemusser/twfhub/internal/app/policy/capability"
	"github.com/dalemusser/twfhub/internal/app/store/audit"
	"github.com/dalemusser/twfhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type pair struct{ a, b primitive.ObjectID }

// fakeSubs keys rows by (user, forum); failRemove makes Remove fail for one forum.
type fakeSubs struct {
	rows       map[pair]bool
	order      []pair
	failRemove primitive.ObjectID
}

func newFakeSubs() *fakeSubs { return &fakeSubs{rows: map[pair]bool{}} }

func (f *fakeSubs) Exists(_ context.Context, u, forum primitive.ObjectID) (bool, error) {
	return f.rows[pair{u, forum}], nil
}

func (f *fakeSubs) Add(_ context.Context, u, forum primitive.ObjectID) (bool, error) {
	k := pair{u, forum}
	if f.rows[k] {
		return false, nil
	}
	f.rows[k] = true
	f.order = append(f.order, k)
	return true, nil
}

func (f *fakeSubs) Remove(_ context.Context, u, forum primitive.ObjectID) (bool, error) {
	if forum == f.failRemove {
		return false, errors.New("write failed")
	}
	k := pair{u, forum}
	if !f.rows[k] {
		return false, nil
	}
	delete(f.rows, k)
	return true, nil
}

func (f *fakeSubs) ListUserIDsByForum(_ context.Context, forum primitive.ObjectID) ([]primitive.ObjectID, error) {
	var out []primitive.ObjectID
	for _, k := range f.order {
		if k.b == forum && f.rows[k] {
			out = append(out, k.a)
		}
	}
	return out, nil
}

func (f *fakeSubs) ListForumIDsByUser(_ context.Context, u primitive.ObjectID) ([]primitive.ObjectID, error) {
	var out []primitive.ObjectID
	for _, k := range f.order {
		if k.a == u && f.rows[k] {
			out = append(out, k.b)
		}
	}
	return out, nil
}

type fakeDiscSubs struct {
	rows map[pair]models.DiscussionSubscription // (user, discussion)
}

func newFakeDiscSubs() *fakeDiscSubs {
	return &fakeDiscSubs{rows: map[pair]models.DiscussionSubscription{}}
}

func (f *fakeDiscSubs) Get(_ context.Context, u, d primitive.ObjectID) (models.DiscussionSubscription, error) {
	if r, ok := f.rows[pair{u, d}]; ok {
		return r, nil
	}
	return models.DiscussionSubscription{}, mongo.ErrNoDocuments
}

func (f *fakeDiscSubs) Set(_ context.Context, u, forum, d primitive.ObjectID, pref string) error {
	f.rows[pair{u, d}] = models.DiscussionSubscription{UserID: u, ForumID: forum, DiscussionID: d, Preference: pref}
	return nil
}

func (f *fakeDiscSubs) Delete(_ context.Context, u, d primitive.ObjectID) (bool, error) {
	_, ok := f.rows[pair{u, d}]
	delete(f.rows, pair{u, d})
	return ok, nil
}

func (f *fakeDiscSubs) deleteWhere(match func(models.DiscussionSubscription) bool) int64 {
	var n int64
	for k, r := range f.rows {
		if match(r) {
			delete(f.rows, k)
			n++
		}
	}
	return n
}

func (f *fakeDiscSubs) DeleteByForum(_ context.Context, u, forum primitive.ObjectID) (int64, error) {
	return f.deleteWhere(func(r models.DiscussionSubscription) bool { return r.UserID == u && r.ForumID == forum }), nil
}

func (f *fakeDiscSubs) DeleteUnsubscribedByForum(_ context.Context, u, forum primitive.ObjectID) (int64, error) {
	return f.deleteWhere(func(r models.DiscussionSubscription) bool {
		return r.UserID == u && r.ForumID == forum && r.Preference == models.DiscussionUnsubscribed
	}), nil
}

func (f *fakeDiscSubs) DeleteByUser(_ context.Context, u primitive.ObjectID) (int64, error) {
	return f.deleteWhere(func(r models.DiscussionSubscription) bool { return r.UserID == u }), nil
}

func (f *fakeDiscSubs) CountSubscribedByUser(_ context.Context, u primitive.ObjectID) (int64, error) {
	var n int64
	for _, r := range f.rows {
		if r.UserID == u && r.Preference == models.DiscussionSubscribed {
			n++
		}
	}
	return n, nil
}

type fakeForums []models.Forum

func (f fakeForums) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Forum, error) {
	var out []models.Forum
	for _, fm := range f {
		for _, id := range ids {
			if fm.ID == id {
				out = append(out, fm)
			}
		}
	}
	return out, nil
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

type fakeUsers struct {
	byID map[primitive.ObjectID]*models.User
}

func (f *fakeUsers) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullNameCI < out[j].FullNameCI })
	return out, nil
}

func (f *fakeUsers) SetAutoSubscribe(_ context.Context, id primitive.ObjectID, on bool) error {
	u, ok := f.byID[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	u.AutoSubscribe = on
	return nil
}

type fakeMemberships map[primitive.ObjectID][]primitive.ObjectID

func (f fakeMemberships) ListUserIDsByGroup(_ context.Context, g primitive.ObjectID) ([]primitive.ObjectID, error) {
	return f[g], nil
}

// fakeCaps grants capabilities per user.
type fakeCaps struct {
	order []primitive.ObjectID
	grant map[primitive.ObjectID][]capability.Capability
}

func (f fakeCaps) HasCapability(_ context.Context, u primitive.ObjectID, c capability.Capability, _ capability.Context) (bool, error) {
	for _, have := range f.grant[u] {
		if have == c {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeCaps) UsersWithCapability(ctx context.Context, c capability.Capability, cm capability.Context) ([]primitive.ObjectID, error) {
	var out []primitive.ObjectID
	for _, u := range f.order {
		if ok, _ := f.HasCapability(ctx, u, c, cm); ok {
			out = append(out, u)
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

func (r *recordedEvents) count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.EventType == eventType {
			n++
		}
	}
	return n
}
