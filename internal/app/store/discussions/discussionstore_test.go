package discussionstore_test

import (
	"errors"
	"testing"

	discussionstore "github.com/dalemusser/twfhub/internal/app/store/discussions"
	"github.com/dalemusser/twfhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestGetInForum(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	store := discussionstore.New(db)

	course := fx.CreateCourse(ctx, "Biology")
	forumA, _ := fx.CreateForum(ctx, course.ID, "A", testutil.ForumOptions{})
	forumB, _ := fx.CreateForum(ctx, course.ID, "B", testutil.ForumOptions{})
	d := fx.CreateDiscussion(ctx, forumA, "Cells", nil)

	if _, err := store.GetInForum(ctx, d.ID, forumA.ID); err != nil {
		t.Fatalf("GetInForum same forum: %v", err)
	}
	if _, err := store.GetInForum(ctx, d.ID, forumB.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("GetInForum other forum: %v, want ErrNoDocuments", err)
	}
}

func TestListByForum_GroupFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	store := discussionstore.New(db)

	course := fx.CreateCourse(ctx, "Biology")
	forum, _ := fx.CreateForum(ctx, course.ID, "General", testutil.ForumOptions{})
	g1 := fx.CreateGroup(ctx, course.ID, "Red")
	g2 := fx.CreateGroup(ctx, course.ID, "Blue")

	fx.CreateDiscussion(ctx, forum, "Everyone", nil)
	fx.CreateDiscussion(ctx, forum, "Red only", &g1.ID)
	fx.CreateDiscussion(ctx, forum, "Blue only", &g2.ID)

	tests := []struct {
		name  string
		group *primitive.ObjectID
		want  int
	}{
		{"no scope", nil, 3},
		{"red", &g1.ID, 2},
		{"blue", &g2.ID, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := store.ListByForum(ctx, forum.ID, tt.group)
			if err != nil {
				t.Fatalf("ListByForum: %v", err)
			}
			if len(list) != tt.want {
				t.Errorf("ListByForum = %d, want %d", len(list), tt.want)
			}
			ids, err := store.ListIDsByForum(ctx, forum.ID, tt.group)
			if err != nil {
				t.Fatalf("ListIDsByForum: %v", err)
			}
			if len(ids) != tt.want {
				t.Errorf("ListIDsByForum = %d, want %d", len(ids), tt.want)
			}
		})
	}
}
