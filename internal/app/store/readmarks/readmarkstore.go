// internal/app/store/readmarks/readmarkstore.go
package readmarkstore

import (
	"context"
	"time"

	"github.com/dalemusser/twfhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store keeps one read mark per (user_id, discussion_id). The unique index
// on that pair is created by system/indexes.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("read_marks")}
}

func upsertModel(userID, forumID, discussionID primitive.ObjectID, at time.Time) mongo.WriteModel {
	return mongo.NewUpdateOneModel().
		SetFilter(bson.M{"user_id": userID, "discussion_id": discussionID}).
		SetUpdate(bson.M{
			"$set":         bson.M{"last_read": at, "forum_id": forumID},
			"$setOnInsert": bson.M{"first_read": at},
		}).
		SetUpsert(true)
}

// Upsert marks a discussion read at the given time. first_read is only
// written when the mark is created.
func (s *Store) Upsert(ctx context.Context, userID, forumID, discussionID primitive.ObjectID, at time.Time) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": userID, "discussion_id": discussionID},
		bson.M{
			"$set":         bson.M{"last_read": at, "forum_id": forumID},
			"$setOnInsert": bson.M{"first_read": at},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// UpsertMany marks every discussion in discussionIDs read in one unordered
// bulk write. Returns the number of marks created or changed.
func (s *Store) UpsertMany(ctx context.Context, userID, forumID primitive.ObjectID, discussionIDs []primitive.ObjectID, at time.Time) (int, error) {
	if len(discussionIDs) == 0 {
		return 0, nil
	}
	writes := make([]mongo.WriteModel, 0, len(discussionIDs))
	for _, d := range discussionIDs {
		writes = append(writes, upsertModel(userID, forumID, d, at))
	}
	res, err := s.c.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, err
	}
	return int(res.UpsertedCount + res.ModifiedCount), nil
}

// Delete removes the mark for one discussion. Absence is not an error.
func (s *Store) Delete(ctx context.Context, userID, discussionID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID, "discussion_id": discussionID})
	return err
}

// DeleteByForum removes every mark the user holds in a forum.
func (s *Store) DeleteByForum(ctx context.Context, userID, forumID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID, "forum_id": forumID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListForDiscussions returns the user's marks for the given discussions.
func (s *Store) ListForDiscussions(ctx context.Context, userID primitive.ObjectID, discussionIDs []primitive.ObjectID) ([]models.ReadMark, error) {
	if len(discussionIDs) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID, "discussion_id": bson.M{"$in": discussionIDs}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ReadMark
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteOlderThan removes marks whose last_read is before cutoff.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"last_read": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
