// internal/app/store/subscriptions/subscriptionstore.go
package subscriptionstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("subscriptions")}
}

// Exists reports whether a forum-level subscription row exists.
func (s *Store) Exists(ctx context.Context, userID, forumID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "forum_id": forumID}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Add inserts the subscription. created is false when it already existed.
func (s *Store) Add(ctx context.Context, userID, forumID primitive.ObjectID) (created bool, err error) {
	_, err = s.c.InsertOne(ctx, bson.M{
		"user_id":    userID,
		"forum_id":   forumID,
		"created_at": time.Now().UTC(),
	})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Remove deletes the subscription. removed is false when there was none.
func (s *Store) Remove(ctx context.Context, userID, forumID primitive.ObjectID) (removed bool, err error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID, "forum_id": forumID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (s *Store) distinctIDs(ctx context.Context, field string, filter bson.M) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{field: 1}).SetSort(bson.D{{Key: field, Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row bson.M
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		if id, ok := row[field].(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, cur.Err()
}

// ListUserIDsByForum returns the IDs of users subscribed to a forum.
func (s *Store) ListUserIDsByForum(ctx context.Context, forumID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.distinctIDs(ctx, "user_id", bson.M{"forum_id": forumID})
}

// ListForumIDsByUser returns the IDs of forums a user is subscribed to.
func (s *Store) ListForumIDsByUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.distinctIDs(ctx, "forum_id", bson.M{"user_id": userID})
}
