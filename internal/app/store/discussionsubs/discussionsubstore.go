// internal/app/store/discussionsubs/discussionsubstore.go
package discussionsubstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/twfhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("discussion_subscriptions")}
}

var errBadPreference = errors.New(`preference must be "subscribed"|"unsubscribed"`)

// Get loads the override for one discussion. Returns mongo.ErrNoDocuments if none.
func (s *Store) Get(ctx context.Context, userID, discussionID primitive.ObjectID) (models.DiscussionSubscription, error) {
	var ds models.DiscussionSubscription
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "discussion_id": discussionID}).Decode(&ds)
	return ds, err
}

// Set writes the override for one discussion, creating it if needed.
func (s *Store) Set(ctx context.Context, userID, forumID, discussionID primitive.ObjectID, preference string) error {
	if preference != models.DiscussionSubscribed && preference != models.DiscussionUnsubscribed {
		return errBadPreference
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": userID, "discussion_id": discussionID},
		bson.M{"$set": bson.M{
			"forum_id":   forumID,
			"preference": preference,
			"updated_at": time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

// Delete removes the override for one discussion.
func (s *Store) Delete(ctx context.Context, userID, discussionID primitive.ObjectID) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID, "discussion_id": discussionID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// DeleteByForum removes every override the user holds in a forum.
func (s *Store) DeleteByForum(ctx context.Context, userID, forumID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID, "forum_id": forumID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteUnsubscribedByForum removes only the "unsubscribed" overrides in a forum.
func (s *Store) DeleteUnsubscribedByForum(ctx context.Context, userID, forumID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{
		"user_id":    userID,
		"forum_id":   forumID,
		"preference": models.DiscussionUnsubscribed,
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByUser removes every override the user holds anywhere.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountSubscribedByUser counts the user's "subscribed" overrides.
func (s *Store) CountSubscribedByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"user_id": userID, "preference": models.DiscussionSubscribed})
}
