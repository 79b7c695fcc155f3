// internal/app/store/trackprefs/trackprefstore.go
package trackprefstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store holds opt-out rows: a document for (user, forum) means the user
// does not track that forum.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tracking_prefs")}
}

// Exists reports whether the user has opted out of tracking the forum.
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

// Add records the opt-out. An existing row is not an error.
func (s *Store) Add(ctx context.Context, userID, forumID primitive.ObjectID) error {
	_, err := s.c.InsertOne(ctx, bson.M{
		"user_id":    userID,
		"forum_id":   forumID,
		"created_at": time.Now().UTC(),
	})
	if err != nil && !wafflemongo.IsDup(err) {
		return err
	}
	return nil
}

// Remove deletes the opt-out. Absence is not an error.
func (s *Store) Remove(ctx context.Context, userID, forumID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID, "forum_id": forumID})
	return err
}
