// internal/app/store/posts/poststore.go
package poststore

import (
	"context"
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
	return &Store{c: db.Collection("posts")}
}

// Stamp is the part of a post that unread counting needs.
type Stamp struct {
	DiscussionID primitive.ObjectID `bson:"discussion_id"`
	Modified     time.Time          `bson:"modified"`
}

// ModifiedSince returns a stamp for every post in the given discussions
// modified strictly after cutoff.
func (s *Store) ModifiedSince(ctx context.Context, discussionIDs []primitive.ObjectID, cutoff time.Time) ([]Stamp, error) {
	if len(discussionIDs) == 0 {
		return nil, nil
	}
	filter := bson.M{
		"discussion_id": bson.M{"$in": discussionIDs},
		"modified":      bson.M{"$gt": cutoff},
	}
	opts := options.Find().SetProjection(bson.M{"discussion_id": 1, "modified": 1})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Stamp
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a post.
func (s *Store) Create(ctx context.Context, p models.Post) (models.Post, error) {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Modified.IsZero() {
		p.Modified = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Post{}, err
	}
	return p, nil
}
