// internal/app/store/discussions/discussionstore.go
package discussionstore

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
	return &Store{c: db.Collection("discussions")}
}

// GetInForum loads a discussion only if it belongs to forumID.
// Returns mongo.ErrNoDocuments otherwise.
func (s *Store) GetInForum(ctx context.Context, id, forumID primitive.ObjectID) (models.Discussion, error) {
	var d models.Discussion
	err := s.c.FindOne(ctx, bson.M{"_id": id, "forum_id": forumID}).Decode(&d)
	return d, err
}

// groupFilter matches discussions of groupID plus those open to all
// participants (no group_id). A nil groupID matches everything.
func groupFilter(forumID primitive.ObjectID, groupID *primitive.ObjectID) bson.M {
	f := bson.M{"forum_id": forumID}
	if groupID != nil {
		f["$or"] = []bson.M{
			{"group_id": *groupID},
			{"group_id": bson.M{"$exists": false}},
			{"group_id": nil},
		}
	}
	return f
}

// ListByForum returns discussions newest first, optionally restricted to a group.
func (s *Store) ListByForum(ctx context.Context, forumID primitive.ObjectID, groupID *primitive.ObjectID) ([]models.Discussion, error) {
	opts := options.Find().SetSort(bson.D{{Key: "time_modified", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, groupFilter(forumID, groupID), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Discussion
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListIDsByForum is ListByForum projected to _id only.
func (s *Store) ListIDsByForum(ctx context.Context, forumID primitive.ObjectID, groupID *primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := s.c.Find(ctx, groupFilter(forumID, groupID), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	return ids, cur.Err()
}

// Create inserts a discussion.
func (s *Store) Create(ctx context.Context, d models.Discussion) (models.Discussion, error) {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	if d.TimeModified.IsZero() {
		d.TimeModified = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return models.Discussion{}, err
	}
	return d, nil
}
