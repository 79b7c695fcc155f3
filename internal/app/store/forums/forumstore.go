// internal/app/store/forums/forumstore.go
package forumstore

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
	return &Store{c: db.Collection("forums")}
}

var (
	errBadTracking     = errors.New(`tracking_type must be "off"|"optional"|"forced"`)
	errBadSubscription = errors.New(`subscription_mode must be "optional"|"forced"|"auto"|"disallowed"`)
)

// GetByID loads a forum. Returns mongo.ErrNoDocuments if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Forum, error) {
	var f models.Forum
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&f)
	return f, err
}

// ListByCourse returns the forums of a course ordered by name.
func (s *Store) ListByCourse(ctx context.Context, courseID primitive.ObjectID) ([]models.Forum, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"course_id": courseID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Forum
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByIDs returns the forums with the given IDs. Missing IDs are skipped.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Forum, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Forum
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a forum after validating its mode fields.
// Empty modes default to optional tracking and optional subscription.
func (s *Store) Create(ctx context.Context, f models.Forum) (models.Forum, error) {
	if f.TrackingType == "" {
		f.TrackingType = models.TrackingOptional
	}
	if f.SubscriptionMode == "" {
		f.SubscriptionMode = models.SubscriptionOptional
	}
	switch f.TrackingType {
	case models.TrackingOff, models.TrackingOptional, models.TrackingForced:
	default:
		return models.Forum{}, errBadTracking
	}
	switch f.SubscriptionMode {
	case models.SubscriptionOptional, models.SubscriptionForced, models.SubscriptionAuto, models.SubscriptionDisallowed:
	default:
		return models.Forum{}, errBadSubscription
	}

	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, f); err != nil {
		return models.Forum{}, err
	}
	return f, nil
}
