// internal/app/store/coursegroups/coursegroupstore.go
package coursegroupstore

import (
	"context"
	"time"

	"github.com/dalemusser/twfhub/internal/app/system/normalize"
	"github.com/dalemusser/twfhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("course_groups")}
}

// GetByID loads a group. Returns mongo.ErrNoDocuments if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.CourseGroup, error) {
	var g models.CourseGroup
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	return g, err
}

// ListByCourse returns the groups of a course ordered by name.
func (s *Store) ListByCourse(ctx context.Context, courseID primitive.ObjectID) ([]models.CourseGroup, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"course_id": courseID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.CourseGroup
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a group.
func (s *Store) Create(ctx context.Context, g models.CourseGroup) (models.CourseGroup, error) {
	if g.ID.IsZero() {
		g.ID = primitive.NewObjectID()
	}
	g.Name = normalize.Name(g.Name)
	g.NameCI = text.Fold(g.Name)
	g.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.CourseGroup{}, err
	}
	return g, nil
}
