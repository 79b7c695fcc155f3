// internal/app/store/coursemodules/coursemodulestore.go
package coursemodulestore

import (
	"context"
	"errors"

	"github.com/dalemusser/twfhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("course_modules")}
}

var ErrDuplicateModule = errors.New("forum already has a course module")

var errBadGroupMode = errors.New(`group_mode must be "none"|"separate"|"visible"`)

// GetByForum loads the module that places a forum in its course.
// Returns mongo.ErrNoDocuments if absent.
func (s *Store) GetByForum(ctx context.Context, forumID primitive.ObjectID) (models.CourseModule, error) {
	var cm models.CourseModule
	err := s.c.FindOne(ctx, bson.M{"forum_id": forumID}).Decode(&cm)
	return cm, err
}

// ListByCourse returns the modules of a course keyed by forum id.
func (s *Store) ListByCourse(ctx context.Context, courseID primitive.ObjectID) (map[primitive.ObjectID]models.CourseModule, error) {
	cur, err := s.c.Find(ctx, bson.M{"course_id": courseID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make(map[primitive.ObjectID]models.CourseModule)
	for cur.Next(ctx) {
		var cm models.CourseModule
		if err := cur.Decode(&cm); err != nil {
			return nil, err
		}
		out[cm.ForumID] = cm
	}
	return out, cur.Err()
}

// Create inserts the module for a forum. Group mode defaults to none.
func (s *Store) Create(ctx context.Context, cm models.CourseModule) (models.CourseModule, error) {
	if cm.GroupMode == "" {
		cm.GroupMode = models.GroupModeNone
	}
	switch cm.GroupMode {
	case models.GroupModeNone, models.GroupModeSeparate, models.GroupModeVisible:
	default:
		return models.CourseModule{}, errBadGroupMode
	}
	if cm.ID.IsZero() {
		cm.ID = primitive.NewObjectID()
	}
	if _, err := s.c.InsertOne(ctx, cm); err != nil {
		if wafflemongo.IsDup(err) {
			return models.CourseModule{}, ErrDuplicateModule
		}
		return models.CourseModule{}, err
	}
	return cm, nil
}

// SetVisible shows or hides the module.
func (s *Store) SetVisible(ctx context.Context, id primitive.ObjectID, visible bool) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"visible": visible}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
