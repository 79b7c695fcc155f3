// internal/app/store/enrolments/enrolmentstore.go
package enrolmentstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/twfhub/internal/domain/models"
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
	return &Store{c: db.Collection("enrolments")}
}

var ErrDuplicateEnrolment = errors.New("user is already enrolled in this course")

var errBadRole = errors.New(`role must be "student"|"teacher"|"editingteacher"|"manager"`)

// Get loads one user's enrolment. Returns mongo.ErrNoDocuments if not enrolled.
func (s *Store) Get(ctx context.Context, courseID, userID primitive.ObjectID) (models.Enrolment, error) {
	var e models.Enrolment
	err := s.c.FindOne(ctx, bson.M{"course_id": courseID, "user_id": userID}).Decode(&e)
	return e, err
}

// ListByCourse returns every enrolment in a course ordered by user_id.
func (s *Store) ListByCourse(ctx context.Context, courseID primitive.ObjectID) ([]models.Enrolment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "user_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"course_id": courseID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Enrolment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListCourseIDsByUser returns the courses a user is enrolled in.
func (s *Store) ListCourseIDsByUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	raw, err := s.c.Distinct(ctx, "course_id", bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	out := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(primitive.ObjectID); ok {
			out = append(out, id)
		}
	}
	return out, nil
}

// Add enrols a user with a course role.
func (s *Store) Add(ctx context.Context, courseID, userID primitive.ObjectID, role string) error {
	switch role {
	case models.CourseRoleStudent, models.CourseRoleTeacher, models.CourseRoleEditingTeacher, models.CourseRoleManager:
	default:
		return errBadRole
	}
	_, err := s.c.InsertOne(ctx, models.Enrolment{
		ID:        primitive.NewObjectID(),
		CourseID:  courseID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateEnrolment
		}
		return err
	}
	return nil
}
