// internal/domain/models/coursegroup.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CourseGroup is a set of course participants used to scope activities.
type CourseGroup struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	CourseID  primitive.ObjectID `bson:"course_id" json:"course_id"`
	Name      string             `bson:"name" json:"name"`
	NameCI    string             `bson:"name_ci" json:"name_ci"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// GroupMembership links a user to a course group.
// Exactly one document per (group_id, user_id).
type GroupMembership struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID   primitive.ObjectID `bson:"group_id" json:"group_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	CourseID  primitive.ObjectID `bson:"course_id" json:"course_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
