// internal/domain/models/enrolment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Course roles.
const (
	CourseRoleStudent        = "student"
	CourseRoleTeacher        = "teacher"
	CourseRoleEditingTeacher = "editingteacher"
	CourseRoleManager        = "manager"
)

// Enrolment is the authoritative join between users and courses.
// Exactly one document per (course_id, user_id).
type Enrolment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CourseID  primitive.ObjectID `bson:"course_id" json:"course_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role      string             `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
