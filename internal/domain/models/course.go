// internal/domain/models/course.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Course owns forums, enrolments and course groups.
type Course struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	FullName  string             `bson:"full_name" json:"full_name"`
	ShortName string             `bson:"short_name" json:"short_name"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
