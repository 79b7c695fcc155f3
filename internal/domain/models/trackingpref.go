// internal/domain/models/trackingpref.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrackingPref marks a forum the user has opted out of read tracking for.
// No document means the user tracks the forum.
type TrackingPref struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	ForumID   primitive.ObjectID `bson:"forum_id" json:"forum_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
