// internal/domain/models/forum.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tracking types control whether read/unread state is kept for a forum.
const (
	TrackingOff      = "off"
	TrackingOptional = "optional"
	TrackingForced   = "forced"
)

// Subscription modes control how users become subscribed to a forum.
//
//   - optional:   users choose
//   - forced:     every enrolled user is subscribed, nobody can leave
//   - auto:       users start subscribed but may unsubscribe
//   - disallowed: nobody can subscribe
const (
	SubscriptionOptional   = "optional"
	SubscriptionForced     = "forced"
	SubscriptionAuto       = "auto"
	SubscriptionDisallowed = "disallowed"
)

// Forum is one twf activity inside a course.
//
// Intro is stored as author HTML and must be sanitized before display.
type Forum struct {
	ID               primitive.ObjectID `bson:"_id" json:"id"`
	CourseID         primitive.ObjectID `bson:"course_id" json:"course_id"`
	Name             string             `bson:"name" json:"name"`
	Intro            string             `bson:"intro" json:"intro"`
	TrackingType     string             `bson:"tracking_type" json:"tracking_type"`
	SubscriptionMode string             `bson:"subscription_mode" json:"subscription_mode"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}
