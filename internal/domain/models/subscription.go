// internal/domain/models/subscription.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscription is the forum-level subscription of one user.
// Exactly one document per (user_id, forum_id). Ignored for forced forums.
type Subscription struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	ForumID   primitive.ObjectID `bson:"forum_id" json:"forum_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Discussion subscription preferences.
const (
	DiscussionSubscribed   = "subscribed"
	DiscussionUnsubscribed = "unsubscribed"
)

// DiscussionSubscription overrides the forum-level default for one
// discussion. Exactly one document per (user_id, discussion_id).
type DiscussionSubscription struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	ForumID      primitive.ObjectID `bson:"forum_id" json:"forum_id"`
	DiscussionID primitive.ObjectID `bson:"discussion_id" json:"discussion_id"`
	Preference   string             `bson:"preference" json:"preference"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
