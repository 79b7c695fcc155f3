// internal/domain/models/post.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a single message in a discussion. Only the fields needed to
// compute unread state are modelled here.
type Post struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	DiscussionID primitive.ObjectID `bson:"discussion_id" json:"discussion_id"`
	ForumID      primitive.ObjectID `bson:"forum_id" json:"forum_id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	Subject      string             `bson:"subject" json:"subject"`
	Modified     time.Time          `bson:"modified" json:"modified"`
}
