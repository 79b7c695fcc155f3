// internal/domain/models/readmark.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReadMark records how far a user has read in one discussion.
// Exactly one document per (user_id, discussion_id). Posts modified after
// LastRead are unread.
type ReadMark struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	ForumID      primitive.ObjectID `bson:"forum_id" json:"forum_id"`
	DiscussionID primitive.ObjectID `bson:"discussion_id" json:"discussion_id"`
	FirstRead    time.Time          `bson:"first_read" json:"first_read"`
	LastRead     time.Time          `bson:"last_read" json:"last_read"`
}
