// internal/domain/models/discussion.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Discussion is a thread in a forum.
// GroupID nil means the discussion is visible to all participants.
type Discussion struct {
	ID           primitive.ObjectID  `bson:"_id" json:"id"`
	ForumID      primitive.ObjectID  `bson:"forum_id" json:"forum_id"`
	CourseID     primitive.ObjectID  `bson:"course_id" json:"course_id"`
	GroupID      *primitive.ObjectID `bson:"group_id,omitempty" json:"group_id,omitempty"`
	Name         string              `bson:"name" json:"name"`
	TimeModified time.Time           `bson:"time_modified" json:"time_modified"`
}
