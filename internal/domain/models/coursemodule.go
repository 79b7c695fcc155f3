// internal/domain/models/coursemodule.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Group modes for a course module.
const (
	GroupModeNone     = "none"
	GroupModeSeparate = "separate"
	GroupModeVisible  = "visible"
)

// CourseModule places a forum in its course and carries the
// activity-level settings: visibility and group mode.
// Exactly one document per forum.
type CourseModule struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	CourseID  primitive.ObjectID `bson:"course_id" json:"course_id"`
	ForumID   primitive.ObjectID `bson:"forum_id" json:"forum_id"`
	Visible   bool               `bson:"visible" json:"visible"`
	GroupMode string             `bson:"group_mode" json:"group_mode"`
}
