// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Site roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
	RoleGuest = "guest"
)

// Account statuses.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// User is a site account.
//
// NOTE:
//   - Course roles live in the enrolments collection, not here.
//   - AutoSubscribe and TrackForums are durable preferences; the
//     "currently editing subscribers" flag is session state and is never
//     stored on the user.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName     string             `bson:"full_name" json:"full_name"`
	FullNameCI   string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	LoginID      string             `bson:"login_id" json:"login_id"`
	LoginIDCI    string             `bson:"login_id_ci" json:"login_id_ci"`
	Email        string             `bson:"email" json:"email"`
	Role         string             `bson:"role" json:"role"` // admin | user | guest
	Status       string             `bson:"status,omitempty" json:"status,omitempty"`
	AuthMethod   string             `bson:"auth_method,omitempty" json:"auth_method,omitempty"` // trust | password
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`

	AutoSubscribe bool `bson:"autosubscribe" json:"autosubscribe"`
	TrackForums   bool `bson:"track_forums" json:"track_forums"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsGuest reports whether the account is the shared guest login.
func (u User) IsGuest() bool {
	return u.Role == RoleGuest
}
