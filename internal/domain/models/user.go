// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the profile record for everyone who signs in: site admins,
// regular users, and users marked eligible to volunteer at events.
//
// NOTE:
//   - Event participation is not embedded on User.
//     Use the registrations collection to discover a user's registrations.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`
	AuthMethod string             `bson:"auth_method,omitempty" json:"auth_method,omitempty"` // password | google
	Role       string             `bson:"role" json:"role"`                                   // admin | user | volunteer
	Status     string             `bson:"status,omitempty" json:"status,omitempty"`           // active | disabled

	Phone  string `bson:"phone,omitempty" json:"phone,omitempty"`
	Bio    string `bson:"bio,omitempty" json:"bio,omitempty"`
	Avatar string `bson:"avatar,omitempty" json:"avatar,omitempty"` // avatar selector, not a file

	// Only set for auth_method == "password".
	PasswordHash *string `bson:"password_hash,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
