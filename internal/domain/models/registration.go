// internal/domain/models/registration.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Registration links a user to an event, either as a participant or a
// volunteer.
//
// Status and Role are stored in the canonical lowercase vocabulary
// (normalize.Status / normalize.RegRole). Historical rows may still carry
// legacy spellings from two earlier schema generations; every read path
// funnels them through the normalize package at the store boundary, so
// nothing above the stores ever sees a raw storage value.
//
// At most one registration exists per (event, user) pair. This is enforced
// by a unique compound index created in bootstrap.EnsureSchema; a duplicate
// insert surfaces as a Conflict from the registration store.
type Registration struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID primitive.ObjectID `bson:"event_id" json:"event_id"`
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role    string             `bson:"role" json:"role"`     // participant | volunteer
	Status  string             `bson:"status" json:"status"` // pending | approved | rejected | cancelled
	Notes   string             `bson:"notes,omitempty" json:"notes,omitempty"`

	// Contact snapshot taken at registration time, so later profile edits
	// don't rewrite what the organizer was told.
	ContactName  string `bson:"contact_name,omitempty" json:"contact_name,omitempty"`
	ContactPhone string `bson:"contact_phone,omitempty" json:"contact_phone,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
