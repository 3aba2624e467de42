// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a published community event people can register for.
//
// Events are only ever mutated by admins. Normal deletion is a soft
// deactivate (Active=false) so existing registrations keep a valid
// event reference; hard deletes are reserved for cleanup tooling.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"title_ci"`
	Description string             `bson:"description" json:"description"` // sanitized HTML
	StartsAt    time.Time          `bson:"starts_at" json:"starts_at"`
	Location    string             `bson:"location" json:"location"`
	Categories  []string           `bson:"categories,omitempty" json:"categories,omitempty"`
	Capacity    *int               `bson:"capacity,omitempty" json:"capacity,omitempty"` // nil = unlimited
	ImageRef    string             `bson:"image_ref,omitempty" json:"image_ref,omitempty"`
	Active      bool               `bson:"active" json:"active"`
	CreatedBy   primitive.ObjectID `bson:"created_by" json:"created_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
