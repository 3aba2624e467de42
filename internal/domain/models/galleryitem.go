// internal/domain/models/galleryitem.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GalleryItem is an uploaded photo, attached to an event or to the
// site-wide "general" bucket when EventID is nil.
type GalleryItem struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	EventID    *primitive.ObjectID `bson:"event_id,omitempty" json:"event_id,omitempty"`
	FileRef    string              `bson:"file_ref" json:"file_ref"` // storage key, a uuid
	UploadedBy primitive.ObjectID  `bson:"uploaded_by" json:"uploaded_by"`
	Caption    string              `bson:"caption,omitempty" json:"caption,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
