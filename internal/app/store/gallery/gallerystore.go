// internal/app/store/gallery/gallerystore.go
package gallerystore

import (
	"context"
	"time"

	"github.com/dalemusser/communityhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("gallery_items")}
}

// Create inserts a gallery item, assigning a fresh file reference the
// upload pipeline stores the bytes under.
func (s *Store) Create(ctx context.Context, item models.GalleryItem) (models.GalleryItem, error) {
	item.ID = primitive.NewObjectID()
	if item.FileRef == "" {
		item.FileRef = uuid.NewString()
	}
	item.CreatedAt = time.Now()

	if _, err := s.c.InsertOne(ctx, item); err != nil {
		return models.GalleryItem{}, err
	}
	return item, nil
}

// ListByEvent returns items for one event, or the general bucket when
// eventID is nil. Newest first.
func (s *Store) ListByEvent(ctx context.Context, eventID *primitive.ObjectID) ([]models.GalleryItem, error) {
	filter := bson.M{}
	if eventID != nil {
		filter["event_id"] = *eventID
	} else {
		filter["event_id"] = bson.M{"$exists": false}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.GalleryItem
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRecent returns the newest items across all buckets.
func (s *Store) ListRecent(ctx context.Context, limit int64) ([]models.GalleryItem, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.GalleryItem
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
