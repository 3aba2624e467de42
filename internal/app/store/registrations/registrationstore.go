// internal/app/store/registrations/registrationstore.go
package registrationstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/communityhub/internal/app/store/storeerr"
	"github.com/dalemusser/communityhub/internal/app/system/normalize"
	"github.com/dalemusser/communityhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// notesPolicy strips all markup from free-text notes.
var notesPolicy = bluemonday.StrictPolicy()

// ErrAlreadyRegistered is returned when a user already holds a
// registration for the event. Backed by the unique (event_id, user_id)
// index declared in bootstrap.EnsureSchema.
var ErrAlreadyRegistered = errors.New("already registered for this event")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("registrations")}
}

// Create inserts a registration. Status starts as pending; role and status
// are canonicalized on the way in so only the canonical vocabulary is ever
// written by this code path.
func (s *Store) Create(ctx context.Context, reg models.Registration) (models.Registration, error) {
	reg.ID = primitive.NewObjectID()
	reg.Role = normalize.RegRole(reg.Role)
	reg.Status = normalize.StatusPending
	reg.Notes = notesPolicy.Sanitize(reg.Notes)

	now := time.Now()
	reg.CreatedAt = now
	reg.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, reg); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Registration{}, storeerr.New(storeerr.KindConflict, ErrAlreadyRegistered)
		}
		return models.Registration{}, err
	}
	return reg, nil
}

// GetByID loads one registration, with status and role canonicalized.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Registration, error) {
	var reg models.Registration
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&reg); err != nil {
		return nil, err
	}
	canonicalize(&reg)
	return &reg, nil
}

// ListByUser returns a user's registrations, newest first, canonicalized.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Registration, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Registration
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		canonicalize(&out[i])
	}
	return out, nil
}

// CountActiveForEvent counts registrations that hold or may hold a spot
// (pending or approved) for capacity checks.
func (s *Store) CountActiveForEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	// Both vocabularies' spellings of pending/approved count against
	// capacity; historical rows are not rewritten on read.
	return s.c.CountDocuments(ctx, bson.M{
		"event_id": eventID,
		"status": bson.M{"$in": []string{
			normalize.StatusPending, "PENDING", "menunggu",
			normalize.StatusApproved, "APPROVED", "CONFIRMED", "disetujui",
		}},
	})
}

// SetStatus writes a canonical status. Used by admin moderation
// (approve/reject) and owner cancellation.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	status = normalize.Status(status)
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// canonicalize absorbs both legacy vocabularies exactly once, at the
// storage boundary. Everything above the store sees canonical values only.
func canonicalize(reg *models.Registration) {
	reg.Status = normalize.Status(reg.Status)
	reg.Role = normalize.RegRole(reg.Role)
}
