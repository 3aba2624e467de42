// internal/app/store/attempts/attemptstore.go
package attemptstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store persists rate-limit attempt records in the login_attempts
// collection. It implements ratelimit.AttemptStore.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("login_attempts")}
}

// DeleteBefore removes attempts for identifier stamped before cutoff.
func (s *Store) DeleteBefore(ctx context.Context, identifier string, cutoff time.Time) error {
	_, err := s.c.DeleteMany(ctx, bson.M{
		"identifier": identifier,
		"created_at": bson.M{"$lt": cutoff},
	})
	return err
}

// CountSince counts attempts for identifier stamped at or after cutoff.
func (s *Store) CountSince(ctx context.Context, identifier string, cutoff time.Time) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"identifier": identifier,
		"created_at": bson.M{"$gte": cutoff},
	})
}

// Record appends one attempt row.
func (s *Store) Record(ctx context.Context, identifier string, at time.Time) error {
	_, err := s.c.InsertOne(ctx, bson.M{
		"identifier": identifier,
		"created_at": at.UTC(),
	})
	return err
}

// DeleteAll clears every attempt for identifier.
func (s *Store) DeleteAll(ctx context.Context, identifier string) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"identifier": identifier})
	return err
}
