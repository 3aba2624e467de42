// internal/app/store/oauthstate/oauthstate.go

// Package oauthstate persists short-lived OAuth state tokens so the
// callback can verify the flow started here. Tokens are single use:
// Validate consumes the record.
package oauthstate

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("oauth_states")}
}

type record struct {
	State     string    `bson:"state"`
	ReturnURL string    `bson:"return_url,omitempty"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// Save stores a state token with its return URL and expiry.
func (s *Store) Save(ctx context.Context, state, returnURL string, expiresAt time.Time) error {
	if state == "" {
		return errors.New("empty oauth state")
	}
	_, err := s.c.InsertOne(ctx, record{
		State:     state,
		ReturnURL: returnURL,
		ExpiresAt: expiresAt.UTC(),
	})
	return err
}

// Validate consumes the state token. It returns the stored return URL and
// whether the token was known and unexpired. Unknown and expired tokens
// are both reported as invalid, not as errors.
func (s *Store) Validate(ctx context.Context, state string) (returnURL string, valid bool, err error) {
	var rec record
	err = s.c.FindOneAndDelete(ctx, bson.M{"state": state}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", false, nil
		}
		return "", false, err
	}
	if time.Now().UTC().After(rec.ExpiresAt) {
		return "", false, nil
	}
	return rec.ReturnURL, true, nil
}
