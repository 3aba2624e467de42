// internal/app/system/profilesync/profilesync.go

// Package profilesync keeps authenticated identities and stored profiles in
// step. Signing in with an identity the store has never seen provisions a
// profile on the spot, so login and Google sign-in never strand a user
// without one.
package profilesync

import (
	"context"
	"errors"
	"strings"

	userstore "github.com/dalemusser/communityhub/internal/app/store/users"
	"github.com/dalemusser/communityhub/internal/app/system/normalize"
	"github.com/dalemusser/communityhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Identity is what an authentication flow knows about the person who just
// signed in, before the store is consulted.
type Identity struct {
	Email      string
	Name       string
	AuthMethod string
}

// UserStore is the slice of the user store the syncer needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, upd userstore.ProfileUpdate) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Syncer provisions and updates profiles around sign-in.
type Syncer struct {
	store UserStore
	log   *zap.Logger
}

// New constructs a Syncer over the given store.
func New(store UserStore, logger *zap.Logger) *Syncer {
	return &Syncer{store: store, log: logger}
}

// OnSignIn returns the stored profile for the identity, provisioning one
// when none exists. A provisioned profile gets role "user", active status,
// and a display name derived from the identity (falling back to the email
// local-part). Store errors other than "no such user" propagate unchanged.
func (s *Syncer) OnSignIn(ctx context.Context, id Identity) (*models.User, error) {
	email := normalize.Email(id.Email)

	u, err := s.store.GetByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	fresh := models.User{
		FullName:   displayName(id.Name, email),
		Email:      email,
		AuthMethod: id.AuthMethod,
		Role:       "user",
		Status:     "active",
	}
	created, err := s.store.Create(ctx, fresh)
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			// Lost a provisioning race; the other writer's row wins.
			return s.store.GetByEmail(ctx, email)
		}
		return nil, err
	}

	s.log.Info("provisioned profile on first sign-in",
		zap.String("email", email),
		zap.String("auth_method", created.AuthMethod))
	return &created, nil
}

// UpdateProfile persists the partial update and returns the merged user.
func (s *Syncer) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd userstore.ProfileUpdate) (*models.User, error) {
	if err := s.store.UpdateProfile(ctx, id, upd); err != nil {
		return nil, err
	}
	return s.store.GetByID(ctx, id)
}

// displayName prefers the identity's own name, then the email local-part.
func displayName(name, email string) string {
	name = normalize.Name(name)
	if name != "" {
		return name
	}
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
