// internal/app/system/profilesync/profilesync_test.go

package profilesync

import (
	"context"
	"errors"
	"testing"

	userstore "github.com/dalemusser/communityhub/internal/app/store/users"
	"github.com/dalemusser/communityhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type memUserStore struct {
	byEmail map[string]models.User
	byID    map[primitive.ObjectID]models.User

	creates  int
	getErr   error
	missNext bool
}

func newMemUserStore() *memUserStore {
	return &memUserStore{
		byEmail: map[string]models.User{},
		byID:    map[primitive.ObjectID]models.User{},
	}
}

func (m *memUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.missNext {
		m.missNext = false
		return nil, mongo.ErrNoDocuments
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &u, nil
}

func (m *memUserStore) Create(_ context.Context, u models.User) (models.User, error) {
	m.creates++
	if _, dup := m.byEmail[u.Email]; dup {
		return models.User{}, userstore.ErrDuplicateEmail
	}
	u.ID = primitive.NewObjectID()
	m.byEmail[u.Email] = u
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUserStore) UpdateProfile(_ context.Context, id primitive.ObjectID, upd userstore.ProfileUpdate) error {
	u, ok := m.byID[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	m.byID[id] = u
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUserStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &u, nil
}

func TestOnSignInExistingUserUntouched(t *testing.T) {
	store := newMemUserStore()
	existing, _ := store.Create(context.Background(), models.User{
		FullName: "Budi Santoso", Email: "budi@example.com", Role: "volunteer", Status: "active",
	})
	store.creates = 0

	s := New(store, zap.NewNop())
	got, err := s.OnSignIn(context.Background(), Identity{Email: "Budi@Example.com", Name: "Someone Else", AuthMethod: "google"})
	if err != nil {
		t.Fatalf("OnSignIn: %v", err)
	}
	if got.ID != existing.ID {
		t.Fatalf("expected existing profile, got %v", got.ID)
	}
	if got.Role != "volunteer" || got.FullName != "Budi Santoso" {
		t.Fatalf("existing profile must not be rewritten: %+v", got)
	}
	if store.creates != 0 {
		t.Fatalf("expected no create, got %d", store.creates)
	}
}

func TestOnSignInProvisionsWithDefaults(t *testing.T) {
	store := newMemUserStore()
	s := New(store, zap.NewNop())

	got, err := s.OnSignIn(context.Background(), Identity{Email: "New.Person@Example.com", AuthMethod: "google"})
	if err != nil {
		t.Fatalf("OnSignIn: %v", err)
	}
	if got.Role != "user" {
		t.Fatalf("provisioned role = %q, want %q", got.Role, "user")
	}
	if got.Status != "active" {
		t.Fatalf("provisioned status = %q, want %q", got.Status, "active")
	}
	if got.FullName != "new.person" {
		t.Fatalf("name should fall back to the email local-part, got %q", got.FullName)
	}
	if got.Email != "new.person@example.com" {
		t.Fatalf("email not normalized: %q", got.Email)
	}
	if store.creates != 1 {
		t.Fatalf("expected exactly one create, got %d", store.creates)
	}
}

func TestOnSignInPrefersIdentityName(t *testing.T) {
	store := newMemUserStore()
	s := New(store, zap.NewNop())

	got, err := s.OnSignIn(context.Background(), Identity{
		Email: "ayu@example.com", Name: "  Ayu Lestari  ", AuthMethod: "google",
	})
	if err != nil {
		t.Fatalf("OnSignIn: %v", err)
	}
	if got.FullName != "Ayu Lestari" {
		t.Fatalf("identity name should win, got %q", got.FullName)
	}
}

func TestOnSignInPropagatesStoreErrors(t *testing.T) {
	store := newMemUserStore()
	boom := errors.New("connection reset")
	store.getErr = boom

	s := New(store, zap.NewNop())
	if _, err := s.OnSignIn(context.Background(), Identity{Email: "x@example.com"}); !errors.Is(err, boom) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
	if store.creates != 0 {
		t.Fatalf("must not provision on an unknown error, creates=%d", store.creates)
	}
}

func TestOnSignInLosesProvisioningRace(t *testing.T) {
	store := newMemUserStore()
	winner, _ := store.Create(context.Background(), models.User{
		FullName: "Winner", Email: "race@example.com", Role: "user", Status: "active",
	})
	store.creates = 0

	// First lookup misses, as if another writer inserted between our
	// lookup and our create. Create then hits the duplicate and the
	// retry lookup must return the winner's row.
	store.missNext = true

	s := New(store, zap.NewNop())
	got, err := s.OnSignIn(context.Background(), Identity{Email: "race@example.com"})
	if err != nil {
		t.Fatalf("OnSignIn after race: %v", err)
	}
	if got.ID != winner.ID {
		t.Fatalf("expected the winner's row, got %v", got.ID)
	}
	if store.creates != 1 {
		t.Fatalf("expected one attempted create, got %d", store.creates)
	}
}

func TestUpdateProfileReturnsMergedUser(t *testing.T) {
	store := newMemUserStore()
	u, _ := store.Create(context.Background(), models.User{
		FullName: "Sari", Email: "sari@example.com", Role: "user", Status: "active",
	})

	s := New(store, zap.NewNop())
	phone := "+62 812 0000 1111"
	got, err := s.UpdateProfile(context.Background(), u.ID, userstore.ProfileUpdate{Phone: &phone})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got.Phone != phone {
		t.Fatalf("phone not merged: %q", got.Phone)
	}
	if got.FullName != "Sari" {
		t.Fatalf("untouched field changed: %q", got.FullName)
	}
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	store := newMemUserStore()
	s := New(store, zap.NewNop())

	_, err := s.UpdateProfile(context.Background(), primitive.NewObjectID(), userstore.ProfileUpdate{})
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments, got %v", err)
	}
}
