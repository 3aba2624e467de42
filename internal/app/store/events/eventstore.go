// internal/app/store/events/eventstore.go
package eventstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/communityhub/internal/app/system/normalize"
	"github.com/dalemusser/communityhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// descPolicy sanitizes event descriptions once at the storage boundary so
// templates can render the stored HTML directly.
var descPolicy = bluemonday.UGCPolicy()

var (
	errNoTitle  = errors.New("event title is required")
	errPastDate = errors.New("event date must be in the future")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("events")}
}

// GetByID loads one event. Returns mongo.ErrNoDocuments if missing.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var e models.Event
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListActive returns active events ordered soonest-first.
func (s *Store) ListActive(ctx context.Context) ([]models.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "starts_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Event
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAll returns every event, newest first. Admin listings.
func (s *Store) ListAll(ctx context.Context) ([]models.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Event
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a new event after validating and sanitizing fields.
func (s *Store) Create(ctx context.Context, e models.Event) (models.Event, error) {
	e.Title = normalize.Name(e.Title)
	if e.Title == "" {
		return models.Event{}, errNoTitle
	}
	if e.StartsAt.Before(time.Now()) {
		return models.Event{}, errPastDate
	}

	e.ID = primitive.NewObjectID()
	e.TitleCI = text.Fold(e.Title)
	e.Description = descPolicy.Sanitize(e.Description)
	e.Active = true

	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// Update holds the mutable event fields for admin edits.
type Update struct {
	Title       string
	Description string
	StartsAt    time.Time
	Location    string
	Categories  []string
	Capacity    *int
	ImageRef    string
}

// Update rewrites an event's editable fields.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) error {
	title := normalize.Name(upd.Title)
	if title == "" {
		return errNoTitle
	}

	set := bson.M{
		"title":       title,
		"title_ci":    text.Fold(title),
		"description": descPolicy.Sanitize(upd.Description),
		"starts_at":   upd.StartsAt,
		"location":    upd.Location,
		"categories":  upd.Categories,
		"capacity":    upd.Capacity,
		"image_ref":   upd.ImageRef,
		"updated_at":  time.Now(),
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Deactivate soft-deletes an event. Registrations keep a valid reference;
// the event just stops being listed.
func (s *Store) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"active":     false,
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
