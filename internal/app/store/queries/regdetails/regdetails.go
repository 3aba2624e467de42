// internal/app/store/queries/regdetails/regdetails.go

// Package regdetails answers the joined question "who registered for
// what": registrations with their event and user embedded. All fetches go
// through the resolver, so listings keep working when the declared joins
// cannot be served, and a registration pointing at a deleted event or user
// still appears with a placeholder instead of failing the whole page.
package regdetails

import (
	"context"
	"time"

	"github.com/dalemusser/communityhub/internal/app/store/resolve"
	"github.com/dalemusser/communityhub/internal/app/system/normalize"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventSummary is the slice of an event a registration listing shows.
type EventSummary struct {
	Title    string    `bson:"title" json:"title"`
	StartsAt time.Time `bson:"starts_at" json:"starts_at"`
	Location string    `bson:"location" json:"location"`
	Active   bool      `bson:"active" json:"active"`
}

// UserSummary is the slice of a user a moderation listing shows.
type UserSummary struct {
	FullName string `bson:"full_name" json:"full_name"`
	Email    string `bson:"email" json:"email"`
}

// RegistrationDetail is one merged row.
type RegistrationDetail struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	EventID      primitive.ObjectID `bson:"event_id" json:"event_id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role         string             `bson:"role" json:"role"`
	Status       string             `bson:"status" json:"status"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	ContactName  string             `bson:"contact_name,omitempty" json:"contact_name,omitempty"`
	ContactPhone string             `bson:"contact_phone,omitempty" json:"contact_phone,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`

	Event EventSummary `bson:"event" json:"event"`
	User  UserSummary  `bson:"user" json:"user"`
}

func eventRelation() resolve.Relation {
	return resolve.Relation{
		Name: "event", From: "events", LocalField: "event_id", ForeignField: "_id",
		Placeholder: bson.M{"title": "Unknown event", "active": false},
	}
}

func userRelation() resolve.Relation {
	return resolve.Relation{
		Name: "user", From: "users", LocalField: "user_id", ForeignField: "_id",
		Placeholder: bson.M{"full_name": "Unknown", "email": ""},
	}
}

// ListForModeration returns every registration with event and user
// context, newest first. Admin moderation view.
func ListForModeration(ctx context.Context, r *resolve.Resolver) ([]RegistrationDetail, error) {
	docs, err := r.FetchWithRelations(ctx, "registrations", bson.M{},
		bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}},
		[]resolve.Relation{eventRelation(), userRelation()})
	if err != nil {
		return nil, err
	}
	return decodeAll(docs)
}

// ListForEvent returns one event's registrations with user context.
func ListForEvent(ctx context.Context, r *resolve.Resolver, eventID primitive.ObjectID) ([]RegistrationDetail, error) {
	docs, err := r.FetchWithRelations(ctx, "registrations", bson.M{"event_id": eventID},
		bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
		[]resolve.Relation{userRelation()})
	if err != nil {
		return nil, err
	}
	return decodeAll(docs)
}

// ListForUser returns one user's registrations with event context,
// newest first. Powers "my registrations".
func ListForUser(ctx context.Context, r *resolve.Resolver, userID primitive.ObjectID) ([]RegistrationDetail, error) {
	docs, err := r.FetchWithRelations(ctx, "registrations", bson.M{"user_id": userID},
		bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}},
		[]resolve.Relation{eventRelation()})
	if err != nil {
		return nil, err
	}
	return decodeAll(docs)
}

// decodeAll converts merged documents into typed rows and canonicalizes
// status and role. This is the single point where raw storage vocabulary
// crosses into the application for joined listings.
func decodeAll(docs []bson.M) ([]RegistrationDetail, error) {
	out := make([]RegistrationDetail, 0, len(docs))
	for _, doc := range docs {
		raw, err := bson.Marshal(doc)
		if err != nil {
			return nil, err
		}
		var d RegistrationDetail
		if err := bson.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		d.Status = normalize.Status(d.Status)
		d.Role = normalize.RegRole(d.Role)
		out = append(out, d)
	}
	return out, nil
}
