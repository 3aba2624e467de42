// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/communityhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB establishes the MongoDB connection and verifies it with a ping.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	connectCtx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(appCfg.MongoURI))
	if err != nil {
		return DBDeps{}, err
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, timeouts.Ping())
	defer cancelPing()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, err
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema creates the indexes the stores rely on. All index builds
// are idempotent; rerunning on startup is safe.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	schemaCtx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	// users: unique email is what makes sign-in and profile provisioning
	// race-safe.
	_, err := db.Collection("users").Indexes().CreateMany(schemaCtx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "full_name_ci", Value: 1}}},
	})
	if err != nil {
		return err
	}

	// registrations: at most one registration per (event, user). Duplicate
	// inserts surface as a conflict from the registration store.
	_, err = db.Collection("registrations").Indexes().CreateMany(schemaCtx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return err
	}

	// events: the public listing filters active and sorts by start time.
	_, err = db.Collection("events").Indexes().CreateOne(schemaCtx, mongo.IndexModel{
		Keys: bson.D{{Key: "active", Value: 1}, {Key: "starts_at", Value: 1}},
	})
	if err != nil {
		return err
	}

	// login_attempts: the limiter's delete/count pair scans by identifier
	// and timestamp.
	_, err = db.Collection("login_attempts").Indexes().CreateOne(schemaCtx, mongo.IndexModel{
		Keys: bson.D{{Key: "identifier", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return err
	}

	// gallery_items: lists filter by event and sort newest first.
	_, err = db.Collection("gallery_items").Indexes().CreateOne(schemaCtx, mongo.IndexModel{
		Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return err
	}

	// oauth_states: single-use tokens, swept by TTL once expired.
	_, err = db.Collection("oauth_states").Indexes().CreateMany(schemaCtx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "state", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	if err != nil {
		return err
	}

	logger.Info("schema ensured")
	return nil
}
