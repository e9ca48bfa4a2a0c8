package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// EnsureIndexes creates the indexes the repositories rely on. Safe to call
// on every startup.
func EnsureIndexes(ctx context.Context, db *DB) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	specs := map[string][]mongo.IndexModel{
		"users": {
			{
				Keys:    bson.D{{Key: "external_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"conversations": {
			{
				// Partial: groups have no direct_key.
				Keys: bson.D{{Key: "direct_key", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"direct_key": bson.M{"$type": "string"}}),
			},
			{Keys: bson.D{{Key: "members", Value: 1}}},
		},
		"messages": {
			{Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		"presence": {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"typing": {
			{
				Keys:    bson.D{{Key: "conversation_id", Value: 1}, {Key: "user_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
	}

	for coll, indexes := range specs {
		if _, err := db.Database.Collection(coll).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("create indexes for %s: %w", coll, err)
		}
	}
	return nil
}
