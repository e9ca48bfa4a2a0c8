package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lqnhat/chatcore/internal/models"
)

type PresenceRepository interface {
	// Upsert records a heartbeat, keeping one record per user.
	Upsert(ctx context.Context, userID primitive.ObjectID, at time.Time) error
	// ListSince returns presence records with a heartbeat after the cutoff.
	ListSince(ctx context.Context, cutoff time.Time) ([]*models.Presence, error)
}

type presenceRepo struct {
	collection *mongo.Collection
}

func NewPresenceRepository(db *DB) PresenceRepository {
	return &presenceRepo{
		collection: db.Database.Collection("presence"),
	}
}

func (r *presenceRepo) Upsert(ctx context.Context, userID primitive.ObjectID, at time.Time) error {
	filter := bson.M{"user_id": userID}
	update := bson.M{
		"$set":         bson.M{"last_seen_at": at},
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID(), "user_id": userID},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("upsert presence: %w", err)
	}
	return nil
}

func (r *presenceRepo) ListSince(ctx context.Context, cutoff time.Time) ([]*models.Presence, error) {
	filter := bson.M{"last_seen_at": bson.M{"$gt": cutoff}}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list presence: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*models.Presence
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode presence: %w", err)
	}
	return records, nil
}
