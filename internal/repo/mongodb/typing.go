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

type TypingRepository interface {
	// Upsert refreshes the marker's expiry for the (conversation, user)
	// pair, creating it when absent.
	Upsert(ctx context.Context, conversationID, userID primitive.ObjectID, expiresAt time.Time) error
	// ListActive returns unexpired markers for the conversation. Expired
	// markers stay in place until the next signal overwrites them.
	ListActive(ctx context.Context, conversationID primitive.ObjectID, now time.Time) ([]*models.TypingMarker, error)
}

type typingRepo struct {
	collection *mongo.Collection
}

func NewTypingRepository(db *DB) TypingRepository {
	return &typingRepo{
		collection: db.Database.Collection("typing"),
	}
}

func (r *typingRepo) Upsert(ctx context.Context, conversationID, userID primitive.ObjectID, expiresAt time.Time) error {
	filter := bson.M{
		"conversation_id": conversationID,
		"user_id":         userID,
	}
	update := bson.M{
		"$set": bson.M{"expires_at": expiresAt},
		"$setOnInsert": bson.M{
			"_id":             primitive.NewObjectID(),
			"conversation_id": conversationID,
			"user_id":         userID,
		},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("upsert typing marker: %w", err)
	}
	return nil
}

func (r *typingRepo) ListActive(ctx context.Context, conversationID primitive.ObjectID, now time.Time) ([]*models.TypingMarker, error) {
	filter := bson.M{
		"conversation_id": conversationID,
		"expires_at":      bson.M{"$gt": now},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list typing markers: %w", err)
	}
	defer cursor.Close(ctx)

	var markers []*models.TypingMarker
	if err := cursor.All(ctx, &markers); err != nil {
		return nil, fmt.Errorf("decode typing markers: %w", err)
	}
	return markers, nil
}
