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

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error)
	// ListByConversation returns messages oldest first.
	ListByConversation(ctx context.Context, conversationID primitive.ObjectID) ([]*models.Message, error)
	// GetLatest returns (nil, nil) for an empty conversation.
	GetLatest(ctx context.Context, conversationID primitive.ObjectID) (*models.Message, error)
	// CountUnread counts messages from other senders created after the
	// read cursor. A zero cursor counts everything from others.
	CountUnread(ctx context.Context, conversationID, userID primitive.ObjectID, since time.Time) (int64, error)
	// SoftDelete clears the body permanently; reactions stay attached.
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
	// ToggleReaction removes the exact (user, emoji) pair when present,
	// otherwise appends it. Reports whether the pair was added.
	ToggleReaction(ctx context.Context, id, userID primitive.ObjectID, emoji string) (bool, error)
}

type messageRepo struct {
	collection *mongo.Collection
}

func NewMessageRepository(db *DB) MessageRepository {
	return &messageRepo{
		collection: db.Database.Collection("messages"),
	}
}

func (r *messageRepo) Create(ctx context.Context, message *models.Message) error {
	message.ID = primitive.NewObjectID()
	message.CreatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, message); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

func (r *messageRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	var message models.Message
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&message)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return &message, nil
}

func (r *messageRepo) ListByConversation(ctx context.Context, conversationID primitive.ObjectID) ([]*models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []*models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return messages, nil
}

func (r *messageRepo) GetLatest(ctx context.Context, conversationID primitive.ObjectID) (*models.Message, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var message models.Message
	err := r.collection.FindOne(ctx, bson.M{"conversation_id": conversationID}, opts).Decode(&message)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest message: %w", err)
	}
	return &message, nil
}

func (r *messageRepo) CountUnread(ctx context.Context, conversationID, userID primitive.ObjectID, since time.Time) (int64, error) {
	filter := bson.M{
		"conversation_id": conversationID,
		"sender_id":       bson.M{"$ne": userID},
		"created_at":      bson.M{"$gt": since},
	}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

func (r *messageRepo) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{
		"$set": bson.M{
			"is_deleted": true,
			"body":       "",
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("soft delete message: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *messageRepo) ToggleReaction(ctx context.Context, id, userID primitive.ObjectID, emoji string) (bool, error) {
	reaction := bson.M{"user_id": userID, "emoji": emoji}

	// Pull succeeds only when the exact pair is present, which makes the
	// toggle symmetric without a read-then-write window.
	pullFilter := bson.M{
		"_id":       id,
		"reactions": bson.M{"$elemMatch": reaction},
	}
	result, err := r.collection.UpdateOne(ctx, pullFilter, bson.M{"$pull": bson.M{"reactions": reaction}})
	if err != nil {
		return false, fmt.Errorf("pull reaction: %w", err)
	}
	if result.MatchedCount > 0 {
		return false, nil
	}

	result, err = r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$push": bson.M{"reactions": reaction}})
	if err != nil {
		return false, fmt.Errorf("push reaction: %w", err)
	}
	if result.MatchedCount == 0 {
		return false, models.ErrNotFound
	}
	return true, nil
}
