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

type ConversationRepository interface {
	// GetOrCreateDirect returns the direct conversation for the unordered
	// pair, creating it atomically when absent. Concurrent calls for the
	// same pair converge on one record via the direct_key upsert.
	GetOrCreateDirect(ctx context.Context, userA, userB primitive.ObjectID) (*models.Conversation, error)
	CreateGroup(ctx context.Context, conv *models.Conversation) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Conversation, error)
	ListByMember(ctx context.Context, userID primitive.ObjectID) ([]*models.Conversation, error)
	// SetLastRead overwrites the member's read cursor unconditionally
	// (last-write-wins, no monotonicity).
	SetLastRead(ctx context.Context, conversationID, userID primitive.ObjectID, at time.Time) error
}

type conversationRepo struct {
	collection *mongo.Collection
}

func NewConversationRepository(db *DB) ConversationRepository {
	return &conversationRepo{
		collection: db.Database.Collection("conversations"),
	}
}

func (r *conversationRepo) GetOrCreateDirect(ctx context.Context, userA, userB primitive.ObjectID) (*models.Conversation, error) {
	key := models.DirectConversationKey(userA, userB)
	filter := bson.M{"direct_key": key}
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"is_group":   false,
			"members":    []primitive.ObjectID{userA, userB},
			"direct_key": key,
			"created_at": time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var conv models.Conversation
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&conv); err != nil {
		return nil, fmt.Errorf("get or create direct conversation: %w", err)
	}
	return &conv, nil
}

func (r *conversationRepo) CreateGroup(ctx context.Context, conv *models.Conversation) error {
	conv.ID = primitive.NewObjectID()
	conv.IsGroup = true
	conv.CreatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, conv); err != nil {
		return fmt.Errorf("create group conversation: %w", err)
	}
	return nil
}

func (r *conversationRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&conv)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &conv, nil
}

func (r *conversationRepo) ListByMember(ctx context.Context, userID primitive.ObjectID) ([]*models.Conversation, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"members": userID})
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer cursor.Close(ctx)

	var conversations []*models.Conversation
	if err := cursor.All(ctx, &conversations); err != nil {
		return nil, fmt.Errorf("decode conversations: %w", err)
	}
	return conversations, nil
}

func (r *conversationRepo) SetLastRead(ctx context.Context, conversationID, userID primitive.ObjectID, at time.Time) error {
	update := bson.M{
		"$set": bson.M{"last_read." + userID.Hex(): at},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": conversationID}, update)
	if err != nil {
		return fmt.Errorf("set last read: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
