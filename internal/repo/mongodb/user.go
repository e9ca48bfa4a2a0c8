package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lqnhat/chatcore/internal/models"
)

type UserRepository interface {
	// Sync inserts the user if no record exists for its external ID and
	// returns the stored record either way. Existing profiles are never
	// updated.
	Sync(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	// Search matches the display name case-insensitively; an empty query
	// returns everyone.
	Search(ctx context.Context, query string) ([]*models.User, error)
}

type userRepo struct {
	collection *mongo.Collection
}

func NewUserRepository(db *DB) UserRepository {
	return &userRepo{
		collection: db.Database.Collection("users"),
	}
}

func (r *userRepo) Sync(ctx context.Context, user *models.User) (*models.User, error) {
	filter := bson.M{"external_id": user.ExternalID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":         primitive.NewObjectID(),
			"external_id": user.ExternalID,
			"name":        user.Name,
			"email":       user.Email,
			"avatar_url":  user.AvatarURL,
			"created_at":  time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored models.User
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return nil, fmt.Errorf("sync user: %w", err)
	}
	return &stored, nil
}

func (r *userRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (r *userRepo) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"external_id": externalID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by external id: %w", err)
	}
	return &user, nil
}

func (r *userRepo) Search(ctx context.Context, query string) ([]*models.User, error) {
	filter := bson.M{}
	if query != "" {
		filter["name"] = bson.M{
			"$regex":   regexp.QuoteMeta(query),
			"$options": "i",
		}
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}
