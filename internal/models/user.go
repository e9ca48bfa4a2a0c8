package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the local record for an identity-provider account. It is created
// once per external ID and never updated afterwards; repeated syncs with a
// fresh profile are no-ops.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ExternalID string             `bson:"external_id" json:"external_id" validate:"required"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"`
	AvatarURL  string             `bson:"avatar_url" json:"avatar_url"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}
