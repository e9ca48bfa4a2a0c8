package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reaction is a (user, emoji) mark on a message. The pair is unique per
// message; the same user may hold reactions with different emoji at once.
type Reaction struct {
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`
	Emoji  string             `bson:"emoji" json:"emoji"`
}

// Message is an entry in a conversation. Deletion is soft and one-way: the
// body is cleared permanently while reactions and metadata stay attached.
type Message struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ConversationID primitive.ObjectID `bson:"conversation_id" json:"conversation_id" validate:"required"`
	SenderID       primitive.ObjectID `bson:"sender_id" json:"sender_id" validate:"required"`
	Body           string             `bson:"body" json:"body"`
	IsDeleted      bool               `bson:"is_deleted,omitempty" json:"is_deleted,omitempty"`
	Reactions      []Reaction         `bson:"reactions,omitempty" json:"reactions,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}
