package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TypingWindow is how long a typing signal stays active without a refresh.
const TypingWindow = 2 * time.Second

// TypingMarker is a short-lived "is typing" record, at most one per
// (conversation, user) pair. Expired markers are ignored by readers rather
// than deleted.
type TypingMarker struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ConversationID primitive.ObjectID `bson:"conversation_id" json:"conversation_id"`
	UserID         primitive.ObjectID `bson:"user_id" json:"user_id"`
	ExpiresAt      time.Time          `bson:"expires_at" json:"expires_at"`
}

func (t *TypingMarker) Active(now time.Time) bool {
	return t.ExpiresAt.After(now)
}
