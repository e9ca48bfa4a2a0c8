package usecase

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lqnhat/chatcore/internal/models"
)

// Broadcaster pushes fresh state to connected clients after a write
// commits. Implementations must not block the caller; dropped deliveries
// are acceptable, the next query re-fetch heals them.
type Broadcaster interface {
	MessageNew(conv *models.Conversation, message *models.Message)
	MessageDeleted(conv *models.Conversation, message *models.Message)
	MessageReaction(conv *models.Conversation, message *models.Message)
	Typing(conv *models.Conversation, userID primitive.ObjectID)
	ConversationUpdated(conv *models.Conversation)
	PresenceChanged(presence *models.Presence)
}
