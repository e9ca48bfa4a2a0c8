package ws

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lqnhat/chatcore/internal/models"
	"github.com/lqnhat/chatcore/internal/usecase"
	"github.com/lqnhat/chatcore/pkg/util"
)

// Broadcaster translates domain mutations into hub events for the members
// of the affected conversation.
type Broadcaster struct {
	hub *Hub
}

func NewBroadcaster(hub *Hub) usecase.Broadcaster {
	return &Broadcaster{hub: hub}
}

func (b *Broadcaster) MessageNew(conv *models.Conversation, message *models.Message) {
	b.hub.NotifyUsers(memberHexIDs(conv), Event{Type: "message.new", Data: message})
}

func (b *Broadcaster) MessageDeleted(conv *models.Conversation, message *models.Message) {
	b.hub.NotifyUsers(memberHexIDs(conv), Event{Type: "message.deleted", Data: message})
}

func (b *Broadcaster) MessageReaction(conv *models.Conversation, message *models.Message) {
	b.hub.NotifyUsers(memberHexIDs(conv), Event{Type: "message.reaction", Data: message})
}

func (b *Broadcaster) Typing(conv *models.Conversation, userID primitive.ObjectID) {
	b.hub.NotifyUsers(memberHexIDs(conv), Event{
		Type: "typing",
		Data: map[string]string{
			"conversation_id": conv.ID.Hex(),
			"user_id":         userID.Hex(),
		},
	})
}

func (b *Broadcaster) ConversationUpdated(conv *models.Conversation) {
	b.hub.NotifyUsers(memberHexIDs(conv), Event{Type: "conversation.updated", Data: conv})
}

// PresenceChanged goes to everyone: online dots appear outside the
// viewer's own conversations (user search, group creation).
func (b *Broadcaster) PresenceChanged(presence *models.Presence) {
	b.hub.BroadcastAll(Event{Type: "presence", Data: presence})
}

func memberHexIDs(conv *models.Conversation) []string {
	return util.ConvertList(conv.Members, func(id primitive.ObjectID) string {
		return id.Hex()
	})
}
