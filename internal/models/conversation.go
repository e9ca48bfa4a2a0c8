package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation is either a direct (2-member, unnamed) or a group (named,
// >=2 members) conversation. Direct conversations are unique per unordered
// member pair, enforced through DirectKey. Groups carry no uniqueness
// constraint.
type Conversation struct {
	ID      primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	IsGroup bool                 `bson:"is_group" json:"is_group"`
	Name    string               `bson:"name,omitempty" json:"name,omitempty"`
	Members []primitive.ObjectID `bson:"members" json:"members"`

	// DirectKey is the canonical identity of a direct conversation (sorted
	// member pair). Empty for groups.
	DirectKey string `bson:"direct_key,omitempty" json:"-"`

	// LastRead maps member ID hex to the last time that member marked the
	// conversation read. A missing entry means never read.
	LastRead map[string]time.Time `bson:"last_read,omitempty" json:"last_read,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// SidebarConversation is the per-user list projection: the conversation
// plus its latest message and the caller's unread count.
type SidebarConversation struct {
	Conversation
	LastMessage *Message `json:"last_message,omitempty"`
	UnreadCount int64    `json:"unread_count"`
}

// DirectConversationKey returns the same key for (a, b) and (b, a).
func DirectConversationKey(a, b primitive.ObjectID) string {
	x, y := a.Hex(), b.Hex()
	if y < x {
		x, y = y, x
	}
	return x + ":" + y
}

func (c *Conversation) HasMember(userID primitive.ObjectID) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// LastReadAt returns the zero time when the member has never marked the
// conversation read.
func (c *Conversation) LastReadAt(userID primitive.ObjectID) time.Time {
	return c.LastRead[userID.Hex()]
}
