package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PresenceWindow is how long after a heartbeat a user still counts as
// online.
const PresenceWindow = 20 * time.Second

// Presence holds the last heartbeat per user, one record per user.
type Presence struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	LastSeenAt time.Time          `bson:"last_seen_at" json:"last_seen_at"`
}

func (p *Presence) Online(now time.Time) bool {
	return now.Sub(p.LastSeenAt) < PresenceWindow
}
