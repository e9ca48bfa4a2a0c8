package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDirectConversationKey(t *testing.T) {
	t.Parallel()
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	t.Run("symmetric", func(t *testing.T) {
		assert.Equal(t, DirectConversationKey(a, b), DirectConversationKey(b, a))
	})

	t.Run("distinct pairs get distinct keys", func(t *testing.T) {
		c := primitive.NewObjectID()
		assert.NotEqual(t, DirectConversationKey(a, b), DirectConversationKey(a, c))
	})

	t.Run("sorted hex order", func(t *testing.T) {
		key := DirectConversationKey(a, b)
		lo, hi := a.Hex(), b.Hex()
		if hi < lo {
			lo, hi = hi, lo
		}
		assert.Equal(t, lo+":"+hi, key)
	})
}

func TestConversationHasMember(t *testing.T) {
	t.Parallel()
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	conv := &Conversation{Members: []primitive.ObjectID{a, b}}

	assert.True(t, conv.HasMember(a))
	assert.True(t, conv.HasMember(b))
	assert.False(t, conv.HasMember(primitive.NewObjectID()))
}

func TestConversationLastReadAt(t *testing.T) {
	t.Parallel()
	a := primitive.NewObjectID()
	readAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	conv := &Conversation{
		LastRead: map[string]time.Time{a.Hex(): readAt},
	}

	assert.Equal(t, readAt, conv.LastReadAt(a))
	assert.True(t, conv.LastReadAt(primitive.NewObjectID()).IsZero(), "unknown member reads from the zero cursor")

	var empty Conversation
	assert.True(t, empty.LastReadAt(a).IsZero(), "nil map means never read")
}
