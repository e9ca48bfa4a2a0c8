package ws

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case payload := <-c.send:
		var event Event
		require.NoError(t, json.Unmarshal(payload, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("no frame enqueued")
		return Event{}
	}
}

func TestHubNotifyUsers(t *testing.T) {
	t.Parallel()
	hub := NewHub(zap.NewNop().Sugar())

	alice := newClient(hub, "alice", nil)
	aliceTab2 := newClient(hub, "alice", nil)
	bob := newClient(hub, "bob", nil)
	for _, c := range []*Client{alice, aliceTab2, bob} {
		hub.Register(c)
	}

	hub.NotifyUsers([]string{"alice"}, Event{Type: "message.new", Data: "hi"})

	// Every connection of the target user gets the frame.
	for _, c := range []*Client{alice, aliceTab2} {
		event := receive(t, c)
		assert.Equal(t, "message.new", event.Type)
		assert.Equal(t, "hi", event.Data)
	}
	assert.Empty(t, bob.send, "non-members receive nothing")
}

func TestHubNotifyUnknownUser(t *testing.T) {
	t.Parallel()
	hub := NewHub(zap.NewNop().Sugar())

	// No connections at all: fanout is a no-op, not a panic.
	hub.NotifyUsers([]string{"ghost"}, Event{Type: "typing"})
}

func TestHubBroadcastAll(t *testing.T) {
	t.Parallel()
	hub := NewHub(zap.NewNop().Sugar())

	alice := newClient(hub, "alice", nil)
	bob := newClient(hub, "bob", nil)
	hub.Register(alice)
	hub.Register(bob)

	hub.BroadcastAll(Event{Type: "presence"})

	assert.Equal(t, "presence", receive(t, alice).Type)
	assert.Equal(t, "presence", receive(t, bob).Type)
}

func TestNotifyDuringDisconnect(t *testing.T) {
	t.Parallel()
	hub := NewHub(zap.NewNop().Sugar())

	// Fanout snapshots clients under RLock and enqueues after releasing
	// it, so a disconnect can land between the two. The enqueue must
	// discard frames for the closed client instead of panicking.
	for i := 0; i < 200; i++ {
		alice := newClient(hub, "alice", nil)
		hub.Register(alice)

		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 20; j++ {
					hub.NotifyUsers([]string{"alice"}, Event{Type: "message.new"})
				}
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			alice.Close()
		}()
		wg.Wait()
	}
}

func TestEnqueueAfterClose(t *testing.T) {
	t.Parallel()
	hub := NewHub(zap.NewNop().Sugar())

	alice := newClient(hub, "alice", nil)
	hub.Register(alice)
	alice.Close()
	alice.Close()

	alice.enqueue([]byte(`{"type":"message.new"}`))

	// The channel is closed and drained empty; the late frame was dropped.
	payload, ok := <-alice.send
	assert.False(t, ok)
	assert.Nil(t, payload)
}

func TestHubUnregister(t *testing.T) {
	t.Parallel()
	hub := NewHub(zap.NewNop().Sugar())

	alice := newClient(hub, "alice", nil)
	hub.Register(alice)
	hub.Unregister(alice)

	hub.NotifyUsers([]string{"alice"}, Event{Type: "message.new"})
	assert.Empty(t, alice.send)

	// Unregistering twice is harmless.
	hub.Unregister(alice)
}
