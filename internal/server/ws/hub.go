package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Event is the frame pushed to subscribed clients.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub tracks live connections per user. A user may hold several
// connections (tabs); every one receives the user's events.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	log     *zap.SugaredLogger
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		log:     log.Named("ws"),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*Client]struct{})
	}
	h.clients[c.userID][c] = struct{}{}
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[c.userID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.clients, c.userID)
		}
	}
}

// NotifyUsers fans an event out to every connection of the given users.
// Slow consumers are disconnected rather than awaited.
func (h *Hub) NotifyUsers(userIDs []string, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Errorw("marshal event", "type", event.Type, "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(userIDs))
	for _, userID := range userIDs {
		for c := range h.clients[userID] {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.enqueue(payload)
	}
}

// BroadcastAll sends an event to every connected client.
func (h *Hub) BroadcastAll(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Errorw("marshal event", "type", event.Type, "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for _, conns := range h.clients {
		for c := range conns {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.enqueue(payload)
	}
}
