package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	readLimit  = 8 * 1024
)

// Client is one websocket connection of one user. Inbound frames are
// drained and ignored: the subscription is one-way, commands go over HTTP.
type Client struct {
	userID string
	conn   *websocket.Conn
	hub    *Hub

	// mu orders enqueue against Close: the channel is only closed while
	// no enqueue is in flight, so fanout racing a disconnect never sends
	// on a closed channel.
	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newClient(hub *Hub, userID string, conn *websocket.Conn) *Client {
	return &Client{
		userID: userID,
		conn:   conn,
		hub:    hub,
		send:   make(chan []byte, 256),
	}
}

// enqueue hands a frame to the write pump without blocking; a full buffer
// means the consumer is too slow to keep, so the connection is dropped.
// Frames for a closed client are discarded.
func (c *Client) enqueue(payload []byte) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	select {
	case c.send <- payload:
		c.mu.Unlock()
	default:
		c.mu.Unlock()
		go c.Close()
	}
}

func (c *Client) readPump() {
	defer c.Close()
	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()

	c.hub.Unregister(c)
	if c.conn != nil {
		c.conn.Close()
	}
}
