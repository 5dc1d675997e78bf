package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Message types
const (
	WSTypePhotoChange = "photo_change"
	WSTypeSubscribed  = "subscribed"
	WSTypeError       = "error"
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
)

// WSClient is one connected gallery client. Each location subscription
// bridges the change feed onto the client's send channel.
type WSClient struct {
	ID         string
	Conn       *websocket.Conn
	Send       chan []byte
	hub        *WebSocketHub
	mu         sync.Mutex
	cancels    map[string]func() // locationID -> feed unsubscribe
	closed     bool
	closedOnce sync.Once
}

// WebSocketHub fans photo change events out to connected clients. It sits
// on top of the ChangeFeed: clients subscribe per location and receive
// one message per insert/update/delete, sequence index included, so the
// gallery can patch its grid without re-querying.
type WebSocketHub struct {
	feed    *ChangeFeed
	mu      sync.RWMutex
	clients map[*WSClient]bool
}

// NewWebSocketHub creates a hub backed by the given change feed
func NewWebSocketHub(feed *ChangeFeed) *WebSocketHub {
	return &WebSocketHub{
		feed:    feed,
		clients: make(map[*WSClient]bool),
	}
}

// NewClient creates a WebSocket client connected to this hub
func (h *WebSocketHub) NewClient(id string, conn *websocket.Conn) *WSClient {
	return &WSClient{
		ID:      id,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		hub:     h,
		cancels: make(map[string]func()),
	}
}

// Register adds a client to the hub
func (h *WebSocketHub) Register(client *WSClient) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	log.Printf("WebSocket client connected: %s", client.ID)
}

// Unregister removes a client and drops its subscriptions
func (h *WebSocketHub) Unregister(client *WSClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
	}
	h.mu.Unlock()

	client.mu.Lock()
	for locationID, cancel := range client.cancels {
		cancel()
		delete(client.cancels, locationID)
	}
	client.mu.Unlock()
	log.Printf("WebSocket client disconnected: %s", client.ID)
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Subscribe starts streaming one location's changes to the client
func (c *WSClient) Subscribe(locationID string) {
	c.mu.Lock()
	if _, ok := c.cancels[locationID]; ok {
		c.mu.Unlock()
		return
	}

	ch, cancel := c.hub.feed.Subscribe(locationID)
	c.cancels[locationID] = cancel
	c.mu.Unlock()

	go func() {
		for change := range ch {
			c.enqueue(WSMessage{Type: WSTypePhotoChange, Payload: change})
		}
	}()

	// Enqueued outside the lock: a full send buffer closes the client,
	// and Close needs the same mutex to tear subscriptions down.
	c.enqueue(WSMessage{Type: WSTypeSubscribed, Payload: map[string]string{"locationId": locationID}})
	log.Printf("Client %s subscribed to location %s", c.ID, locationID)
}

// Unsubscribe stops streaming a location's changes to the client
func (c *WSClient) Unsubscribe(locationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cancel, ok := c.cancels[locationID]; ok {
		cancel()
		delete(c.cancels, locationID)
	}
}

// enqueue marshals and queues a message; a client with a full buffer is
// dropped rather than allowed to stall the feed pump. The send happens
// under the mutex so it cannot race Close closing the channel.
func (c *WSClient) enqueue(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling WebSocket message: %v", err)
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	select {
	case c.Send <- data:
		c.mu.Unlock()
	default:
		c.mu.Unlock()
		c.Close()
	}
}

// Close closes the client connection
func (c *WSClient) Close() {
	c.closedOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		c.hub.Unregister(c)
		close(c.Send)
		c.Conn.Close()
	})
}

// WritePump pumps messages from the hub to the websocket connection
func (c *WSClient) WritePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump pumps messages from the websocket connection to the hub
func (c *WSClient) ReadPump(onMessage func(client *WSClient, data []byte)) {
	defer c.Close()

	c.Conn.SetReadLimit(64 * 1024)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		if onMessage != nil {
			onMessage(c, message)
		}
	}
}

// SubscribeRequest is the client-to-server subscription command
type SubscribeRequest struct {
	Type       string `json:"type"`
	LocationID string `json:"locationId"`
}
