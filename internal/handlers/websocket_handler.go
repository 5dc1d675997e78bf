package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/virtualtourist/server/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler handles WebSocket connections for the change stream
type WebSocketHandler struct {
	hub *services.WebSocketHub
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *services.WebSocketHub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// HandleConnection upgrades HTTP to WebSocket and manages the connection.
// A `locationId` query parameter subscribes immediately; further
// subscribe/unsubscribe commands arrive as JSON messages.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := h.hub.NewClient(uuid.New().String(), conn)
	h.hub.Register(client)

	if locationID := r.URL.Query().Get("locationId"); locationID != "" {
		client.Subscribe(locationID)
	}

	go client.WritePump()
	client.ReadPump(h.handleMessage)
}

func (h *WebSocketHandler) handleMessage(client *services.WSClient, data []byte) {
	var req services.SubscribeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}

	switch req.Type {
	case services.WSTypeSubscribe:
		if req.LocationID != "" {
			client.Subscribe(req.LocationID)
		}
	case services.WSTypeUnsubscribe:
		if req.LocationID != "" {
			client.Unsubscribe(req.LocationID)
		}
	}
}
