package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/nikhil/teammatch/internal/logger"
	"github.com/nikhil/teammatch/internal/middleware"
	"github.com/nikhil/teammatch/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // In production, replace with proper origin checking
	},
}

// WebSocketHandler upgrades authenticated requests and attaches the
// connection to the hub so the participant receives match, confirmation and
// chat events.
type WebSocketHandler struct {
	hub *models.Hub
	log *logger.Logger
}

func NewWebSocketHandler(hub *models.Hub, log *logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, log: log}
}

func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	externalID, ok := middleware.ParticipantID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "participant_id", externalID, "error", err)
		return
	}

	client := &models.Client{
		Hub:           h.hub,
		Conn:          conn,
		Send:          make(chan []byte, 256),
		ParticipantID: externalID,
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
