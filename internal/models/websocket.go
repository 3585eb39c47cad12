package models

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed
	maxMessageSize = 512
)

// Hub maintains the set of active clients and routes event payloads to the
// participants they belong to. A participant may hold several connections
// (multiple tabs); every one of them receives the event.
type Hub struct {
	// Registered clients.
	Clients map[*Client]bool

	// Connections indexed by participant external id.
	Participants map[int64][]*Client

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	mu sync.RWMutex
}

// Client represents a single WebSocket connection.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan []byte

	// External id of the authenticated participant.
	ParticipantID int64
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		Clients:      make(map[*Client]bool),
		Participants: make(map[int64][]*Client),
		Register:     make(chan *Client),
		Unregister:   make(chan *Client),
	}
}

// Run starts the hub's registration loop. Call once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.Clients[client] = true
			h.Participants[client.ParticipantID] = append(h.Participants[client.ParticipantID], client)
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				clients := h.Participants[client.ParticipantID]
				for i, c := range clients {
					if c == client {
						h.Participants[client.ParticipantID] = append(clients[:i], clients[i+1:]...)
						break
					}
				}
				if len(h.Participants[client.ParticipantID]) == 0 {
					delete(h.Participants, client.ParticipantID)
				}
				close(client.Send)
			}
			h.mu.Unlock()
		}
	}
}

// SendToParticipant delivers the payload to every open connection of the
// participant. Returns false when the participant is not connected or no
// connection could take the message.
func (h *Hub) SendToParticipant(externalID int64, payload []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := false
	for _, client := range h.Participants[externalID] {
		select {
		case client.Send <- payload:
			sent = true
		default:
			// Slow consumer; the write pump will tear the connection down.
		}
	}
	return sent
}

// IsConnected reports whether the participant has any open connection.
func (h *Hub) IsConnected(externalID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.Participants[externalID]) > 0
}

// ReadPump drains the WebSocket connection. Clients do not send application
// messages over the socket; the pump exists to process control frames and to
// detect the peer going away.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
	}
}

// WritePump pumps messages from the hub to the WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
