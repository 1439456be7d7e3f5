// Package realtime pushes live inbox and ticket events to dashboard sessions
// over websockets. Delivery is best-effort and at-most-once; the dashboard's
// source of truth stays the REST API.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 16
)

// Event is the wire format pushed to subscribed sessions
type Event struct {
	Event   string      `json:"event"`
	StoreID string      `json:"storeId"`
	Payload interface{} `json:"payload,omitempty"`
}

// clientCommand is what a connected session sends to join a room
type clientCommand struct {
	Event string `json:"event"`
	Store string `json:"store"`
}

// Hub manages the store rooms and their subscribed connections
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*client]bool
	upgrader websocket.Upgrader
	logger   zerolog.Logger
	onEvent  func(event string)
}

type client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	rooms  map[string]bool
	closed bool
	mu     sync.Mutex
}

// NewHub creates a hub. checkOrigin is the shared origin predicate; onEvent
// is an optional publish counter hook.
func NewHub(checkOrigin func(ctx context.Context, origin string) (bool, error), logger zerolog.Logger, onEvent func(event string)) *Hub {
	hub := &Hub{
		rooms:   make(map[string]map[*client]bool),
		logger:  logger,
		onEvent: onEvent,
	}
	hub.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			allowed, err := checkOrigin(r.Context(), r.Header.Get("Origin"))
			if err != nil {
				// Fail closed, same as the HTTP CORS gate.
				return false
			}
			return allowed
		},
	}
	return hub
}

// ServeWS upgrades an HTTP request and runs the connection's pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	c := &client{
		hub:   h,
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
		rooms: make(map[string]bool),
	}

	go c.writePump()
	c.readPump()
}

// Publish sends an event to every session subscribed to the store's room.
// Sends are non-blocking: a session with a full buffer drops the event.
func (h *Hub) Publish(storeID string, event string, payload interface{}) {
	message, err := json.Marshal(Event{Event: event, StoreID: storeID, Payload: payload})
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("Failed to encode realtime event")
		return
	}

	h.mu.RLock()
	room := h.rooms[roomKey(storeID)]
	delivered := 0
	for c := range room {
		select {
		case c.send <- message:
			delivered++
		default:
			h.logger.Warn().Str("event", event).Msg("Session buffer full, dropping event")
		}
	}
	h.mu.RUnlock()

	if h.onEvent != nil {
		h.onEvent(event)
	}
	if delivered > 0 {
		h.logger.Debug().
			Str("event", event).
			Str("store", storeID).
			Int("sessions", delivered).
			Msg("Published realtime event")
	}
}

// RoomSize reports the number of sessions subscribed to a store's room.
func (h *Hub) RoomSize(storeID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomKey(storeID)])
}

func roomKey(storeID string) string {
	return "store_" + storeID
}

func (h *Hub) join(c *client, storeID string) {
	key := roomKey(storeID)

	h.mu.Lock()
	if h.rooms[key] == nil {
		h.rooms[key] = make(map[*client]bool)
	}
	h.rooms[key][c] = true
	h.mu.Unlock()

	c.rooms[key] = true
	h.logger.Debug().Str("room", key).Msg("Session joined store room")
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	for key := range c.rooms {
		delete(h.rooms[key], c)
		if len(h.rooms[key]) == 0 {
			delete(h.rooms, key)
		}
	}
	h.mu.Unlock()
}

func (c *client) readPump() {
	defer func() {
		c.hub.drop(c)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var cmd clientCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			continue
		}

		switch cmd.Event {
		case "join_store", "join_store_room":
			if cmd.Store != "" {
				c.hub.join(c, cmd.Store)
			}
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		c.conn.Close()
	}
}
