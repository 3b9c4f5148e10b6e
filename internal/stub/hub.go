package stub

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// frame mirrors the console channel's wire format.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Hub maintains the set of active push connections, grouped into per-user
// rooms. A connection joins a room by sending the join-user-room event; a
// user can hold multiple connections.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*pushClient]bool
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]map[*pushClient]bool),
		logger: logger.With("component", "stub_hub"),
	}
}

// pushClient is one websocket connection held by the hub.
type pushClient struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan frame
	userID string

	closeOnce sync.Once
}

// Serve owns an upgraded connection: it waits for the room join and pumps
// pushes until the peer goes away.
func (h *Hub) Serve(conn *websocket.Conn) {
	client := &pushClient{
		hub:  h,
		conn: conn,
		send: make(chan frame, 64),
	}
	go client.writePump()
	client.readPump()
}

// Push delivers an event to every connection in the user's room. Slow
// consumers are dropped rather than blocking the push path.
func (h *Hub) Push(userID, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode push payload", "error", err)
		return
	}

	h.mu.RLock()
	room := h.rooms[userID]
	clients := make([]*pushClient, 0, len(room))
	for client := range room {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.send <- frame{Event: event, Data: data}:
		default:
			h.logger.Warn("push buffer full, dropping connection", "user_id", userID)
			h.unregister(client)
		}
	}
}

// RoomSize returns the number of connections joined to a user's room.
func (h *Hub) RoomSize(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

func (h *Hub) register(client *pushClient, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// A re-join moves the connection between rooms.
	if client.userID != "" {
		delete(h.rooms[client.userID], client)
	}
	client.userID = userID
	if h.rooms[userID] == nil {
		h.rooms[userID] = make(map[*pushClient]bool)
	}
	h.rooms[userID][client] = true

	h.logger.Debug("client joined room", "user_id", userID, "room_size", len(h.rooms[userID]))
}

func (h *Hub) unregister(client *pushClient) {
	h.mu.Lock()
	if client.userID != "" {
		if room, ok := h.rooms[client.userID]; ok {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, client.userID)
			}
		}
	}
	h.mu.Unlock()

	client.closeOnce.Do(func() {
		close(client.send)
	})
}

type joinPayload struct {
	UserID string `json:"userId"`
}

func (c *pushClient) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPingHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return err
		}
		return c.conn.WriteControl(websocket.PongMessage, nil, time.Now().Add(writeWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return
		}

		var msg frame
		if err := json.Unmarshal(message, &msg); err != nil {
			c.hub.logger.Warn("dropping malformed client frame", "error", err)
			continue
		}
		if msg.Event == "join-user-room" {
			var join joinPayload
			if err := json.Unmarshal(msg.Data, &join); err != nil || join.UserID == "" {
				c.hub.logger.Warn("invalid join payload", "error", err)
				continue
			}
			c.hub.register(c, join.UserID)
		}
	}
}

func (c *pushClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
