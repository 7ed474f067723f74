package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// Message is the WebSocket envelope format, both directions.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Connection represents one WebSocket client. Outbound frames are queued on
// Send; the write pump drains it.
type Connection struct {
	ID   string
	Send chan []byte
}

// Hub tracks live connections and their room membership and fans events out
// to them. It implements service.Broadcaster.
//
// All operations take the hub lock, so a JoinRoom followed by a ToRoom from
// the same goroutine is guaranteed to see the new member, and messages queued
// by successive ToRoom calls arrive in call order.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Connection            // connID -> connection
	rooms map[string]map[string]*Connection // roomID -> connID -> connection

	log zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		conns: make(map[string]*Connection),
		rooms: make(map[string]map[string]*Connection),
		log:   log.With().Str("component", "ws-hub").Logger(),
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn.ID] = conn
	h.log.Debug().Str("conn", conn.ID).Int("total", len(h.conns)).Msg("connection registered")
}

// Unregister removes a connection from the hub and every room it joined, and
// closes its send queue. Safe to call more than once.
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.conns[conn.ID]; !ok || existing != conn {
		return
	}
	delete(h.conns, conn.ID)
	for roomID, members := range h.rooms {
		if _, ok := members[conn.ID]; ok {
			delete(members, conn.ID)
			if len(members) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	close(conn.Send)
	h.log.Debug().Str("conn", conn.ID).Int("total", len(h.conns)).Msg("connection unregistered")
}

// JoinRoom subscribes a connection to a room's broadcasts.
func (h *Hub) JoinRoom(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conn, ok := h.conns[connID]
	if !ok {
		return
	}
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[string]*Connection)
	}
	h.rooms[roomID][connID] = conn
}

// LeaveRoom unsubscribes a connection from a room's broadcasts.
func (h *Hub) LeaveRoom(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
}

// ToRoom sends an event to every member of a room.
func (h *Hub) ToRoom(roomID string, event string, payload any) {
	data, err := encodeMessage(event, payload)
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("failed to encode broadcast")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, conn := range h.rooms[roomID] {
		select {
		case conn.Send <- data:
		default:
			// Slow client, drop rather than stall the room.
			h.log.Warn().Str("conn", conn.ID).Str("event", event).Msg("send buffer full, dropping message")
		}
	}
}

// ToConn sends an event to a single connection.
func (h *Hub) ToConn(connID string, event string, payload any) {
	data, err := encodeMessage(event, payload)
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("failed to encode message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	conn, ok := h.conns[connID]
	if !ok {
		return
	}
	select {
	case conn.Send <- data:
	default:
		h.log.Warn().Str("conn", conn.ID).Str("event", event).Msg("send buffer full, dropping message")
	}
}

func encodeMessage(event string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Message{Type: event, Payload: raw})
}
