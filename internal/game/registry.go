package game

import (
	"crypto/rand"
	"strings"
	"sync"

	"github.com/google/uuid"

	"promptbattle/internal/model"
)

const roomCodeLen = 6

// Base-36 alphabet; generated codes are always uppercase.
const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Registry maps room codes and connection ids to live rooms. It is
// constructed once at startup and injected into the manager, so independent
// registries can be exercised in isolation.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]*Room  // room id -> room
	byCode   map[string]*Room  // uppercase code -> room
	connRoom map[string]string // connection id -> room id
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:    make(map[string]*Room),
		byCode:   make(map[string]*Room),
		connRoom: make(map[string]string),
	}
}

// Create allocates a room with a fresh id and a code unique among live rooms,
// stores it, and indexes the host's connection.
func (reg *Registry) Create(host model.Player, maxRounds int) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code := reg.generateCode()
	room := newRoom(uuid.NewString(), code, host, maxRounds)
	reg.rooms[room.id] = room
	reg.byCode[code] = room
	reg.connRoom[host.ID] = room.id
	return room
}

// generateCode draws random codes until one is unused. The original service
// generated codes without a collision guard; retrying here closes that gap.
func (reg *Registry) generateCode() string {
	for {
		buf := make([]byte, roomCodeLen)
		if _, err := rand.Read(buf); err != nil {
			panic(err) // crypto/rand never fails on supported platforms
		}
		for i, b := range buf {
			buf[i] = roomCodeAlphabet[int(b)%len(roomCodeAlphabet)]
		}
		code := string(buf)
		if _, taken := reg.byCode[code]; !taken {
			return code
		}
	}
}

// FindByCode looks a room up by its shareable code, case-insensitively.
func (reg *Registry) FindByCode(code string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.byCode[strings.ToUpper(code)]
	return room, ok
}

func (reg *Registry) Get(id string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[id]
	return room, ok
}

// RoomByConn resolves the room a connection belongs to, if any.
func (reg *Registry) RoomByConn(connID string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	id, ok := reg.connRoom[connID]
	if !ok {
		return nil, false
	}
	room, ok := reg.rooms[id]
	return room, ok
}

// Bind indexes a connection to a room so disconnects resolve in O(1).
func (reg *Registry) Bind(connID, roomID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.connRoom[connID] = roomID
}

func (reg *Registry) Unbind(connID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.connRoom, connID)
}

// Remove deletes a room and its code index. Connection bindings are removed
// individually as players leave.
func (reg *Registry) Remove(id string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[id]
	if !ok {
		return
	}
	delete(reg.rooms, id)
	delete(reg.byCode, room.code)
}

func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}
