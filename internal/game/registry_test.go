package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptbattle/internal/model"
)

func TestRegistryCreateAndLookup(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()

	room := reg.Create(model.Player{ID: "conn-1", Name: "Alice"}, 5)
	require.NotNil(t, room)
	assert.Len(t, room.code, roomCodeLen)
	assert.Equal(t, strings.ToUpper(room.code), room.code)
	assert.Equal(t, 1, reg.Count())

	got, ok := reg.Get(room.id)
	require.True(t, ok)
	assert.Same(t, room, got)

	// The creator's connection is bound at creation time.
	got, ok = reg.RoomByConn("conn-1")
	require.True(t, ok)
	assert.Same(t, room, got)
}

func TestRegistryFindByCodeIsCaseInsensitive(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()
	room := reg.Create(model.Player{ID: "conn-1", Name: "Alice"}, 5)

	got, ok := reg.FindByCode(strings.ToLower(room.code))
	require.True(t, ok)
	assert.Same(t, room, got)

	_, ok = reg.FindByCode("NOPE42")
	assert.False(t, ok)
}

func TestRegistryCodesAreUnique(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		room := reg.Create(model.Player{ID: "c", Name: "n"}, 5)
		assert.False(t, seen[room.code], "duplicate code %s", room.code)
		seen[room.code] = true
	}
}

func TestRegistryRemove(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()
	room := reg.Create(model.Player{ID: "conn-1", Name: "Alice"}, 5)

	reg.Remove(room.id)
	assert.Equal(t, 0, reg.Count())

	_, ok := reg.Get(room.id)
	assert.False(t, ok)
	_, ok = reg.FindByCode(room.code)
	assert.False(t, ok, "removed room's code must be reusable")

	// Removing twice is a no-op.
	reg.Remove(room.id)
}

func TestRegistryBindUnbind(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()
	room := reg.Create(model.Player{ID: "host", Name: "Alice"}, 5)

	reg.Bind("conn-2", room.id)
	got, ok := reg.RoomByConn("conn-2")
	require.True(t, ok)
	assert.Same(t, room, got)

	reg.Unbind("conn-2")
	_, ok = reg.RoomByConn("conn-2")
	assert.False(t, ok)

	// A stale binding to a removed room resolves to nothing.
	reg.Bind("conn-3", "gone")
	_, ok = reg.RoomByConn("conn-3")
	assert.False(t, ok)
}
