package ws

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, conn *Connection) []Message {
	t.Helper()
	var out []Message
	for {
		select {
		case data := <-conn.Send:
			var msg Message
			require.NoError(t, json.Unmarshal(data, &msg))
			out = append(out, msg)
		default:
			return out
		}
	}
}

func newConn(id string) *Connection {
	return &Connection{ID: id, Send: make(chan []byte, 8)}
}

func TestHubToConn(t *testing.T) {
	t.Parallel()
	hub := NewHub(zerolog.Nop())
	conn := newConn("c1")
	hub.Register(conn)

	hub.ToConn("c1", "roomCreated", map[string]string{"roomCode": "ABC123"})
	hub.ToConn("nobody", "roomCreated", nil)

	msgs := drain(t, conn)
	require.Len(t, msgs, 1)
	assert.Equal(t, "roomCreated", msgs[0].Type)
	assert.JSONEq(t, `{"roomCode":"ABC123"}`, string(msgs[0].Payload))
}

func TestHubRoomFanOut(t *testing.T) {
	t.Parallel()
	hub := NewHub(zerolog.Nop())
	a, b, outsider := newConn("a"), newConn("b"), newConn("c")
	for _, c := range []*Connection{a, b, outsider} {
		hub.Register(c)
	}
	hub.JoinRoom("room-1", "a")
	hub.JoinRoom("room-1", "b")

	hub.ToRoom("room-1", "roundStart", map[string]int{"round": 1})
	hub.ToRoom("room-1", "timerTick", map[string]int{"timeLeft": 29})

	for _, c := range []*Connection{a, b} {
		msgs := drain(t, c)
		require.Len(t, msgs, 2)
		assert.Equal(t, "roundStart", msgs[0].Type, "delivery preserves send order")
		assert.Equal(t, "timerTick", msgs[1].Type)
	}
	assert.Empty(t, drain(t, outsider))
}

func TestHubLeaveRoom(t *testing.T) {
	t.Parallel()
	hub := NewHub(zerolog.Nop())
	conn := newConn("c1")
	hub.Register(conn)
	hub.JoinRoom("room-1", "c1")
	hub.LeaveRoom("room-1", "c1")

	hub.ToRoom("room-1", "roundStart", nil)
	assert.Empty(t, drain(t, conn))
}

func TestHubUnregister(t *testing.T) {
	t.Parallel()
	hub := NewHub(zerolog.Nop())
	conn := newConn("c1")
	hub.Register(conn)
	hub.JoinRoom("room-1", "c1")

	hub.Unregister(conn)

	_, open := <-conn.Send
	assert.False(t, open, "unregister closes the send queue")

	// Messages to a gone connection are dropped, not panicking on a closed
	// channel.
	hub.ToConn("c1", "roomUpdated", nil)
	hub.ToRoom("room-1", "roomUpdated", nil)

	// Double unregister is a no-op.
	hub.Unregister(conn)
}

func TestHubJoinUnknownConnection(t *testing.T) {
	t.Parallel()
	hub := NewHub(zerolog.Nop())
	hub.JoinRoom("room-1", "never-registered")
	hub.ToRoom("room-1", "roundStart", nil)
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	t.Parallel()
	hub := NewHub(zerolog.Nop())
	conn := &Connection{ID: "c1", Send: make(chan []byte, 1)}
	hub.Register(conn)

	hub.ToConn("c1", "first", nil)
	hub.ToConn("c1", "second", nil) // buffer full, dropped

	msgs := drain(t, conn)
	require.Len(t, msgs, 1)
	assert.Equal(t, "first", msgs[0].Type)
}
