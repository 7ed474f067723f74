package service

// Broadcaster pushes events to connected clients. Implemented by the ws hub;
// kept as an interface so the game core stays transport-agnostic (and avoids
// an import cycle with the transport layer).
type Broadcaster interface {
	// ToRoom delivers an event to every member of a room, in send order.
	ToRoom(roomID string, event string, payload any)
	// ToConn delivers an event to a single connection.
	ToConn(connID string, event string, payload any)
	// JoinRoom and LeaveRoom maintain room membership for fan-out.
	JoinRoom(roomID, connID string)
	LeaveRoom(roomID, connID string)
}
