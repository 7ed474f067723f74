package model

// Player represents a participant in a room. The ID is the connection id
// assigned by the transport layer; the core only compares it for equality.
type Player struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Avatar  string `json:"avatar"`
	IsReady bool   `json:"isReady"`
	IsHost  bool   `json:"isHost"`
	Score   int    `json:"score"`
}
