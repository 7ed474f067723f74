package model

// GameError is a player-input or precondition violation. It is reported only
// to the acting connection and never mutates room state.
type GameError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *GameError) Error() string {
	return e.Message
}

var (
	ErrRoomNotFound        = &GameError{Code: "ROOM_NOT_FOUND", Message: "Room not found"}
	ErrRoomFull            = &GameError{Code: "ROOM_FULL", Message: "Room is full (max 5 players)"}
	ErrGameInProgress      = &GameError{Code: "GAME_IN_PROGRESS", Message: "Game already in progress"}
	ErrNotHost             = &GameError{Code: "NOT_HOST", Message: "Only the host can start the game"}
	ErrInsufficientPlayers = &GameError{Code: "INSUFFICIENT_PLAYERS", Message: "Need at least 1 player to start"}
	ErrPlayersNotReady     = &GameError{Code: "PLAYERS_NOT_READY", Message: "All players must be ready"}
	ErrSelfVote            = &GameError{Code: "SELF_VOTE", Message: "Can't vote for yourself!"}
	ErrNotInRoom           = &GameError{Code: "NOT_IN_ROOM", Message: "You are not in this room"}
)
