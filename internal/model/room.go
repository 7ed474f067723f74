package model

type RoomState string

const (
	RoomWaiting    RoomState = "waiting"
	RoomStarting   RoomState = "starting"
	RoomPrompting  RoomState = "prompting"
	RoomGenerating RoomState = "generating"
	RoomVoting     RoomState = "voting"
	RoomRevealing  RoomState = "revealing"
	RoomFinished   RoomState = "finished"
)

// RoomSnapshot is the sanitized room shape sent to clients. Internal maps
// (prompts, images, votes) are never included; only derived projections of
// them go out in phase-specific payloads.
type RoomSnapshot struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	Players      []Player  `json:"players"`
	State        RoomState `json:"state"`
	CurrentRound int       `json:"currentRound"`
	MaxRounds    int       `json:"maxRounds"`
	Word         string    `json:"word"`
	Timer        int       `json:"timer"`
}
