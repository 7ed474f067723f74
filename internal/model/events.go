package model

// Outbound event types pushed to clients.
const (
	EventRoomCreated     = "roomCreated"
	EventRoomUpdated     = "roomUpdated"
	EventPlayerJoined    = "playerJoined"
	EventPlayerLeft      = "playerLeft"
	EventError           = "error"
	EventGameStarting    = "gameStarting"
	EventRoundStart      = "roundStart"
	EventTimerStart      = "timerStart"
	EventTimerTick       = "timerTick"
	EventPhaseChange     = "phaseChange"
	EventPromptSubmitted = "promptSubmitted"
	EventVotingStart     = "votingStart"
	EventVoteConfirmed   = "voteConfirmed"
	EventVoteSubmitted   = "voteSubmitted"
	EventRoundResults    = "roundResults"
	EventGameFinished    = "gameFinished"
)

// Inbound action types accepted from clients.
const (
	ActionCreateRoom   = "createRoom"
	ActionJoinRoom     = "joinRoom"
	ActionGetRoomData  = "getRoomData"
	ActionToggleReady  = "toggleReady"
	ActionStartGame    = "startGame"
	ActionSubmitPrompt = "submitPrompt"
	ActionSubmitVote   = "submitVote"
)

type RoomCreatedPayload struct {
	RoomCode string       `json:"roomCode"`
	RoomID   string       `json:"roomId"`
	Room     RoomSnapshot `json:"room"`
}

type PlayerJoinedPayload struct {
	Player Player `json:"player"`
}

type PlayerLeftPayload struct {
	Player Player `json:"player"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type GameStartingPayload struct {
	Countdown int `json:"countdown"`
}

type RoundStartPayload struct {
	Round       int    `json:"round"`
	Word        string `json:"word"`
	TotalRounds int    `json:"totalRounds"`
}

type TimerStartPayload struct {
	Duration int `json:"duration"`
}

type TimerTickPayload struct {
	TimeLeft int `json:"timeLeft"`
}

type PhaseChangePayload struct {
	Phase RoomState `json:"phase"`
}

type PromptSubmittedPayload struct {
	PlayerID  string `json:"playerId"`
	Submitted int    `json:"submitted"`
	Total     int    `json:"total"`
}

// VotingImage is the anonymous voting entry. It deliberately carries nothing
// beyond the owner id (the voting target) and the image itself.
type VotingImage struct {
	PlayerID string `json:"playerId"`
	ImageURL string `json:"imageUrl"`
}

type VotingStartPayload struct {
	Images []VotingImage `json:"images"`
}

type VoteSubmittedPayload struct {
	Voted int `json:"voted"`
	Total int `json:"total"`
}

// ResultImage is the de-anonymized image entry revealed with round results.
type ResultImage struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	ImageURL   string `json:"imageUrl"`
	Prompt     string `json:"prompt"`
	Votes      int    `json:"votes"`
}

type RoundResultsPayload struct {
	Results RoundResult   `json:"results"`
	Images  []ResultImage `json:"images"`
}

type GameFinishedPayload struct {
	FinalScores []FinalScore  `json:"finalScores"`
	Winner      FinalScore    `json:"winner"`
	AllResults  []RoundResult `json:"allResults"`
}
