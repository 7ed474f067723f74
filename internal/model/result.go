package model

import "time"

// RoundResult is the immutable summary appended when a round concludes.
// Winners keeps ties as a list rather than breaking them arbitrarily.
type RoundResult struct {
	Round   int            `json:"round" bson:"round"`
	Word    string         `json:"word" bson:"word"`
	Votes   map[string]int `json:"votes" bson:"votes"`
	Winners []string       `json:"winner" bson:"winner"`
	Scores  []PlayerScore  `json:"scores" bson:"scores"`
}

type PlayerScore struct {
	ID    string `json:"id" bson:"id"`
	Name  string `json:"name" bson:"name"`
	Score int    `json:"score" bson:"score"`
}

type FinalScore struct {
	ID     string `json:"id" bson:"id"`
	Name   string `json:"name" bson:"name"`
	Avatar string `json:"avatar" bson:"avatar"`
	Score  int    `json:"score" bson:"score"`
}

// GameRecap is the archived record of a finished game. Recaps only serve the
// REST recap endpoint; they are never read back into a live session.
type GameRecap struct {
	RoomID      string        `json:"roomId" bson:"roomId"`
	RoomCode    string        `json:"roomCode" bson:"roomCode"`
	FinishedAt  time.Time     `json:"finishedAt" bson:"finishedAt"`
	Winner      FinalScore    `json:"winner" bson:"winner"`
	FinalScores []FinalScore  `json:"finalScores" bson:"finalScores"`
	Rounds      []RoundResult `json:"rounds" bson:"rounds"`
}
