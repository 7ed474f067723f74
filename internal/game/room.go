package game

import (
	"sync"

	"promptbattle/internal/model"
)

const maxPlayersPerRoom = 5

// Room is one live game session. All mutation happens under mu, held by the
// manager for the duration of each action, which gives the single-writer
// discipline the round flow relies on. The prompts/images/votes maps are
// keyed by player connection id and cleared at every round start.
type Room struct {
	mu sync.Mutex

	id           string
	code         string
	players      []*model.Player
	state        model.RoomState
	currentRound int
	maxRounds    int
	word         string
	prompts      map[string]string
	images       map[string]string
	votes        map[string]string
	roundResults []model.RoundResult
	timerSeconds int
	timer        *PhaseTimer
}

func newRoom(id, code string, host model.Player, maxRounds int) *Room {
	host.IsHost = true
	return &Room{
		id:        id,
		code:      code,
		players:   []*model.Player{&host},
		state:     model.RoomWaiting,
		maxRounds: maxRounds,
		prompts:   make(map[string]string),
		images:    make(map[string]string),
		votes:     make(map[string]string),
	}
}

func (r *Room) ID() string   { return r.id }
func (r *Room) Code() string { return r.code }

// addPlayer enforces the roster preconditions: the room must be waiting and
// below capacity. Join order is preserved; it determines host fallback.
func (r *Room) addPlayer(p model.Player) error {
	if len(r.players) >= maxPlayersPerRoom {
		return model.ErrRoomFull
	}
	if r.state != model.RoomWaiting {
		return model.ErrGameInProgress
	}
	r.players = append(r.players, &p)
	return nil
}

// removePlayer drops a player by id and returns the removed entry. If the
// host left and anyone remains, the earliest joiner is promoted.
func (r *Room) removePlayer(id string) (model.Player, bool) {
	for i, p := range r.players {
		if p.ID != id {
			continue
		}
		removed := *p
		r.players = append(r.players[:i], r.players[i+1:]...)
		if removed.IsHost && len(r.players) > 0 {
			r.players[0].IsHost = true
		}
		return removed, true
	}
	return model.Player{}, false
}

func (r *Room) findPlayer(id string) *model.Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// allNonHostReady reports whether every non-host player has readied up. The
// host's own ready flag is ignored.
func (r *Room) allNonHostReady() bool {
	for _, p := range r.players {
		if !p.IsHost && !p.IsReady {
			return false
		}
	}
	return true
}

// snapshot builds the sanitized client-facing view. Players are copied by
// value so broadcast fan-out never observes a torn roster.
func (r *Room) snapshot() model.RoomSnapshot {
	players := make([]model.Player, len(r.players))
	for i, p := range r.players {
		players[i] = *p
	}
	return model.RoomSnapshot{
		ID:           r.id,
		Code:         r.code,
		Players:      players,
		State:        r.state,
		CurrentRound: r.currentRound,
		MaxRounds:    r.maxRounds,
		Word:         r.word,
		Timer:        r.timerSeconds,
	}
}

// stopTimer cancels the active phase timer, if any. Safe to call repeatedly.
func (r *Room) stopTimer() {
	if r.timer != nil {
		r.timer.Cancel()
		r.timer = nil
	}
}
