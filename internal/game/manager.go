package game

import (
	"time"

	"github.com/rs/zerolog"

	"promptbattle/internal/model"
	"promptbattle/internal/repository"
	"promptbattle/internal/service"
)

const defaultAvatar = "👤"

// Config holds the tunable pacing of a game. Production values match the
// original service; tests shrink them to keep phase transitions fast.
type Config struct {
	MaxRounds     int
	PromptSeconds int
	VoteSeconds   int
	Countdown     int
	ResultsDelay  time.Duration
	TickInterval  time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxRounds:     5,
		PromptSeconds: 30,
		VoteSeconds:   30,
		Countdown:     3,
		ResultsDelay:  8 * time.Second,
		TickInterval:  time.Second,
	}
}

// Manager is the session orchestrator. It routes player actions into room
// mutations, drives the round flow, and broadcasts state to room members.
// Every action locks the target room for its full duration, so all mutations
// of one room are serialized; distinct rooms proceed independently.
type Manager struct {
	registry *Registry
	bcast    service.Broadcaster
	images   service.ImageGenerator
	recaps   repository.RecapRepo
	cfg      Config
	log      zerolog.Logger
}

func NewManager(registry *Registry, bcast service.Broadcaster, images service.ImageGenerator, recaps repository.RecapRepo, cfg Config, log zerolog.Logger) *Manager {
	return &Manager{
		registry: registry,
		bcast:    bcast,
		images:   images,
		recaps:   recaps,
		cfg:      cfg,
		log:      log,
	}
}

// RoomCount reports the number of live rooms, for the health endpoint.
func (m *Manager) RoomCount() int {
	return m.registry.Count()
}

// CreateRoom opens a fresh room with the caller as host and sends the
// creator its code and initial snapshot.
func (m *Manager) CreateRoom(connID, name, avatar string) error {
	if avatar == "" {
		avatar = defaultAvatar
	}
	host := model.Player{ID: connID, Name: name, Avatar: avatar}
	room := m.registry.Create(host, m.cfg.MaxRounds)
	m.bcast.JoinRoom(room.id, connID)

	room.mu.Lock()
	snap := room.snapshot()
	room.mu.Unlock()

	m.bcast.ToConn(connID, model.EventRoomCreated, model.RoomCreatedPayload{
		RoomCode: room.code,
		RoomID:   room.id,
		Room:     snap,
	})
	// Also send roomUpdated so the room view can initialize directly.
	m.bcast.ToConn(connID, model.EventRoomUpdated, snap)

	m.log.Info().Str("code", room.code).Str("player", name).Msg("room created")
	return nil
}

// JoinRoom adds the caller to the room with the given code.
func (m *Manager) JoinRoom(connID, code, name, avatar string) error {
	room, ok := m.registry.FindByCode(code)
	if !ok {
		return model.ErrRoomNotFound
	}
	if avatar == "" {
		avatar = defaultAvatar
	}
	player := model.Player{ID: connID, Name: name, Avatar: avatar}

	room.mu.Lock()
	if _, live := m.registry.Get(room.id); !live {
		room.mu.Unlock()
		return model.ErrRoomNotFound
	}
	if err := room.addPlayer(player); err != nil {
		room.mu.Unlock()
		return err
	}
	snap := room.snapshot()
	m.registry.Bind(connID, room.id)
	m.bcast.JoinRoom(room.id, connID)
	m.bcast.ToRoom(room.id, model.EventRoomUpdated, snap)
	m.bcast.ToRoom(room.id, model.EventPlayerJoined, model.PlayerJoinedPayload{Player: player})
	room.mu.Unlock()

	m.log.Info().Str("code", room.code).Str("player", name).Msg("player joined room")
	return nil
}

// GetRoomData resends the current snapshot to a member that refreshed or
// reconnected.
func (m *Manager) GetRoomData(connID, code string) error {
	room, ok := m.registry.FindByCode(code)
	if !ok {
		return model.ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.findPlayer(connID) == nil {
		return model.ErrNotInRoom
	}
	m.bcast.ToConn(connID, model.EventRoomUpdated, room.snapshot())
	return nil
}

// ToggleReady flips the caller's ready flag. A no-op for the host (the host
// never blocks readiness checks) and for connections outside any room.
func (m *Manager) ToggleReady(connID string) error {
	room, ok := m.registry.RoomByConn(connID)
	if !ok {
		return nil
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	p := room.findPlayer(connID)
	if p == nil || p.IsHost {
		return nil
	}
	p.IsReady = !p.IsReady
	m.bcast.ToRoom(room.id, model.EventRoomUpdated, room.snapshot())
	return nil
}

// StartGame begins the match: host-only, everyone (besides the host) ready.
// On success a server-driven countdown runs, then round one starts.
func (m *Manager) StartGame(connID string) error {
	room, ok := m.registry.RoomByConn(connID)
	if !ok {
		return nil
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	p := room.findPlayer(connID)
	if p == nil || !p.IsHost {
		return model.ErrNotHost
	}
	if room.state != model.RoomWaiting {
		return model.ErrGameInProgress
	}
	if len(room.players) < 1 {
		return model.ErrInsufficientPlayers
	}
	if len(room.players) > 1 && !room.allNonHostReady() {
		return model.ErrPlayersNotReady
	}

	room.state = model.RoomStarting
	m.bcast.ToRoom(room.id, model.EventGameStarting, model.GameStartingPayload{Countdown: m.cfg.Countdown})
	go m.runCountdown(room.id, m.cfg.Countdown)

	m.log.Info().Str("code", room.code).Int("players", len(room.players)).Msg("game starting")
	return nil
}

// SubmitPrompt records the caller's prompt for the current round. Duplicate
// submissions overwrite. Arrivals outside the prompting phase are dropped
// silently: the client raced a server-side phase change.
func (m *Manager) SubmitPrompt(connID, prompt string) error {
	room, ok := m.registry.RoomByConn(connID)
	if !ok {
		return nil
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.state != model.RoomPrompting {
		return nil
	}

	room.prompts[connID] = prompt
	m.bcast.ToRoom(room.id, model.EventPromptSubmitted, model.PromptSubmittedPayload{
		PlayerID:  connID,
		Submitted: len(room.prompts),
		Total:     len(room.players),
	})

	// Everyone submitted: don't wait out the clock.
	if len(room.prompts) == len(room.players) && room.timer != nil {
		room.timer.Complete()
	}
	return nil
}

// SubmitVote records the caller's vote. Self-votes are rejected without any
// state mutation; duplicate votes overwrite the prior target.
func (m *Manager) SubmitVote(connID, targetID string) error {
	room, ok := m.registry.RoomByConn(connID)
	if !ok {
		return nil
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.state != model.RoomVoting {
		return nil
	}
	if targetID == connID {
		return model.ErrSelfVote
	}

	room.votes[connID] = targetID
	m.bcast.ToConn(connID, model.EventVoteConfirmed, struct{}{})
	m.bcast.ToRoom(room.id, model.EventVoteSubmitted, model.VoteSubmittedPayload{
		Voted: len(room.votes),
		Total: len(room.players),
	})

	if len(room.votes) == len(room.players) && room.timer != nil {
		room.timer.Complete()
	}
	return nil
}

// HandleDisconnect treats a dropped connection as a leave: the roster shrinks,
// the host role falls to the earliest joiner, and an emptied room is
// destroyed. A round in progress simply continues with whoever remains.
func (m *Manager) HandleDisconnect(connID string) {
	room, ok := m.registry.RoomByConn(connID)
	m.registry.Unbind(connID)
	if !ok {
		return
	}

	room.mu.Lock()
	removed, found := room.removePlayer(connID)
	if !found {
		room.mu.Unlock()
		return
	}
	m.bcast.LeaveRoom(room.id, connID)

	if len(room.players) == 0 {
		room.stopTimer()
		room.mu.Unlock()
		m.registry.Remove(room.id)
		m.log.Info().Str("code", room.code).Msg("room deleted (empty)")
		return
	}

	m.bcast.ToRoom(room.id, model.EventPlayerLeft, model.PlayerLeftPayload{Player: removed})
	m.bcast.ToRoom(room.id, model.EventRoomUpdated, room.snapshot())
	room.mu.Unlock()

	m.log.Info().Str("code", room.code).Str("player", removed.Name).Msg("player left room")
}

// withRoom runs fn with the room locked, skipping silently if the room has
// been torn down. Deferred transitions (timers, countdowns, generation
// fan-in) re-enter the room through here.
func (m *Manager) withRoom(roomID string, fn func(*Room)) {
	room, ok := m.registry.Get(roomID)
	if !ok {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if _, live := m.registry.Get(roomID); !live {
		return
	}
	fn(room)
}
