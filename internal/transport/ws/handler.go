package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"promptbattle/internal/game"
	"promptbattle/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	// Per-connection inbound rate limit. Generous enough for normal play,
	// tight enough to shut down a misbehaving client.
	actionsPerSecond = 10
	actionBurst      = 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler upgrades HTTP requests to WebSocket connections and routes client
// actions to the game manager.
type Handler struct {
	hub     *Hub
	manager *game.Manager
	log     zerolog.Logger
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *Hub, manager *game.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		hub:     hub,
		manager: manager,
		log:     log.With().Str("component", "ws").Logger(),
	}
}

// ServeWS handles GET /ws.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn := &Connection{
		ID:   uuid.NewString(),
		Send: make(chan []byte, 256),
	}
	h.hub.Register(conn)
	h.log.Info().Str("conn", conn.ID).Str("remote", r.RemoteAddr).Msg("client connected")

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.manager.HandleDisconnect(conn.ID)
		h.hub.Unregister(conn)
		wsConn.Close()
		h.log.Info().Str("conn", conn.ID).Msg("client disconnected")
	}()

	limiter := rate.NewLimiter(rate.Limit(actionsPerSecond), actionBurst)

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn().Err(err).Str("conn", conn.ID).Msg("websocket read error")
			}
			break
		}

		if !limiter.Allow() {
			h.sendError(conn.ID, "Too many requests, slow down")
			continue
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sendError(conn.ID, "Invalid message format")
			continue
		}
		h.dispatch(conn.ID, &msg)
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type createRoomRequest struct {
	PlayerName string `json:"playerName"`
	Avatar     string `json:"avatar"`
}

type joinRoomRequest struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
	Avatar     string `json:"avatar"`
}

type getRoomDataRequest struct {
	RoomCode string `json:"roomCode"`
}

type submitPromptRequest struct {
	Prompt string `json:"prompt"`
}

type submitVoteRequest struct {
	TargetPlayerID string `json:"targetPlayerId"`
}

func (h *Handler) dispatch(connID string, msg *Message) {
	var err error

	switch msg.Type {
	case model.ActionCreateRoom:
		var req createRoomRequest
		if err = json.Unmarshal(msg.Payload, &req); err == nil {
			err = h.manager.CreateRoom(connID, req.PlayerName, req.Avatar)
		}

	case model.ActionJoinRoom:
		var req joinRoomRequest
		if err = json.Unmarshal(msg.Payload, &req); err == nil {
			err = h.manager.JoinRoom(connID, req.RoomCode, req.PlayerName, req.Avatar)
		}

	case model.ActionGetRoomData:
		var req getRoomDataRequest
		if err = json.Unmarshal(msg.Payload, &req); err == nil {
			err = h.manager.GetRoomData(connID, req.RoomCode)
		}

	case model.ActionToggleReady:
		err = h.manager.ToggleReady(connID)

	case model.ActionStartGame:
		err = h.manager.StartGame(connID)

	case model.ActionSubmitPrompt:
		var req submitPromptRequest
		if err = json.Unmarshal(msg.Payload, &req); err == nil {
			err = h.manager.SubmitPrompt(connID, req.Prompt)
		}

	case model.ActionSubmitVote:
		var req submitVoteRequest
		if err = json.Unmarshal(msg.Payload, &req); err == nil {
			err = h.manager.SubmitVote(connID, req.TargetPlayerID)
		}

	default:
		h.log.Debug().Str("conn", connID).Str("type", msg.Type).Msg("unknown action")
		return
	}

	if err != nil {
		var gameErr *model.GameError
		if !errors.As(err, &gameErr) {
			// Malformed payloads land here too, surface them the same way.
			h.sendError(connID, "Invalid request")
			h.log.Warn().Err(err).Str("conn", connID).Str("type", msg.Type).Msg("action failed")
			return
		}
		h.sendError(connID, gameErr.Message)
	}
}

func (h *Handler) sendError(connID, message string) {
	h.hub.ToConn(connID, model.EventError, model.ErrorPayload{Message: message})
}
