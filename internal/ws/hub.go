package ws

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"tictactoe_server/internal/game"
	"tictactoe_server/internal/lobby"
	"tictactoe_server/internal/logger"
)

// Hub is the connection gateway: it owns the client registry and the
// per-room membership mirror, routes every inbound event into exactly one
// core operation, and performs all broadcast side effects from the returned
// result. The core never touches a connection.
type Hub struct {
	games *game.Manager
	lobby *lobby.Directory

	mu      sync.Mutex
	clients map[string]*Client            // by connection id
	members map[string]map[string]*Client // roomId → connection id → client
}

func NewHub(games *game.Manager, lobbyDir *lobby.Directory) *Hub {
	return &Hub{
		games:   games,
		lobby:   lobbyDir,
		clients: make(map[string]*Client),
		members: make(map[string]map[string]*Client),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()

	// A returning creator cancels the pending grace eviction.
	h.lobby.HandleCreatorReconnect(c.ParticipantID)

	connectionsActive.Inc()
	logger.Info("client connected", "conn", c.ID, "participant", c.ParticipantID)
}

// unregister handles a transport-level disconnect: the session dies, the
// lobby sheds the connection, and the creator-grace window opens if the
// departed connection was advertising a room.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.ID)
	h.mu.Unlock()

	if roomID, ok := h.games.Leave(c.ID); ok {
		h.leaveRoom(roomID, c)
		h.toRoom(roomID, Message{Type: EvtOpponentLeft})
		h.dropRoom(roomID)
	}
	h.lobby.HandleCreatorDisconnect(c.ID)
	h.lobby.RemovePlayerFromRoom(c.ID)
	h.broadcastRooms()

	connectionsActive.Dec()
	logger.Info("client disconnected", "conn", c.ID, "participant", c.ParticipantID)
}

func (h *Hub) handleMessage(c *Client, raw []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		logger.Warn("malformed message", "conn", c.ID, "err", err)
		return
	}

	switch msg.Type {
	case EvtCreateGame:
		h.handleCreate(c, msg.Payload)
	case EvtJoinGame:
		h.handleJoin(c, msg.Payload)
	case EvtMakeMove:
		h.handleMove(c, msg.Payload)
	case EvtRequestRematch:
		h.handleRematch(c, msg.Payload)
	case EvtLeaveGame:
		h.handleLeave(c)
	case EvtGetRooms:
		c.enqueue(Message{Type: EvtRoomsUpdated, Payload: RoomsUpdatedPayload{Rooms: h.lobby.AvailableRooms()}})
	default:
		logger.Warn("unknown event", "conn", c.ID, "type", msg.Type)
	}
}

func (h *Hub) handleCreate(c *Client, raw json.RawMessage) {
	var p CreateGamePayload
	if err := json.Unmarshal(raw, &p); err != nil || p.RoomID == "" {
		logger.Warn("bad create_game payload", "conn", c.ID)
		return
	}

	profile := h.resolveProfile(c, p.Profile)
	if err := h.games.Create(p.RoomID, c.ID, profile); err != nil {
		h.sendError(c, err)
		return
	}

	h.lobby.AddRoom(p.RoomID, profile, c.ID)
	h.joinRoom(p.RoomID, c)
	sessionsCreated.Inc()

	c.enqueue(Message{Type: EvtCreated, Payload: CreatedPayload{RoomID: p.RoomID}})
	h.broadcastRooms()
}

func (h *Hub) handleJoin(c *Client, raw json.RawMessage) {
	var p JoinGamePayload
	if err := json.Unmarshal(raw, &p); err != nil || p.RoomID == "" {
		logger.Warn("bad join_game payload", "conn", c.ID)
		return
	}

	res, err := h.games.Join(p.RoomID, c.ID, h.resolveProfile(c, p.Profile))
	if err != nil {
		h.sendError(c, err)
		return
	}

	h.joinRoom(p.RoomID, c)
	h.lobby.AddPlayerToRoom(p.RoomID, c.ID)

	// Each side gets its own symbol and the opponent's profile.
	h.toClient(res.XID, Message{Type: EvtGameStart, Payload: GameStartPayload{
		Symbol:   game.SymbolX,
		Opponent: res.OProfile,
		Turn:     game.SymbolX,
	}})
	h.toClient(res.OID, Message{Type: EvtGameStart, Payload: GameStartPayload{
		Symbol:   game.SymbolO,
		Opponent: res.XProfile,
		Turn:     game.SymbolX,
	}})
	h.broadcastRooms()
}

func (h *Hub) handleMove(c *Client, raw json.RawMessage) {
	var p MakeMovePayload
	if err := json.Unmarshal(raw, &p); err != nil || p.RoomID == "" {
		logger.Warn("bad make_move payload", "conn", c.ID)
		return
	}

	res, err := h.games.Move(p.RoomID, c.ID, p.Index, p.Symbol)
	if err != nil {
		h.sendError(c, err)
		return
	}

	h.toRoom(p.RoomID, Message{Type: EvtUpdateBoard, Payload: UpdateBoardPayload{
		Board: res.Board,
		Turn:  res.Turn,
	}})

	if res.Winner != "" {
		h.toRoom(p.RoomID, Message{Type: EvtGameOver, Payload: GameOverPayload{
			Winner:  res.Winner,
			WinLine: res.WinLine,
		}})
		gamesFinished.WithLabelValues(strings.ToLower(res.Winner)).Inc()
	}
}

func (h *Hub) handleRematch(c *Client, raw json.RawMessage) {
	var p RoomIDPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.RoomID == "" {
		logger.Warn("bad request_rematch payload", "conn", c.ID)
		return
	}

	res, err := h.games.VoteRematch(p.RoomID, c.ID)
	if err != nil {
		h.sendError(c, err)
		return
	}

	if !res.Restarted {
		h.toRoomExcept(p.RoomID, c.ID, Message{Type: EvtOpponentWantsRematch})
		return
	}

	h.toClient(res.NewXID, Message{Type: EvtGameRestarted, Payload: GameRestartedPayload{
		Board:  res.Board,
		Turn:   res.Turn,
		Symbol: game.SymbolX,
	}})
	h.toClient(res.NewOID, Message{Type: EvtGameRestarted, Payload: GameRestartedPayload{
		Board:  res.Board,
		Turn:   res.Turn,
		Symbol: game.SymbolO,
	}})
}

func (h *Hub) handleLeave(c *Client) {
	roomID, ok := h.games.Leave(c.ID)
	if ok {
		h.leaveRoom(roomID, c)
		h.toRoom(roomID, Message{Type: EvtOpponentLeft})
		h.dropRoom(roomID)
		// An explicit leave closes the advertisement outright; the
		// grace path is for dropped transports only.
		h.lobby.RemoveRoom(roomID)
	}
	h.lobby.RemovePlayerFromRoom(c.ID)
	h.broadcastRooms()
}

// resolveProfile builds the session profile: stable participant id from the
// token, display fields from the payload when given, token defaults
// otherwise.
func (h *Hub) resolveProfile(c *Client, p ProfilePayload) game.Profile {
	profile := c.Profile
	if p.Name != "" {
		profile.Name = p.Name
	}
	if p.Avatar != nil {
		profile.Avatar = p.Avatar
	}
	return profile
}

func (h *Hub) sendError(c *Client, err error) {
	var code game.Error
	if !errors.As(err, &code) {
		logger.Error("unexpected core error", "conn", c.ID, "err", err)
		return
	}
	c.enqueue(Message{Type: EvtError, Payload: ErrorPayload{Code: string(code)}})
}

// room membership (the socket.io join/leave mirror)

func (h *Hub) joinRoom(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.members[roomID] == nil {
		h.members[roomID] = make(map[string]*Client)
	}
	h.members[roomID][c.ID] = c
}

func (h *Hub) leaveRoom(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.members[roomID], c.ID)
}

func (h *Hub) dropRoom(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.members, roomID)
}

// broadcasts

func (h *Hub) toClient(connID string, msg Message) {
	h.mu.Lock()
	c, ok := h.clients[connID]
	h.mu.Unlock()
	if ok {
		c.enqueue(msg)
	}
}

func (h *Hub) toRoom(roomID string, msg Message) {
	h.mu.Lock()
	targets := make([]*Client, 0, len(h.members[roomID]))
	for _, c := range h.members[roomID] {
		targets = append(targets, c)
	}
	h.mu.Unlock()
	for _, c := range targets {
		c.enqueue(msg)
	}
}

func (h *Hub) toRoomExcept(roomID, exceptConnID string, msg Message) {
	h.mu.Lock()
	targets := make([]*Client, 0, len(h.members[roomID]))
	for id, c := range h.members[roomID] {
		if id != exceptConnID {
			targets = append(targets, c)
		}
	}
	h.mu.Unlock()
	for _, c := range targets {
		c.enqueue(msg)
	}
}

// broadcastRooms pushes the fresh lobby listing to every connection after
// any lobby mutation.
func (h *Hub) broadcastRooms() {
	rooms := h.lobby.AvailableRooms()
	roomsAvailable.Set(float64(len(rooms)))

	msg := Message{Type: EvtRoomsUpdated, Payload: RoomsUpdatedPayload{Rooms: rooms}}
	h.mu.Lock()
	targets := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.Unlock()
	for _, c := range targets {
		c.enqueue(msg)
	}
}
