package ws

import (
	"encoding/json"

	"tictactoe_server/internal/game"
	"tictactoe_server/internal/lobby"
)

// client → server
const (
	EvtCreateGame     = "create_game"
	EvtJoinGame       = "join_game"
	EvtMakeMove       = "make_move"
	EvtRequestRematch = "request_rematch"
	EvtLeaveGame      = "leave_game"
	EvtGetRooms       = "get_rooms"
)

// server → client
const (
	EvtCreated              = "created"
	EvtGameStart            = "game_start"
	EvtUpdateBoard          = "update_board"
	EvtGameOver             = "game_over"
	EvtOpponentLeft         = "opponent_left"
	EvtOpponentWantsRematch = "opponent_wants_rematch"
	EvtGameRestarted        = "game_restarted"
	EvtRoomsUpdated         = "rooms_updated"
	EvtError                = "error"
)

// Message is the outbound envelope.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// inbound envelope; payload decoding is deferred to the per-event handler.
type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// client → server payloads

type ProfilePayload struct {
	Name   string  `json:"name"`
	Avatar *string `json:"avatar"`
}

type CreateGamePayload struct {
	RoomID  string         `json:"room_id"`
	Profile ProfilePayload `json:"profile"`
}

type JoinGamePayload struct {
	RoomID  string         `json:"room_id"`
	Profile ProfilePayload `json:"profile"`
}

type MakeMovePayload struct {
	RoomID string      `json:"room_id"`
	Index  int         `json:"index"`
	Symbol game.Symbol `json:"symbol"`
}

type RoomIDPayload struct {
	RoomID string `json:"room_id"`
}

// server → client payloads

type CreatedPayload struct {
	RoomID string `json:"room_id"`
}

type GameStartPayload struct {
	Symbol   game.Symbol  `json:"symbol"`
	Opponent game.Profile `json:"opponent"`
	Turn     game.Symbol  `json:"turn"`
}

type UpdateBoardPayload struct {
	Board game.Board  `json:"board"`
	Turn  game.Symbol `json:"turn"`
}

type GameOverPayload struct {
	Winner  string `json:"winner"`
	WinLine []int  `json:"winLine"`
}

type GameRestartedPayload struct {
	Board  game.Board  `json:"board"`
	Turn   game.Symbol `json:"turn"`
	Symbol game.Symbol `json:"symbol"`
}

type RoomsUpdatedPayload struct {
	Rooms []lobby.RoomInfo `json:"rooms"`
}

type ErrorPayload struct {
	Code string `json:"code"`
}
