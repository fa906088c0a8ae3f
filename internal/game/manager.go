package game

import (
	"crypto/rand"
	"math/big"
	"sync"
)

// WinnerDraw is the winner value reported when the board fills with no line.
const WinnerDraw = "Draw"

// Manager owns the roomId → Session map and is its sole mutator. Every
// operation is one critical section, so a second message for the same room
// can never read state between another message's check and write.
type Manager struct {
	mu    sync.Mutex
	games map[string]*Session
	flip  func() bool
}

// NewManager returns a manager whose coin flip draws from crypto/rand.
func NewManager() *Manager {
	return NewManagerWithFlip(defaultFlip)
}

// NewManagerWithFlip allows tests to pin the symbol assignment.
func NewManagerWithFlip(flip func() bool) *Manager {
	return &Manager{
		games: make(map[string]*Session),
		flip:  flip,
	}
}

// defaultFlip draws one fair bit, the same way the original rolls outcomes.
func defaultFlip() bool {
	n, err := rand.Int(rand.Reader, big.NewInt(2))
	if err != nil {
		return false
	}
	return n.Int64() == 1
}

// Create registers a new session for roomID with the caller seated as X and
// an empty board. Fails with ROOM_OCCUPIED if the room id is already live.
func (m *Manager) Create(roomID, connID string, profile Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.games[roomID]; ok {
		return ErrRoomOccupied
	}
	m.games[roomID] = newSession(roomID, connID, profile)
	return nil
}

// JoinResult reports the coin-flip outcome: which connection plays which
// symbol, with each side's profile so the gateway can notify both parties.
type JoinResult struct {
	XID      string
	OID      string
	XProfile Profile
	OProfile Profile
}

// Join seats a second participant. The X/O assignment is a fair coin flip
// independent of arrival order, so the creator does not always move first.
func (m *Manager) Join(roomID, connID string, profile Profile) (JoinResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.games[roomID]
	if !ok {
		return JoinResult{}, ErrRoomNotFound
	}
	if len(s.Profiles) >= 2 {
		return JoinResult{}, ErrRoomFull
	}

	s.Profiles[connID] = profile
	first := s.PlayerX

	xID, oID := first, connID
	if m.flip() {
		xID, oID = connID, first
	}
	s.PlayerX = xID
	s.PlayerO = oID

	return JoinResult{
		XID:      xID,
		OID:      oID,
		XProfile: s.Profiles[xID],
		OProfile: s.Profiles[oID],
	}, nil
}

// MoveResult describes the board after a legal move. Turn carries the next
// symbol to act while the game is in progress; once Winner is set ("X", "O"
// or "Draw") Turn is empty and WinLine holds the deciding triple on a win.
type MoveResult struct {
	Board   Board
	Turn    Symbol
	Winner  string
	WinLine []int
}

// Move validates and applies one mark. Checks run in a fixed order, failing
// on the first violated one: the session exists, the claimed symbol holds the
// turn, the cell is free, and the caller is the connection bound to that
// symbol. A rejected move leaves the session untouched.
func (m *Manager) Move(roomID, connID string, index int, symbol Symbol) (MoveResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.games[roomID]
	if !ok {
		return MoveResult{}, ErrGameNotFound
	}
	if s.Turn != symbol {
		return MoveResult{}, ErrNotYourTurn
	}
	if index < 0 || index > 8 || s.Board[index] != Empty {
		return MoveResult{}, ErrCellOccupied
	}
	if symbol == SymbolX && s.PlayerX != connID {
		return MoveResult{}, ErrWrongPlayer
	}
	if symbol == SymbolO && s.PlayerO != connID {
		return MoveResult{}, ErrWrongPlayer
	}

	s.Board[index] = symbol

	if winSym, line := s.Board.winner(); winSym != Empty {
		return MoveResult{Board: s.Board, Winner: string(winSym), WinLine: line}, nil
	}
	if s.Board.full() {
		return MoveResult{Board: s.Board, Winner: WinnerDraw}, nil
	}

	s.Turn = symbol.Other()
	return MoveResult{Board: s.Board, Turn: s.Turn}, nil
}

// RematchResult reports a rematch vote. On a restart the board is empty, X
// moves first and NewXID/NewOID carry the swapped bindings.
type RematchResult struct {
	Restarted bool
	Board     Board
	Turn      Symbol
	NewXID    string
	NewOID    string
}

// VoteRematch records a rematch vote for the caller. Only the two bound
// connections may vote; voting is idempotent per connection and the restart
// fires only when both have voted. On restart the sides swap, the board
// clears and the votes reset.
func (m *Manager) VoteRematch(roomID, connID string) (RematchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.games[roomID]
	if !ok {
		return RematchResult{}, ErrGameNotFound
	}
	if !s.bound(connID) {
		return RematchResult{}, ErrWrongPlayer
	}

	s.rematchVotes[connID] = struct{}{}

	if len(s.rematchVotes) < 2 || s.PlayerO == "" {
		return RematchResult{}, nil
	}

	s.PlayerX, s.PlayerO = s.PlayerO, s.PlayerX
	s.Board = Board{}
	s.Turn = SymbolX
	s.rematchVotes = make(map[string]struct{})

	return RematchResult{
		Restarted: true,
		Board:     s.Board,
		Turn:      s.Turn,
		NewXID:    s.PlayerX,
		NewOID:    s.PlayerO,
	}, nil
}

// Leave deletes the session the connection is bound to, if any, and returns
// its room id. Deletion is unconditional: the game is strictly 1-vs-1, so any
// departure ends the match rather than leaving a half-open room.
func (m *Manager) Leave(connID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for roomID, s := range m.games {
		if s.bound(connID) {
			delete(m.games, roomID)
			return roomID, true
		}
	}
	return "", false
}
