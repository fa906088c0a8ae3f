package game

// Status describes where a session is in its lifecycle. It is derived from
// the session fields rather than stored.
type Status string

const (
	StatusAwaitingOpponent Status = "awaiting_opponent"
	StatusInProgress       Status = "in_progress"
	StatusConcluded        Status = "concluded"
)

// Session is the authoritative state of one room: board, turn and the two
// player bindings. Only the Manager mutates it, under the manager lock.
type Session struct {
	RoomID   string
	PlayerX  string // connection id bound to X
	PlayerO  string // empty until a second participant joins
	Profiles map[string]Profile
	Board    Board
	Turn     Symbol

	rematchVotes map[string]struct{}
}

func newSession(roomID, connID string, profile Profile) *Session {
	return &Session{
		RoomID:       roomID,
		PlayerX:      connID,
		Profiles:     map[string]Profile{connID: profile},
		Turn:         SymbolX,
		rematchVotes: make(map[string]struct{}),
	}
}

// Status derives the lifecycle phase from the player bindings and the board.
func (s *Session) Status() Status {
	if s.PlayerO == "" {
		return StatusAwaitingOpponent
	}
	if sym, _ := s.Board.winner(); sym != Empty || s.Board.full() {
		return StatusConcluded
	}
	return StatusInProgress
}

func (s *Session) bound(connID string) bool {
	return s.PlayerX == connID || s.PlayerO == connID
}
