package game

import (
	"errors"
	"testing"
)

// creatorStaysX pins the coin flip so the creator keeps X.
func creatorStaysX() bool { return false }

// joinerTakesX pins the coin flip so the joiner takes X.
func joinerTakesX() bool { return true }

func newTestMatch(t *testing.T) *Manager {
	t.Helper()
	m := NewManagerWithFlip(creatorStaysX)
	if err := m.Create("r1", "c1", Profile{ID: "p1", Name: "Alice"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := m.Join("r1", "c2", Profile{ID: "p2", Name: "Bob"}); err != nil {
		t.Fatalf("join: %v", err)
	}
	return m
}

func TestCreateRejectsLiveRoomID(t *testing.T) {
	m := NewManager()
	if err := m.Create("r1", "c1", Profile{Name: "Alice"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := m.Create("r1", "c2", Profile{Name: "Bob"}); !errors.Is(err, ErrRoomOccupied) {
		t.Fatalf("second create = %v; want ROOM_OCCUPIED", err)
	}
}

func TestJoinAssignsSymbolsByCoinFlip(t *testing.T) {
	cases := []struct {
		name     string
		flip     func() bool
		wantX    string
		wantO    string
		wantXNam string
	}{
		{"creator keeps X", creatorStaysX, "c1", "c2", "Alice"},
		{"joiner takes X", joinerTakesX, "c2", "c1", "Bob"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewManagerWithFlip(tc.flip)
			if err := m.Create("r1", "c1", Profile{Name: "Alice"}); err != nil {
				t.Fatalf("create: %v", err)
			}
			res, err := m.Join("r1", "c2", Profile{Name: "Bob"})
			if err != nil {
				t.Fatalf("join: %v", err)
			}
			if res.XID != tc.wantX || res.OID != tc.wantO {
				t.Fatalf("assignment = X:%s O:%s; want X:%s O:%s", res.XID, res.OID, tc.wantX, tc.wantO)
			}
			if res.XProfile.Name != tc.wantXNam {
				t.Fatalf("X profile = %s; want %s", res.XProfile.Name, tc.wantXNam)
			}
		})
	}
}

func TestJoinErrors(t *testing.T) {
	m := newTestMatch(t)
	if _, err := m.Join("nope", "c3", Profile{}); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("join missing room = %v; want ROOM_NOT_FOUND", err)
	}
	if _, err := m.Join("r1", "c3", Profile{}); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("join full room = %v; want ROOM_FULL", err)
	}
}

func TestTurnAlternates(t *testing.T) {
	m := newTestMatch(t)

	res, err := m.Move("r1", "c1", 4, SymbolX)
	if err != nil {
		t.Fatalf("move X: %v", err)
	}
	if res.Turn != SymbolO {
		t.Fatalf("turn after X = %s; want O", res.Turn)
	}

	res, err = m.Move("r1", "c2", 0, SymbolO)
	if err != nil {
		t.Fatalf("move O: %v", err)
	}
	if res.Turn != SymbolX {
		t.Fatalf("turn after O = %s; want X", res.Turn)
	}
}

func TestMoveValidationOrder(t *testing.T) {
	m := newTestMatch(t)

	if _, err := m.Move("nope", "c1", 0, SymbolX); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("missing room = %v; want GAME_NOT_FOUND", err)
	}
	// O claimed out of turn by the wrong connection: turn check fires first.
	if _, err := m.Move("r1", "c1", 0, SymbolO); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("out of turn = %v; want NOT_YOUR_TURN", err)
	}
	if _, err := m.Move("r1", "c1", 0, SymbolX); err != nil {
		t.Fatalf("move: %v", err)
	}
	// Occupied cell claimed by the wrong connection: cell check fires first.
	if _, err := m.Move("r1", "c1", 0, SymbolO); !errors.Is(err, ErrCellOccupied) {
		t.Fatalf("occupied cell = %v; want CELL_OCCUPIED", err)
	}
	if _, err := m.Move("r1", "c1", 5, SymbolO); !errors.Is(err, ErrWrongPlayer) {
		t.Fatalf("wrong connection = %v; want WRONG_PLAYER", err)
	}
	if _, err := m.Move("r1", "c2", 9, SymbolO); !errors.Is(err, ErrCellOccupied) {
		t.Fatalf("out of range index = %v; want CELL_OCCUPIED", err)
	}
}

func TestRejectedMoveLeavesBoardUntouched(t *testing.T) {
	m := newTestMatch(t)
	if _, err := m.Move("r1", "c1", 2, SymbolX); err != nil {
		t.Fatalf("move: %v", err)
	}
	if _, err := m.Move("r1", "c1", 3, SymbolO); !errors.Is(err, ErrWrongPlayer) {
		t.Fatalf("want WRONG_PLAYER, got %v", err)
	}
	res, err := m.Move("r1", "c2", 3, SymbolO)
	if err != nil {
		t.Fatalf("move after rejection: %v", err)
	}
	if res.Board[3] != SymbolO || res.Board[2] != SymbolX {
		t.Fatalf("board corrupted by rejected move: %v", res.Board)
	}
}

func TestWinDetection(t *testing.T) {
	cases := []struct {
		name string
		xAt  []int
		oAt  []int
		line []int
	}{
		{"top row", []int{0, 1, 2}, []int{3, 4}, []int{0, 1, 2}},
		{"left column", []int{0, 3, 6}, []int{1, 4}, []int{0, 3, 6}},
		{"diagonal", []int{0, 4, 8}, []int{1, 2}, []int{0, 4, 8}},
		{"anti-diagonal", []int{2, 4, 6}, []int{0, 1}, []int{2, 4, 6}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestMatch(t)
			var last MoveResult
			for i := range tc.xAt {
				var err error
				last, err = m.Move("r1", "c1", tc.xAt[i], SymbolX)
				if err != nil {
					t.Fatalf("X at %d: %v", tc.xAt[i], err)
				}
				if i < len(tc.oAt) {
					if _, err := m.Move("r1", "c2", tc.oAt[i], SymbolO); err != nil {
						t.Fatalf("O at %d: %v", tc.oAt[i], err)
					}
				}
			}
			if last.Winner != "X" {
				t.Fatalf("winner = %q; want X", last.Winner)
			}
			if len(last.WinLine) != 3 {
				t.Fatalf("win line = %v", last.WinLine)
			}
			for i, idx := range tc.line {
				if last.WinLine[i] != idx {
					t.Fatalf("win line = %v; want %v", last.WinLine, tc.line)
				}
			}
		})
	}
}

func TestDraw(t *testing.T) {
	m := newTestMatch(t)

	// X O X / X O O / O X X — full board, no line.
	moves := []struct {
		conn string
		idx  int
		sym  Symbol
	}{
		{"c1", 0, SymbolX}, {"c2", 1, SymbolO},
		{"c1", 2, SymbolX}, {"c2", 4, SymbolO},
		{"c1", 3, SymbolX}, {"c2", 5, SymbolO},
		{"c1", 7, SymbolX}, {"c2", 6, SymbolO},
		{"c1", 8, SymbolX},
	}

	var last MoveResult
	for _, mv := range moves {
		var err error
		last, err = m.Move("r1", mv.conn, mv.idx, mv.sym)
		if err != nil {
			t.Fatalf("%s at %d: %v", mv.sym, mv.idx, err)
		}
	}
	if last.Winner != WinnerDraw {
		t.Fatalf("winner = %q; want Draw", last.Winner)
	}
	if last.WinLine != nil {
		t.Fatalf("win line on draw = %v; want nil", last.WinLine)
	}
}

func playXWin(t *testing.T, m *Manager, xConn, oConn string) {
	t.Helper()
	seq := []struct {
		conn string
		idx  int
		sym  Symbol
	}{
		{xConn, 0, SymbolX}, {oConn, 3, SymbolO},
		{xConn, 1, SymbolX}, {oConn, 4, SymbolO},
		{xConn, 2, SymbolX},
	}
	for _, mv := range seq {
		if _, err := m.Move("r1", mv.conn, mv.idx, mv.sym); err != nil {
			t.Fatalf("%s at %d: %v", mv.sym, mv.idx, err)
		}
	}
}

func TestRematchVoteIsIdempotentAndSwapsSides(t *testing.T) {
	m := newTestMatch(t)
	playXWin(t, m, "c1", "c2")

	for i := 0; i < 3; i++ {
		res, err := m.VoteRematch("r1", "c1")
		if err != nil {
			t.Fatalf("vote %d: %v", i, err)
		}
		if res.Restarted {
			t.Fatalf("restarted after repeated votes from one connection")
		}
	}

	res, err := m.VoteRematch("r1", "c2")
	if err != nil {
		t.Fatalf("second vote: %v", err)
	}
	if !res.Restarted {
		t.Fatalf("both players voted but no restart")
	}
	if res.NewXID != "c2" || res.NewOID != "c1" {
		t.Fatalf("bindings = X:%s O:%s; want swapped X:c2 O:c1", res.NewXID, res.NewOID)
	}
	if res.Turn != SymbolX {
		t.Fatalf("turn after restart = %s; want X", res.Turn)
	}
	for i, cell := range res.Board {
		if cell != Empty {
			t.Fatalf("board[%d] = %q after restart; want empty", i, cell)
		}
	}

	// Old X now plays O; the swap is live, not just reported.
	if _, err := m.Move("r1", "c1", 0, SymbolX); !errors.Is(err, ErrWrongPlayer) {
		t.Fatalf("old X moving as X = %v; want WRONG_PLAYER", err)
	}
	if _, err := m.Move("r1", "c2", 0, SymbolX); err != nil {
		t.Fatalf("new X move: %v", err)
	}
}

func TestRematchVoteFromUnboundConnectionRejected(t *testing.T) {
	m := newTestMatch(t)
	playXWin(t, m, "c1", "c2")

	if _, err := m.VoteRematch("r1", "stranger"); !errors.Is(err, ErrWrongPlayer) {
		t.Fatalf("stranger vote = %v; want WRONG_PLAYER", err)
	}

	// The rejected vote must not count toward the threshold: one bound
	// player voting afterwards does not restart.
	res, err := m.VoteRematch("r1", "c1")
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if res.Restarted {
		t.Fatalf("restarted with only one bound player voting")
	}
}

func TestRematchVotesResetAfterRestart(t *testing.T) {
	m := newTestMatch(t)
	playXWin(t, m, "c1", "c2")

	if _, err := m.VoteRematch("r1", "c1"); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if _, err := m.VoteRematch("r1", "c2"); err != nil {
		t.Fatalf("vote: %v", err)
	}

	// A fresh vote after the restart must not fire alone.
	res, err := m.VoteRematch("r1", "c1")
	if err != nil {
		t.Fatalf("vote after restart: %v", err)
	}
	if res.Restarted {
		t.Fatalf("single vote restarted the second game")
	}
}

func TestSessionStatusLifecycle(t *testing.T) {
	m := NewManagerWithFlip(creatorStaysX)
	if err := m.Create("r1", "c1", Profile{Name: "Alice"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := m.games["r1"].Status(); got != StatusAwaitingOpponent {
		t.Fatalf("status = %s; want awaiting_opponent", got)
	}

	if _, err := m.Join("r1", "c2", Profile{Name: "Bob"}); err != nil {
		t.Fatalf("join: %v", err)
	}
	if got := m.games["r1"].Status(); got != StatusInProgress {
		t.Fatalf("status = %s; want in_progress", got)
	}

	playXWin(t, m, "c1", "c2")
	if got := m.games["r1"].Status(); got != StatusConcluded {
		t.Fatalf("status = %s; want concluded", got)
	}

	// A rematch restart brings the session back to in progress.
	if _, err := m.VoteRematch("r1", "c1"); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if _, err := m.VoteRematch("r1", "c2"); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if got := m.games["r1"].Status(); got != StatusInProgress {
		t.Fatalf("status after restart = %s; want in_progress", got)
	}
}

func TestVoteRematchUnknownRoom(t *testing.T) {
	m := NewManager()
	if _, err := m.VoteRematch("nope", "c1"); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("vote = %v; want GAME_NOT_FOUND", err)
	}
}

func TestLeaveDeletesWholeSession(t *testing.T) {
	m := newTestMatch(t)

	roomID, ok := m.Leave("c2")
	if !ok || roomID != "r1" {
		t.Fatalf("leave = (%q, %v); want (r1, true)", roomID, ok)
	}
	if _, err := m.Move("r1", "c1", 0, SymbolX); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("move after leave = %v; want GAME_NOT_FOUND", err)
	}
	if _, ok := m.Leave("c1"); ok {
		t.Fatalf("second leave found a session")
	}
}

func TestLeaveUnknownConnectionIsNoop(t *testing.T) {
	m := newTestMatch(t)
	if _, ok := m.Leave("stranger"); ok {
		t.Fatalf("leave by unbound connection deleted a session")
	}
	if _, err := m.Move("r1", "c1", 0, SymbolX); err != nil {
		t.Fatalf("session gone after stranger leave: %v", err)
	}
}

func TestFullMatchScenario(t *testing.T) {
	m := NewManagerWithFlip(joinerTakesX)
	if err := m.Create("r1", "c1", Profile{ID: "p1", Name: "Alice"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	res, err := m.Join("r1", "c2", Profile{ID: "p2", Name: "Bob"})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if res.XID != "c2" || res.OProfile.Name != "Alice" {
		t.Fatalf("join result = %+v", res)
	}

	// The creator lost the flip: moving as X is rejected.
	if _, err := m.Move("r1", "c1", 0, SymbolX); !errors.Is(err, ErrWrongPlayer) {
		t.Fatalf("creator as X = %v; want WRONG_PLAYER", err)
	}

	playXWin(t, m, "c2", "c1")

	if _, err := m.VoteRematch("r1", "c1"); err != nil {
		t.Fatalf("vote: %v", err)
	}
	re, err := m.VoteRematch("r1", "c2")
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if !re.Restarted || re.NewXID != "c1" {
		t.Fatalf("rematch = %+v; want restart with X back on c1", re)
	}
}
