package game

// Symbol is one of the two marks bound to a player for the duration of a
// session (until a rematch swaps sides).
type Symbol string

const (
	SymbolX Symbol = "X"
	SymbolO Symbol = "O"
	Empty   Symbol = ""
)

// Other returns the opposing symbol.
func (s Symbol) Other() Symbol {
	if s == SymbolX {
		return SymbolO
	}
	return SymbolX
}

// Board is the 3x3 grid, index 0..8 row-major.
type Board [9]Symbol

func (b Board) full() bool {
	for _, cell := range b {
		if cell == Empty {
			return false
		}
	}
	return true
}

// winLines are the 8 triples that decide a game: rows, columns, diagonals.
var winLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// winner returns the winning symbol and its line, or Empty and nil.
func (b Board) winner() (Symbol, []int) {
	for _, line := range winLines {
		a, mid, c := line[0], line[1], line[2]
		if b[a] != Empty && b[a] == b[mid] && b[mid] == b[c] {
			return b[a], []int{a, mid, c}
		}
	}
	return Empty, nil
}

// Profile is the display identity a participant supplies when creating or
// joining a room. Immutable once attached to a session slot.
type Profile struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Avatar *string `json:"avatar"`
}
