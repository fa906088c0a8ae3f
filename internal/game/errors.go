package game

// Error is a stable machine-readable code. The gateway forwards codes
// verbatim in error events; user-facing translation happens on the client.
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrRoomOccupied Error = "ROOM_OCCUPIED"
	ErrRoomNotFound Error = "ROOM_NOT_FOUND"
	ErrRoomFull     Error = "ROOM_FULL"
	ErrGameNotFound Error = "GAME_NOT_FOUND"
	ErrNotYourTurn  Error = "NOT_YOUR_TURN"
	ErrCellOccupied Error = "CELL_OCCUPIED"
	ErrWrongPlayer  Error = "WRONG_PLAYER"
)
