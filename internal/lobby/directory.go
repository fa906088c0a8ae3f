package lobby

import (
	"sort"
	"sync"
	"time"

	"tictactoe_server/internal/game"
)

const (
	// DefaultMaxAge is how long an unfilled room stays advertised.
	DefaultMaxAge = time.Hour
	// DefaultGrace is how long a disconnected creator's room survives
	// pending reconnection.
	DefaultGrace = 30 * time.Second
)

// Entry advertises a room still open to a second participant.
type Entry struct {
	ID             string
	CreatorProfile game.Profile
	CreatedAt      time.Time

	players   []string // connection ids, 1 or 2
	creatorID string   // stable participant id, survives reconnects
}

// RoomInfo is the public listing shape; occupancy internals are stripped.
type RoomInfo struct {
	ID             string       `json:"id"`
	CreatorProfile game.Profile `json:"creatorProfile"`
	CreatedAt      time.Time    `json:"createdAt"`
}

type disconnectRecord struct {
	roomID string
	at     time.Time
}

// Directory tracks rooms awaiting a second player plus the grace table for
// creators whose transport dropped. Expiry is pull-based: timestamps are
// compared on the next listing or disconnect call, never by timers.
type Directory struct {
	mu     sync.Mutex
	rooms  map[string]*Entry
	graces map[string]disconnectRecord // keyed by creator participant id

	maxAge time.Duration
	grace  time.Duration
	now    func() time.Time
}

func NewDirectory(maxAge, grace time.Duration) *Directory {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Directory{
		rooms:  make(map[string]*Entry),
		graces: make(map[string]disconnectRecord),
		maxAge: maxAge,
		grace:  grace,
		now:    time.Now,
	}
}

// AddRoom inserts a fresh advertisement with the creator as sole occupant.
func (d *Directory) AddRoom(roomID string, creator game.Profile, connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.rooms[roomID] = &Entry{
		ID:             roomID,
		CreatorProfile: creator,
		CreatedAt:      d.now(),
		players:        []string{connID},
		creatorID:      creator.ID,
	}
}

// RemoveRoom drops the advertisement outright, along with any pending
// disconnect grace pointing at it.
func (d *Directory) RemoveRoom(roomID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.rooms, roomID)
	for creatorID, rec := range d.graces {
		if rec.roomID == roomID {
			delete(d.graces, creatorID)
		}
	}
}

// AddPlayerToRoom appends the connection; a room holding two players is no
// longer advertised, though its game session continues independently.
func (d *Directory) AddPlayerToRoom(roomID, connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.rooms[roomID]
	if !ok {
		return
	}
	room.players = append(room.players, connID)
	if len(room.players) >= 2 {
		delete(d.rooms, roomID)
	}
}

// RemovePlayerFromRoom strips the connection from every entry and deletes
// entries left empty, returning their room ids. Used for disconnects outside
// the creator-grace path.
func (d *Directory) RemovePlayerFromRoom(connID string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var empty []string
	for roomID, room := range d.rooms {
		room.players = without(room.players, connID)
		if len(room.players) == 0 {
			empty = append(empty, roomID)
			delete(d.rooms, roomID)
		}
	}
	return empty
}

// HandleCreatorDisconnect records a grace window for any room whose creator
// just dropped, keyed by the creator's stable participant id so a new
// connection can reclaim it. Rooms emptied by the departure are deleted
// immediately, with nothing left to reconnect to.
func (d *Directory) HandleCreatorDisconnect(connID string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var removed []string
	for roomID, room := range d.rooms {
		if room.creatorID == "" || !contains(room.players, connID) {
			continue
		}
		d.graces[room.creatorID] = disconnectRecord{roomID: roomID, at: d.now()}
		room.players = without(room.players, connID)
		if len(room.players) == 0 {
			removed = append(removed, roomID)
			delete(d.rooms, roomID)
			delete(d.graces, room.creatorID)
		}
	}
	return removed
}

// HandleCreatorReconnect clears the pending grace record so the next sweep
// does not evict the creator's room.
func (d *Directory) HandleCreatorReconnect(creatorID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.graces, creatorID)
}

// AvailableRooms sweeps expired entries, then lists rooms with exactly one
// occupant, oldest first.
func (d *Directory) AvailableRooms() []RoomInfo {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.sweep()

	rooms := make([]RoomInfo, 0, len(d.rooms))
	for _, room := range d.rooms {
		if len(room.players) != 1 {
			continue
		}
		rooms = append(rooms, RoomInfo{
			ID:             room.ID,
			CreatorProfile: room.CreatorProfile,
			CreatedAt:      room.CreatedAt,
		})
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
	})
	return rooms
}

// sweep deletes stale rooms and rooms whose creator's grace lapsed. Caller
// holds the lock.
func (d *Directory) sweep() {
	now := d.now()

	for roomID, room := range d.rooms {
		if now.Sub(room.CreatedAt) > d.maxAge {
			delete(d.rooms, roomID)
		}
	}

	for creatorID, rec := range d.graces {
		if now.Sub(rec.at) > d.grace {
			delete(d.rooms, rec.roomID)
			delete(d.graces, creatorID)
		}
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
