package room

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
)

// RoomRegistry is an in-memory store of room aggregates guarded against
// structural invariant violations: membership never exceeds MaxPlayers and
// the host id always refers to a member.
//
// Like the player registry, mutations are synchronous and return the
// updated aggregate; disposal policy for emptied rooms belongs to the
// orchestrator, not here.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewRoomRegistry creates an empty room registry.
func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[string]*Room)}
}

// Create makes a new waiting room owned by hostID.
func (reg *RoomRegistry) Create(name, hostID, gameType string, maxPlayers int) *Room {
	r := &Room{
		ID:         uuid.NewString(),
		Name:       name,
		HostID:     hostID,
		MaxPlayers: maxPlayers,
		GameType:   gameType,
		GameStatus: StatusWaiting,
		Players:    make([]*Player, 0, maxPlayers),
		UpdatedAt:  time.Now(),
	}

	reg.mu.Lock()
	reg.rooms[r.ID] = r
	reg.mu.Unlock()

	return r
}

// Get returns the room with the given id.
func (reg *RoomRegistry) Get(id string) (*Room, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	r, ok := reg.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// Save stamps the room's update time. The registry holds live pointers, so
// the call exists to keep the persist-before-broadcast discipline explicit
// at mutation sites.
func (reg *RoomRegistry) Save(r *Room) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r.UpdatedAt = time.Now()
	reg.rooms[r.ID] = r
}

// Delete removes the room.
func (reg *RoomRegistry) Delete(id string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, id)
}

// List returns every room.
func (reg *RoomRegistry) List() []*Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	out := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		out = append(out, r)
	}
	return out
}

// AddPlayerToRoom adds p to the room, failing without mutation when the
// room is at capacity. Re-adding an existing member is a no-op that
// returns the room, which covers reconnects.
func (reg *RoomRegistry) AddPlayerToRoom(roomID string, p *Player) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}

	if existing := r.FindPlayer(p.ID); existing != nil {
		existing.IsConnected = p.IsConnected
		r.UpdatedAt = time.Now()
		return r, nil
	}

	if len(r.Players) >= r.MaxPlayers {
		return nil, ErrRoomFull
	}

	p.RoomID = r.ID
	r.Players = append(r.Players, p)
	r.UpdatedAt = time.Now()
	return r, nil
}

// RemovePlayerFromRoom removes the player. An emptied room is left in
// place; whether to dispose of it is the caller's decision.
func (reg *RoomRegistry) RemovePlayerFromRoom(roomID, playerID string) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}

	for i, p := range r.Players {
		if p.ID == playerID {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			p.RoomID = ""
			break
		}
	}
	r.UpdatedAt = time.Now()
	return r, nil
}
