package room

import (
	"errors"
	"sync"
)

var ErrPlayerNotFound = errors.New("player not found")

// PlayerRegistry is an in-memory store of player records. Records are never
// deleted while the process lives; disconnects only flip IsConnected so a
// returning guest can resume with score and position intact.
//
// All mutations are synchronous and return the updated record so callers
// can broadcast it immediately. The registry itself never emits events.
type PlayerRegistry struct {
	mu      sync.RWMutex
	players map[string]*Player
}

// NewPlayerRegistry creates an empty player registry.
func NewPlayerRegistry() *PlayerRegistry {
	return &PlayerRegistry{players: make(map[string]*Player)}
}

// Upsert creates the player on first contact or refreshes the mutable
// identity fields of an existing record, preserving score, position, and
// completed tasks across reconnects.
func (reg *PlayerRegistry) Upsert(p *Player) *Player {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	existing, ok := reg.players[p.ID]
	if !ok {
		cp := *p
		reg.players[p.ID] = &cp
		return &cp
	}

	if p.Name != "" {
		existing.Name = p.Name
	}
	if p.Avatar != "" {
		existing.Avatar = p.Avatar
	}
	if p.Color != "" {
		existing.Color = p.Color
	}
	existing.IsHost = p.IsHost
	existing.IsConnected = p.IsConnected
	return existing
}

// Get returns the player with the given id.
func (reg *PlayerRegistry) Get(id string) (*Player, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	p, ok := reg.players[id]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return p, nil
}

// SetConnected toggles the connection flag, returning the updated record
// or nil if the player is unknown.
func (reg *PlayerRegistry) SetConnected(id string, connected bool) *Player {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	p, ok := reg.players[id]
	if !ok {
		return nil
	}
	p.IsConnected = connected
	return p
}

// SetRoom records the player's room affiliation.
func (reg *PlayerRegistry) SetRoom(id, roomID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if p, ok := reg.players[id]; ok {
		p.RoomID = roomID
	}
}

// ClearRoom removes the player's room affiliation on leave.
func (reg *PlayerRegistry) ClearRoom(id string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if p, ok := reg.players[id]; ok {
		p.RoomID = ""
	}
}

// List returns every known player record.
func (reg *PlayerRegistry) List() []*Player {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	out := make([]*Player, 0, len(reg.players))
	for _, p := range reg.players {
		out = append(out, p)
	}
	return out
}
