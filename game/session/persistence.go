package session

import "github.com/partyline/lanboard/game/room"

// RoomPersistence stores room aggregates across host restarts. The room
// snapshot carries everything an engine needs to resume: board, task
// pool, positions, and the pending task barrier.
type RoomPersistence interface {
	// Save persists a room to storage.
	Save(r *room.Room) error

	// Load retrieves a room from storage by ID.
	Load(id string) (*room.Room, error)

	// Delete removes a room from storage.
	Delete(id string) error

	// ListAll returns all persisted room IDs.
	ListAll() ([]string, error)

	// Exists checks if a room exists in storage.
	Exists(id string) bool
}
