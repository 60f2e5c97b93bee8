package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/partyline/lanboard/game/engine"
	"github.com/partyline/lanboard/game/room"
)

var (
	ErrInstanceNotFound      = errors.New("game instance not found")
	ErrInstanceAlreadyExists = errors.New("game instance already exists")
	ErrUnknownGameType       = errors.New("unknown game type")
)

// Manager owns the live engine instances, keyed by room ID. It constructs
// the right engine for a room's game type and can rebuild one from a
// persisted room after a host restart.
type Manager struct {
	instances map[string]engine.Instance
	log       zerolog.Logger
	mu        sync.RWMutex
}

// NewManager creates an empty instance manager.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		instances: make(map[string]engine.Instance),
		log:       log.With().Str("component", "session").Logger(),
	}
}

// Create builds and registers a new engine instance for the room. The
// store and broadcaster are supplied by the caller so the same manager
// serves hosted rooms and local test harnesses alike.
func (m *Manager) Create(r *room.Room, store engine.RoomStore, b engine.Broadcaster) (engine.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.instances[r.ID]; exists {
		return nil, ErrInstanceAlreadyExists
	}

	inst, err := m.build(r, store, b)
	if err != nil {
		return nil, err
	}

	m.instances[r.ID] = inst
	m.log.Debug().Str("room", r.ID).Str("game_type", r.GameType).Msg("instance created")
	return inst, nil
}

// Get retrieves the live instance for a room.
func (m *Manager) Get(roomID string) (engine.Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inst, exists := m.instances[roomID]
	if !exists {
		return nil, ErrInstanceNotFound
	}
	return inst, nil
}

// GetOrRecreate returns the live instance, or rebuilds one from the
// persisted room and resumes it. Used when a room outlived its engine,
// typically across a host restart.
func (m *Manager) GetOrRecreate(r *room.Room, store engine.RoomStore, b engine.Broadcaster) (engine.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if inst, exists := m.instances[r.ID]; exists {
		return inst, nil
	}

	inst, err := m.build(r, store, b)
	if err != nil {
		return nil, err
	}
	if err := inst.OnResume(); err != nil {
		return nil, fmt.Errorf("failed to resume room %s: %w", r.ID, err)
	}

	m.instances[r.ID] = inst
	m.log.Info().Str("room", r.ID).Msg("instance recreated from persisted room")
	return inst, nil
}

// Remove drops the instance for a room. A no-op if none exists.
func (m *Manager) Remove(roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.instances, roomID)
}

// Count returns the number of live instances.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.instances)
}

func (m *Manager) build(r *room.Room, store engine.RoomStore, b engine.Broadcaster) (engine.Instance, error) {
	switch r.GameType {
	case room.GameTypeBoard, "":
		return engine.NewBoardGame(r, store, b, m.log), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGameType, r.GameType)
	}
}
