package service

import (
	"github.com/rs/zerolog"

	"github.com/partyline/lanboard/game/room"
	"github.com/partyline/lanboard/transport/ws"
)

// hostBroadcaster fans an engine event out to every connected guest and
// loops it back to the host's own UI through the emitter, so the hosting
// player observes the game exactly like a remote one.
type hostBroadcaster struct {
	host    *ws.Host
	emitter *Emitter
}

func (b *hostBroadcaster) Broadcast(event string, data any) {
	b.host.Broadcast(event, data)
	b.emitter.Emit(event, data)
}

// registryStore adapts the room registry to the engine's RoomStore,
// mirroring each save to disk persistence when configured.
type registryStore struct {
	rooms       *room.RoomRegistry
	persistence RoomPersister
	log         zerolog.Logger
}

// RoomPersister is the slice of session.RoomPersistence the store needs.
type RoomPersister interface {
	Save(r *room.Room) error
}

func (s *registryStore) Save(r *room.Room) {
	s.rooms.Save(r)
	if s.persistence != nil {
		// Persistence failures are non-fatal; the in-memory room stays
		// authoritative.
		if err := s.persistence.Save(r); err != nil {
			s.log.Warn().Err(err).Str("room", r.ID).Msg("failed to persist room")
		}
	}
}
