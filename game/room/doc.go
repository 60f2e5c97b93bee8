// Package room holds the domain model for LAN game sessions and the
// in-memory registries that store it.
//
// The model follows a host-authoritative design: the host process owns the
// Room aggregate and mutates it through the game engine, while guests keep
// a read-only mirror refreshed by room:update broadcasts. GameState's
// position map is the single source of truth for player positions; the
// per-player Position field is a derivative mirror the engine refreshes
// before every broadcast.
//
// Registries:
//
// PlayerRegistry and RoomRegistry are plain mutex-guarded maps with
// synchronous CRUD. They enforce structural invariants (capacity, host
// membership) and return the updated aggregate from every mutation so the
// caller can broadcast it immediately. They deliberately emit no events of
// their own, which keeps them trivially testable.
//
// Both registries are constructed explicitly and injected wherever they
// are needed; there is no package-level shared state, so multiple sessions
// and tests can run in full isolation.
package room
