package engine

import (
	"errors"

	"github.com/partyline/lanboard/game/room"
)

var (
	ErrNotYourTurn    = errors.New("not your turn")
	ErrRoomNotPlaying = errors.New("room is not playing")
	ErrNoPendingRoll  = errors.New("no pending dice roll")
	ErrTaskPending    = errors.New("a task is pending")
	ErrNoPendingTask  = errors.New("no pending task")
	ErrNotAnExecutor  = errors.New("player is not an executor of the pending task")
	ErrUnknownAction  = errors.New("unknown action type")
)

// Broadcaster delivers an event to the room's audience. The engine never
// touches the network: the host injects an implementation that fans out
// over the wire and loops back locally, so engine code is identical no
// matter how the session is transported.
type Broadcaster interface {
	Broadcast(event string, data any)
}

// RoomStore persists the room aggregate. The engine saves the room before
// every broadcast so a reconnecting client that re-fetches it sees state
// consistent with the last announcement.
type RoomStore interface {
	Save(r *room.Room)
}

// Instance is a live game simulation bound to one room. Implementations
// assume the caller serializes calls per room; concurrent OnPlayerAction
// calls for the same room are not supported.
type Instance interface {
	// OnStart transitions the room to playing, initializes board and
	// positions, and notifies the audience.
	OnStart() error

	// OnResume re-derives transient state from the persisted room after a
	// reconnection, without resetting scores or positions.
	OnResume() error

	// OnPlayerAction dispatches one player action. The returned value is
	// the correlated reply for the requesting player only; anything the
	// whole room must see is broadcast separately.
	OnPlayerAction(playerID string, action Action) (any, error)

	// FailPendingTask force-fails the player's uncompleted executor task,
	// if any. Used when an executor disconnects so the task barrier does
	// not stall the room forever.
	FailPendingTask(playerID string) error

	// OnPlayerLeave releases anything the departing player holds: their
	// pending executor task is failed and the turn rotates away if it
	// was theirs.
	OnPlayerLeave(playerID string) error

	// OnEnd transitions the room to ended and sends the final notify.
	OnEnd() error
}
