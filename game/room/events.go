package room

// Wire and local event names shared by the transports, the orchestrator,
// and the game engine. Request events expect a correlated response; the
// rest are host broadcasts fanned out to every peer and looped back to the
// host's own local listeners.
const (
	EventRoomJoin   = "room:join"  // request
	EventRoomLeave  = "room:leave" // request, best effort
	EventRoomUpdate = "room:update"

	EventGameAction            = "game:action" // request
	EventGameDice              = "game:dice"
	EventGameTask              = "game:task"
	EventGameTaskCompleted     = "game:task_completed"
	EventGameAllTasksCompleted = "game:all_tasks_completed"
	EventGameVictory           = "game:victory"
	EventGameNext              = "game:next"

	// Presence changes travel to every peer like the game events.
	EventClientConnected    = "client:connected"
	EventClientDisconnected = "client:disconnected"

	// Discovery results never cross the wire; the listener emits them on
	// the local bus only.
	EventRoomFound = "room:found"
	EventRoomLost  = "room:lost"
)
