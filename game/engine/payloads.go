package engine

import "github.com/partyline/lanboard/game/room"

// RollResult is the reply to roll_dice and the game:dice broadcast, sent
// before any movement so every client can play the same dice animation.
type RollResult struct {
	PlayerID string `json:"playerId"`
	Value    int    `json:"value"`
}

// MoveResult is the reply to move_complete.
type MoveResult struct {
	PlayerID string           `json:"playerId"`
	Position int              `json:"position"`
	Bounced  bool             `json:"bounced,omitempty"`
	Trigger  room.TaskTrigger `json:"trigger,omitempty"`
	Winner   bool             `json:"winner,omitempty"`
}

// TaskAnnouncement is the game:task broadcast carrying the freshly
// assigned composite task.
type TaskAnnouncement struct {
	RoomID string               `json:"roomId"`
	Task   *room.TaskAssignment `json:"task"`
}

// TaskCompleted is the reply to complete_task and the game:task_completed
// partial-completion broadcast.
type TaskCompleted struct {
	PlayerID  string `json:"playerId"`
	Completed bool   `json:"completed"`
	Delta     int    `json:"delta"`
	Position  int    `json:"position"`
	AllDone   bool   `json:"allDone"`
}

// AllTasksCompleted is the game:all_tasks_completed broadcast announcing
// that the task barrier cleared.
type AllTasksCompleted struct {
	RoomID string `json:"roomId"`
}

// NextTurn is the game:next broadcast naming whose turn it now is.
type NextTurn struct {
	PlayerID  string `json:"playerId"`
	TurnCount int    `json:"turnCount"`
}

// Victory is the dedicated game:victory broadcast, distinct from
// room:update so clients can show a takeover screen without racing the
// generic update handler.
type Victory struct {
	Winner       room.PlayerSnapshot `json:"winner"`
	VictoryTasks []string            `json:"victoryTasks,omitempty"`
}
