package room

import "time"

// GameStatus tracks the lifecycle of a room's game.
type GameStatus string

const (
	StatusWaiting GameStatus = "waiting"
	StatusPlaying GameStatus = "playing"
	StatusEnded   GameStatus = "ended"
)

// Game phases stamped into GameState.GamePhase before every broadcast.
const (
	PhaseRolling = "rolling"
	PhaseMoving  = "moving"
	PhaseTask    = "task"
	PhaseEnded   = "ended"
)

// CellType classifies a board cell.
type CellType string

const (
	CellPath  CellType = "path"
	CellStart CellType = "start"
	CellEnd   CellType = "end"
	CellTrap  CellType = "trap"
	CellStar  CellType = "star"
)

// TaskTrigger names the board event that caused a task assignment.
type TaskTrigger string

const (
	TriggerTrap      TaskTrigger = "trap"
	TriggerStar      TaskTrigger = "star"
	TriggerCollision TaskTrigger = "collision"
)

// GameTypeBoard is the turn-based board game. Other variants (drawing,
// minesweeper, wheel) share the session layer but live outside this module.
const GameTypeBoard = "board"

// Player is a participant record. Players are soft-retained for the process
// lifetime so a reconnecting guest keeps score and position.
type Player struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	IsHost         bool     `json:"isHost"`
	IsConnected    bool     `json:"isConnected"`
	RoomID         string   `json:"roomId,omitempty"`
	Color          string   `json:"color,omitempty"`
	Avatar         string   `json:"avatar,omitempty"`
	Score          int      `json:"score"`
	Position       int      `json:"position"`
	CompletedTasks []string `json:"completedTasks,omitempty"`
	Achievements   []string `json:"achievements,omitempty"`
}

// Snapshot returns a value copy suitable for embedding in wire payloads.
func (p *Player) Snapshot() PlayerSnapshot {
	return PlayerSnapshot{ID: p.ID, Name: p.Name, Color: p.Color}
}

// PlayerSnapshot is the minimal player identity carried inside task and
// victory payloads.
type PlayerSnapshot struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// TaskSet is the selected task content for a room, as returned by the
// content provider collaborator.
type TaskSet struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tasks       []string `json:"tasks"`
}

// BoardCell is one cell of the generated board path. The path is immutable
// once generated for a room and only regenerated if absent.
type BoardCell struct {
	ID        int      `json:"id"`
	X         int      `json:"x"`
	Y         int      `json:"y"`
	Type      CellType `json:"type"`
	Direction string   `json:"direction"`
}

// DiceRoll is the provisional last-roll record. It is stored when the dice
// are rolled and consumed when the owning client reports move_complete.
type DiceRoll struct {
	PlayerID string `json:"playerId"`
	Value    int    `json:"value"`
}

// TaskContent is the text handed to one executor.
type TaskContent struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// TaskResult records how an executor finished their task instance.
type TaskResult struct {
	Completed bool   `json:"completed"`
	Content   string `json:"content,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// ExecutorTask is one player's share of a composite task. The parent
// assignment resolves only when every instance is completed.
type ExecutorTask struct {
	Executor  PlayerSnapshot `json:"executor"`
	Task      TaskContent    `json:"task"`
	Completed bool           `json:"completed"`
	Result    *TaskResult    `json:"result,omitempty"`
}

// TaskAssignment is the composite task stored as GameState.CurrentTask
// while HasPendingTask is set. Turn rotation is barred until every
// executor instance reports completion.
type TaskAssignment struct {
	Trigger     TaskTrigger     `json:"trigger"`
	TriggeredBy string          `json:"triggeredBy"`
	CellID      int             `json:"cellId"`
	Executors   []*ExecutorTask `json:"executors"`
}

// Executor returns the executor instance belonging to playerID, or nil.
func (t *TaskAssignment) Executor(playerID string) *ExecutorTask {
	for _, et := range t.Executors {
		if et.Executor.ID == playerID {
			return et
		}
	}
	return nil
}

// AllCompleted reports whether every executor instance has finished.
func (t *TaskAssignment) AllCompleted() bool {
	for _, et := range t.Executors {
		if !et.Completed {
			return false
		}
	}
	return true
}

// GameState is the engine-owned shared state embedded in a Room. The
// engine is the single source of truth for positions; the mirror in
// Players[].Position is derivative and refreshed by the engine before
// every broadcast.
type GameState struct {
	PlayerPositions map[string]int  `json:"playerPositions"`
	TurnCount       int             `json:"turnCount"`
	GamePhase       string          `json:"gamePhase"`
	BoardSize       int             `json:"boardSize"`
	LastDiceRoll    *DiceRoll       `json:"lastDiceRoll,omitempty"`
	CurrentTask     *TaskAssignment `json:"currentTask,omitempty"`
	HasPendingTask  bool            `json:"hasPendingTask"`
	Winner          *PlayerSnapshot `json:"winner,omitempty"`
}

// Room is the authoritative session aggregate. The host owns it; guests
// hold a read-only mirror refreshed by room:update broadcasts.
type Room struct {
	ID                  string      `json:"id"`
	Name                string      `json:"name"`
	HostID              string      `json:"hostId"`
	MaxPlayers          int         `json:"maxPlayers"`
	Players             []*Player   `json:"players"`
	GameType            string      `json:"gameType"`
	TaskSet             *TaskSet    `json:"taskSet,omitempty"`
	GameStatus          GameStatus  `json:"gameStatus"`
	CurrentTurnPlayerID string      `json:"currentTurnPlayerId,omitempty"`
	BoardPath           []BoardCell `json:"boardPath,omitempty"`
	Tasks               []string    `json:"tasks,omitempty"`
	GameState           *GameState  `json:"gameState,omitempty"`
	UpdatedAt           time.Time   `json:"updatedAt"`
}

// FindPlayer returns the member with the given id, or nil.
func (r *Room) FindPlayer(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// IsFull reports whether the room is at capacity.
func (r *Room) IsFull() bool {
	return len(r.Players) >= r.MaxPlayers
}

// ConnectedCount returns the number of currently connected members.
func (r *Room) ConnectedCount() int {
	n := 0
	for _, p := range r.Players {
		if p.IsConnected {
			n++
		}
	}
	return n
}

// Snapshot returns a deep copy safe to hand to JSON marshalling on another
// goroutine while the engine keeps mutating the original.
func (r *Room) Snapshot() *Room {
	cp := *r

	cp.Players = make([]*Player, len(r.Players))
	for i, p := range r.Players {
		pc := *p
		pc.CompletedTasks = append([]string(nil), p.CompletedTasks...)
		pc.Achievements = append([]string(nil), p.Achievements...)
		cp.Players[i] = &pc
	}

	cp.BoardPath = append([]BoardCell(nil), r.BoardPath...)
	cp.Tasks = append([]string(nil), r.Tasks...)

	if r.TaskSet != nil {
		ts := *r.TaskSet
		ts.Tasks = append([]string(nil), r.TaskSet.Tasks...)
		cp.TaskSet = &ts
	}

	if r.GameState != nil {
		gs := *r.GameState
		gs.PlayerPositions = make(map[string]int, len(r.GameState.PlayerPositions))
		for id, pos := range r.GameState.PlayerPositions {
			gs.PlayerPositions[id] = pos
		}
		if r.GameState.LastDiceRoll != nil {
			roll := *r.GameState.LastDiceRoll
			gs.LastDiceRoll = &roll
		}
		if r.GameState.Winner != nil {
			w := *r.GameState.Winner
			gs.Winner = &w
		}
		if r.GameState.CurrentTask != nil {
			ta := *r.GameState.CurrentTask
			ta.Executors = make([]*ExecutorTask, len(r.GameState.CurrentTask.Executors))
			for i, et := range r.GameState.CurrentTask.Executors {
				ec := *et
				if et.Result != nil {
					res := *et.Result
					ec.Result = &res
				}
				ta.Executors[i] = &ec
			}
			gs.CurrentTask = &ta
		}
		cp.GameState = &gs
	}

	return &cp
}
