package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/partyline/lanboard/game/room"
)

const (
	diceSides = 6

	// Task outcome movement deltas are drawn uniformly from [3, 6].
	taskDeltaMin = 3
	taskDeltaMax = 6

	// VictoryTaskCount is how many victory tasks the winner receives.
	VictoryTaskCount = 3

	// fallbackTask covers rooms started without task content.
	fallbackTask = "Invent a dare and perform it"

	achievementWinner = "first_to_finish"
)

// BoardGame is the concrete turn-based board game: dice roll, movement
// with bounce-back, special-cell and collision tasks with an
// all-executors completion barrier, win detection, and turn rotation.
//
// The caller must serialize all method calls for a given room.
type BoardGame struct {
	room  *room.Room
	store RoomStore
	b     Broadcaster
	rng   *rand.Rand
	log   zerolog.Logger
}

// NewBoardGame binds a board game engine to a room, a store, and the
// broadcaster through which every client-visible transition is announced.
func NewBoardGame(r *room.Room, store RoomStore, b Broadcaster, log zerolog.Logger) *BoardGame {
	return &BoardGame{
		room:  r,
		store: store,
		b:     b,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		log:   log.With().Str("component", "boardgame").Str("room", r.ID).Logger(),
	}
}

// OnStart transitions the room to playing, generates the board if absent,
// zeroes positions, shuffles the task pool, and announces the first turn.
func (g *BoardGame) OnStart() error {
	r := g.room
	if len(r.Players) == 0 {
		return fmt.Errorf("cannot start a game with no players")
	}

	r.GameStatus = room.StatusPlaying
	if len(r.BoardPath) == 0 {
		r.BoardPath = GenerateBoardPath(DefaultBoardSize, g.rng)
	}

	positions := make(map[string]int, len(r.Players))
	for _, p := range r.Players {
		positions[p.ID] = 0
	}
	r.GameState = &room.GameState{
		PlayerPositions: positions,
		GamePhase:       room.PhaseRolling,
		BoardSize:       len(r.BoardPath),
	}
	r.CurrentTurnPlayerID = r.Players[0].ID

	if r.TaskSet != nil {
		r.Tasks = append([]string(nil), r.TaskSet.Tasks...)
		g.rng.Shuffle(len(r.Tasks), func(i, j int) {
			r.Tasks[i], r.Tasks[j] = r.Tasks[j], r.Tasks[i]
		})
	}

	g.updateRoomAndNotify()
	g.b.Broadcast(room.EventGameNext, NextTurn{PlayerID: r.CurrentTurnPlayerID})

	g.log.Info().Int("players", len(r.Players)).Int("board", len(r.BoardPath)).Msg("game started")
	return nil
}

// OnResume re-derives transient state from the persisted room without
// resetting scores or positions. The board is regenerated only if absent.
func (g *BoardGame) OnResume() error {
	r := g.room
	if r.GameState == nil {
		return fmt.Errorf("room %s has no game state to resume", r.ID)
	}

	if len(r.BoardPath) == 0 {
		r.BoardPath = GenerateBoardPath(DefaultBoardSize, g.rng)
	}
	gs := r.GameState
	gs.BoardSize = len(r.BoardPath)

	for _, p := range r.Players {
		if _, ok := gs.PlayerPositions[p.ID]; !ok {
			gs.PlayerPositions[p.ID] = 0
		}
	}
	if r.FindPlayer(r.CurrentTurnPlayerID) == nil {
		r.CurrentTurnPlayerID = r.Players[0].ID
	}
	r.GameStatus = room.StatusPlaying

	g.updateRoomAndNotify()
	g.log.Info().Msg("game resumed")
	return nil
}

// OnPlayerAction dispatches one action. Rejections travel back to the
// requesting player only; the room state stays untouched on any error.
func (g *BoardGame) OnPlayerAction(playerID string, action Action) (any, error) {
	if g.room.GameStatus != room.StatusPlaying {
		return nil, ErrRoomNotPlaying
	}

	switch action.Type {
	case ActionRollDice:
		return g.rollDice(playerID)
	case ActionMoveComplete:
		return g.moveComplete(playerID)
	case ActionCompleteTask:
		return g.completeTask(playerID, action.Completed)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action.Type)
	}
}

// OnEnd transitions the room to ended and sends the final room:update.
func (g *BoardGame) OnEnd() error {
	g.room.GameStatus = room.StatusEnded
	if g.room.GameState != nil {
		g.room.GameState.GamePhase = room.PhaseEnded
	}
	g.updateRoomAndNotify()
	g.log.Info().Msg("game ended")
	return nil
}

// FailPendingTask force-fails the player's uncompleted executor instance.
// A no-op when no task is pending or the player is not an open executor.
func (g *BoardGame) FailPendingTask(playerID string) error {
	gs := g.room.GameState
	if gs == nil || !gs.HasPendingTask || gs.CurrentTask == nil {
		return nil
	}
	et := gs.CurrentTask.Executor(playerID)
	if et == nil || et.Completed {
		return nil
	}

	g.log.Info().Str("player", playerID).Msg("auto-failing pending task for disconnected executor")
	_, err := g.completeTask(playerID, false)
	return err
}

// OnPlayerLeave releases whatever the departing player holds so the room
// cannot stall on them: a pending executor task is failed and the turn
// rotates away if it was theirs.
func (g *BoardGame) OnPlayerLeave(playerID string) error {
	if g.room.GameStatus != room.StatusPlaying {
		return nil
	}

	if err := g.FailPendingTask(playerID); err != nil {
		return err
	}

	gs := g.room.GameState
	if g.room.GameStatus == room.StatusPlaying && g.room.CurrentTurnPlayerID == playerID {
		if gs.LastDiceRoll != nil && gs.LastDiceRoll.PlayerID == playerID {
			gs.LastDiceRoll = nil
		}
		gs.GamePhase = room.PhaseRolling
		next := g.advanceTurn()
		g.updateRoomAndNotify()
		g.b.Broadcast(room.EventGameNext, NextTurn{PlayerID: next, TurnCount: gs.TurnCount})
	}
	return nil
}

// rollDice stores the provisional roll and broadcasts it. The position is
// not touched yet: the client reports move_complete once its animation
// finishes, keeping authoritative state decoupled from presentation.
func (g *BoardGame) rollDice(playerID string) (any, error) {
	gs := g.room.GameState
	if playerID != g.room.CurrentTurnPlayerID {
		return nil, ErrNotYourTurn
	}
	if gs.HasPendingTask {
		return nil, ErrTaskPending
	}

	value := g.rng.Intn(diceSides) + 1
	gs.LastDiceRoll = &room.DiceRoll{PlayerID: playerID, Value: value}
	gs.GamePhase = room.PhaseMoving

	g.syncGameState()
	g.store.Save(g.room)

	result := RollResult{PlayerID: playerID, Value: value}
	g.b.Broadcast(room.EventGameDice, result)
	return result, nil
}

// moveComplete applies the stored roll to the player's position with
// bounce-back at the finish, then evaluates win before inspecting the
// landed cell for task triggers.
func (g *BoardGame) moveComplete(playerID string) (any, error) {
	gs := g.room.GameState
	if playerID != g.room.CurrentTurnPlayerID {
		return nil, ErrNotYourTurn
	}
	roll := gs.LastDiceRoll
	if roll == nil || roll.PlayerID != playerID {
		return nil, ErrNoPendingRoll
	}

	finish := gs.BoardSize - 1
	current := gs.PlayerPositions[playerID]
	target := BouncePosition(current, roll.Value, finish)

	gs.PlayerPositions[playerID] = target
	gs.LastDiceRoll = nil
	gs.GamePhase = room.PhaseRolling
	g.updateRoomAndNotify()

	result := MoveResult{
		PlayerID: playerID,
		Position: target,
		Bounced:  current+roll.Value > finish,
	}

	// Win ends the game immediately, bypassing any task the landed cell
	// would have triggered.
	if target >= finish {
		result.Winner = true
		g.declareVictory(playerID)
		return result, nil
	}

	trigger := g.detectTrigger(playerID, target)
	if trigger == "" {
		next := g.advanceTurn()
		g.updateRoomAndNotify()
		g.b.Broadcast(room.EventGameNext, NextTurn{PlayerID: next, TurnCount: gs.TurnCount})
		return result, nil
	}

	result.Trigger = trigger
	g.assignTasks(trigger, playerID, target)
	return result, nil
}

// detectTrigger inspects the landed cell. Collision with another player
// takes precedence over the cell type; the start cell never collides so a
// bounce back to the beginning cannot chain-trigger the whole room.
func (g *BoardGame) detectTrigger(playerID string, cellIdx int) room.TaskTrigger {
	cell := g.room.BoardPath[cellIdx]
	gs := g.room.GameState

	if cell.Type != room.CellStart {
		for _, p := range g.room.Players {
			if p.ID != playerID && gs.PlayerPositions[p.ID] == cellIdx {
				return room.TriggerCollision
			}
		}
	}

	switch cell.Type {
	case room.CellTrap:
		return room.TriggerTrap
	case room.CellStar:
		return room.TriggerStar
	}
	return ""
}

// assignTasks builds the composite task: a trap is executed by the
// triggering player, star and collision by every other player. Each
// executor draws one task from the shared pool.
func (g *BoardGame) assignTasks(trigger room.TaskTrigger, triggeredBy string, cellIdx int) {
	gs := g.room.GameState

	var executors []*room.Player
	if trigger == room.TriggerTrap {
		if p := g.room.FindPlayer(triggeredBy); p != nil {
			executors = append(executors, p)
		}
	} else {
		for _, p := range g.room.Players {
			if p.ID != triggeredBy {
				executors = append(executors, p)
			}
		}
	}

	assignment := &room.TaskAssignment{
		Trigger:     trigger,
		TriggeredBy: triggeredBy,
		CellID:      cellIdx,
	}
	for _, p := range executors {
		assignment.Executors = append(assignment.Executors, &room.ExecutorTask{
			Executor: p.Snapshot(),
			Task:     room.TaskContent{Title: g.drawTask()},
		})
	}

	gs.CurrentTask = assignment
	gs.HasPendingTask = true
	gs.GamePhase = room.PhaseTask
	g.updateRoomAndNotify()

	snap := g.room.Snapshot()
	g.b.Broadcast(room.EventGameTask, TaskAnnouncement{RoomID: g.room.ID, Task: snap.GameState.CurrentTask})

	g.log.Debug().Str("trigger", string(trigger)).Int("executors", len(executors)).Msg("task assigned")
}

// drawTask greedily consumes the room's remaining-task pool, falling back
// to a fresh random draw from the full set once the pool is exhausted.
func (g *BoardGame) drawTask() string {
	if len(g.room.Tasks) > 0 {
		t := g.room.Tasks[0]
		g.room.Tasks = g.room.Tasks[1:]
		return t
	}
	if g.room.TaskSet != nil && len(g.room.TaskSet.Tasks) > 0 {
		return g.room.TaskSet.Tasks[g.rng.Intn(len(g.room.TaskSet.Tasks))]
	}
	return fallbackTask
}

// completeTask resolves one executor's share of the pending task. Success
// moves the executor forward 3-6 cells, failure backward 3-6, except a
// collision failure which sends them back to the start. The barrier only
// clears and the turn only rotates once every executor has finished.
func (g *BoardGame) completeTask(playerID string, completed bool) (any, error) {
	gs := g.room.GameState
	if gs.CurrentTask == nil || !gs.HasPendingTask {
		return nil, ErrNoPendingTask
	}
	et := gs.CurrentTask.Executor(playerID)
	if et == nil {
		return nil, ErrNotAnExecutor
	}
	if et.Completed {
		// Duplicate client retry; tolerate rather than error.
		g.log.Debug().Str("player", playerID).Msg("ignoring duplicate task completion")
		return TaskCompleted{
			PlayerID:  playerID,
			Completed: et.Result != nil && et.Result.Completed,
			Position:  gs.PlayerPositions[playerID],
			AllDone:   gs.CurrentTask.AllCompleted(),
		}, nil
	}

	finish := gs.BoardSize - 1
	pos := gs.PlayerPositions[playerID]
	var delta int
	switch {
	case completed:
		// Rewards clamp at the finish instead of bouncing; only dice
		// movement reflects.
		delta = taskDeltaMin + g.rng.Intn(taskDeltaMax-taskDeltaMin+1)
		pos += delta
		if pos > finish {
			pos = finish
		}
	case gs.CurrentTask.Trigger == room.TriggerCollision:
		// Failed collision duel: back to start.
		delta = -pos
		pos = 0
	default:
		delta = -(taskDeltaMin + g.rng.Intn(taskDeltaMax-taskDeltaMin+1))
		pos += delta
		if pos < 0 {
			pos = 0
		}
	}

	gs.PlayerPositions[playerID] = pos
	if p := g.room.FindPlayer(playerID); p != nil && completed {
		p.Score++
		p.CompletedTasks = append(p.CompletedTasks, et.Task.Title)
	}
	g.updateRoomAndNotify()

	// Re-check win before marking the instance done: a reward can carry
	// the executor over the finish line.
	if pos >= finish {
		g.declareVictory(playerID)
		return TaskCompleted{PlayerID: playerID, Completed: completed, Delta: delta, Position: pos, AllDone: true}, nil
	}

	et.Completed = true
	et.Result = &room.TaskResult{Completed: completed, Timestamp: time.Now().UnixMilli()}

	result := TaskCompleted{
		PlayerID:  playerID,
		Completed: completed,
		Delta:     delta,
		Position:  pos,
		AllDone:   gs.CurrentTask.AllCompleted(),
	}
	g.store.Save(g.room)
	g.b.Broadcast(room.EventGameTaskCompleted, result)

	if gs.CurrentTask.AllCompleted() {
		gs.CurrentTask = nil
		gs.HasPendingTask = false
		gs.GamePhase = room.PhaseRolling
		g.b.Broadcast(room.EventGameAllTasksCompleted, AllTasksCompleted{RoomID: g.room.ID})

		next := g.advanceTurn()
		g.updateRoomAndNotify()
		g.b.Broadcast(room.EventGameNext, NextTurn{PlayerID: next, TurnCount: gs.TurnCount})
	}

	return result, nil
}

// declareVictory stamps the winner, hands them up to three victory tasks,
// and runs the end transition. game:victory goes out as its own event so
// clients can take over the screen without racing room:update.
func (g *BoardGame) declareVictory(winnerID string) {
	gs := g.room.GameState
	winner := g.room.FindPlayer(winnerID)
	if winner == nil {
		return
	}

	snap := winner.Snapshot()
	gs.Winner = &snap
	gs.CurrentTask = nil
	gs.HasPendingTask = false
	gs.GamePhase = room.PhaseEnded
	winner.Achievements = append(winner.Achievements, achievementWinner)

	g.updateRoomAndNotify()
	g.b.Broadcast(room.EventGameVictory, Victory{
		Winner:       snap,
		VictoryTasks: g.pickVictoryTasks(),
	})
	g.OnEnd()

	g.log.Info().Str("winner", winnerID).Msg("game won")
}

// pickVictoryTasks selects up to VictoryTaskCount distinct random tasks
// from the full task set.
func (g *BoardGame) pickVictoryTasks() []string {
	if g.room.TaskSet == nil || len(g.room.TaskSet.Tasks) == 0 {
		return nil
	}
	all := append([]string(nil), g.room.TaskSet.Tasks...)
	g.rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if len(all) > VictoryTaskCount {
		all = all[:VictoryTaskCount]
	}
	return all
}

// advanceTurn rotates to the next connected player in fixed list order,
// wrapping around. If nobody else is connected the turn stays put.
func (g *BoardGame) advanceTurn() string {
	players := g.room.Players
	n := len(players)
	if n == 0 {
		return g.room.CurrentTurnPlayerID
	}

	idx := 0
	for i, p := range players {
		if p.ID == g.room.CurrentTurnPlayerID {
			idx = i
			break
		}
	}

	for off := 1; off <= n; off++ {
		cand := players[(idx+off)%n]
		if cand.IsConnected {
			g.room.CurrentTurnPlayerID = cand.ID
			g.room.GameState.TurnCount++
			return cand.ID
		}
	}
	return g.room.CurrentTurnPlayerID
}

// syncGameState copies each player's authoritative position from the
// engine's map into the derivative Players[].Position mirror. It runs
// before every notify so broadcasts and the persisted room always agree.
func (g *BoardGame) syncGameState() {
	gs := g.room.GameState
	if gs == nil {
		return
	}
	for _, p := range g.room.Players {
		p.Position = gs.PlayerPositions[p.ID]
	}
}

// updateRoomAndNotify is the sync → persist → broadcast discipline: every
// client-visible transition is captured in the stored room before it is
// announced.
func (g *BoardGame) updateRoomAndNotify() {
	g.syncGameState()
	g.store.Save(g.room)
	g.b.Broadcast(room.EventRoomUpdate, g.room.Snapshot())
}
