// Command simulate runs headless board games and prints aggregate
// statistics: game length, task trigger mix, and win distribution. It is
// a balancing aid for task-set and board authors; nothing here touches
// the network.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/partyline/lanboard/game/content"
	"github.com/partyline/lanboard/game/engine"
	"github.com/partyline/lanboard/game/room"
)

var (
	games      = flag.Int("games", 200, "number of games to simulate")
	players    = flag.Int("players", 3, "players per game")
	boardSize  = flag.Int("board", engine.DefaultBoardSize, "board path length")
	taskSetDir = flag.String("taskset-dir", "", "directory with task set JSON files")
	taskSetID  = flag.String("taskset", "", "task set id (default embedded set)")
)

func main() {
	flag.Parse()

	provider, err := content.NewFileProvider(*taskSetDir, zerolog.Nop())
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	taskSet := provider.Default()
	if *taskSetID != "" {
		taskSet, err = provider.TaskSet(*taskSetID)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	}

	stats := runSimulations(*games, *players, *boardSize, taskSet)
	stats.print(os.Stdout)
}

// simStats aggregates outcomes across simulated games.
type simStats struct {
	games    int
	turns    []int
	triggers map[room.TaskTrigger]int
	winsBy   map[string]int
}

// runSimulations plays n full games to completion with players that
// always roll, move, and succeed at half their tasks.
func runSimulations(n, playerCount, boardSize int, taskSet *room.TaskSet) *simStats {
	stats := &simStats{
		games:    n,
		triggers: make(map[room.TaskTrigger]int),
		winsBy:   make(map[string]int),
	}

	for i := 0; i < n; i++ {
		turns, winner, triggers := playOne(playerCount, boardSize, taskSet)
		stats.turns = append(stats.turns, turns)
		stats.winsBy[winner]++
		for trig, count := range triggers {
			stats.triggers[trig] += count
		}
	}
	return stats
}

// countingSink records trigger counts from engine broadcasts. It is the
// whole audience of a simulated game.
type countingSink struct {
	triggers map[room.TaskTrigger]int
	winner   string
}

func (s *countingSink) Broadcast(event string, data any) {
	switch event {
	case room.EventGameTask:
		if ann, ok := data.(engine.TaskAnnouncement); ok && ann.Task != nil {
			s.triggers[ann.Task.Trigger]++
		}
	case room.EventGameVictory:
		if v, ok := data.(engine.Victory); ok {
			s.winner = v.Winner.ID
		}
	}
}

type nopStore struct{}

func (nopStore) Save(*room.Room) {}

func playOne(playerCount, boardSize int, taskSet *room.TaskSet) (turns int, winner string, triggers map[room.TaskTrigger]int) {
	r := &room.Room{
		ID:         "sim",
		Name:       "sim",
		MaxPlayers: playerCount,
		GameType:   room.GameTypeBoard,
		TaskSet:    taskSet,
	}
	for i := 0; i < playerCount; i++ {
		r.Players = append(r.Players, &room.Player{
			ID:          fmt.Sprintf("p%d", i+1),
			Name:        fmt.Sprintf("p%d", i+1),
			IsHost:      i == 0,
			IsConnected: true,
		})
	}

	sink := &countingSink{triggers: make(map[room.TaskTrigger]int)}
	g := engine.NewBoardGame(r, nopStore{}, sink, zerolog.Nop())
	if boardSize != engine.DefaultBoardSize {
		r.BoardPath = engine.GenerateBoardPath(boardSize, rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	if err := g.OnStart(); err != nil {
		panic(err)
	}

	// Drive turns until someone wins. Executors alternate between
	// succeeding and failing so both reward and penalty paths run.
	succeed := true
	for turns = 0; r.GameStatus == room.StatusPlaying; turns++ {
		actor := r.CurrentTurnPlayerID

		if r.GameState.HasPendingTask {
			resolvePendingTask(g, r, succeed)
			succeed = !succeed
			continue
		}

		if _, err := g.OnPlayerAction(actor, engine.Action{Type: engine.ActionRollDice}); err != nil {
			panic(err)
		}
		if r.GameStatus != room.StatusPlaying {
			break
		}
		if _, err := g.OnPlayerAction(actor, engine.Action{Type: engine.ActionMoveComplete}); err != nil {
			panic(err)
		}
	}

	return turns, sink.winner, sink.triggers
}

func resolvePendingTask(g *engine.BoardGame, r *room.Room, succeed bool) {
	task := r.GameState.CurrentTask
	for _, et := range task.Executors {
		if et.Completed {
			continue
		}
		_, err := g.OnPlayerAction(et.Executor.ID, engine.Action{
			Type:      engine.ActionCompleteTask,
			Completed: succeed,
		})
		if err != nil {
			panic(err)
		}
		if r.GameStatus != room.StatusPlaying || !r.GameState.HasPendingTask {
			return
		}
	}
}

func (s *simStats) print(w *os.File) {
	if len(s.turns) == 0 {
		fmt.Fprintln(w, "no games simulated")
		return
	}

	sorted := append([]int(nil), s.turns...)
	sort.Ints(sorted)
	total := 0
	for _, t := range sorted {
		total += t
	}

	fmt.Fprintf(w, "games:        %d\n", s.games)
	fmt.Fprintf(w, "turns avg:    %.1f\n", float64(total)/float64(len(sorted)))
	fmt.Fprintf(w, "turns median: %d\n", sorted[len(sorted)/2])
	fmt.Fprintf(w, "turns p95:    %d\n", sorted[len(sorted)*95/100])

	fmt.Fprintln(w, "task triggers:")
	for _, trig := range []room.TaskTrigger{room.TriggerTrap, room.TriggerStar, room.TriggerCollision} {
		fmt.Fprintf(w, "  %-10s %d\n", trig, s.triggers[trig])
	}

	fmt.Fprintln(w, "wins:")
	ids := make([]string, 0, len(s.winsBy))
	for id := range s.winsBy {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(w, "  %-10s %d\n", id, s.winsBy[id])
	}
}
