package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partyline/lanboard/game/room"
)

func testTaskSet() *room.TaskSet {
	return &room.TaskSet{
		ID:    "test",
		Title: "Test",
		Tasks: []string{"a", "b", "c", "d"},
	}
}

func TestPlayOneTerminatesWithWinner(t *testing.T) {
	turns, winner, _ := playOne(3, 30, testTaskSet())
	assert.Positive(t, turns)
	assert.NotEmpty(t, winner)
}

func TestRunSimulationsAggregates(t *testing.T) {
	stats := runSimulations(10, 2, 30, testTaskSet())
	require.Len(t, stats.turns, 10)

	wins := 0
	for _, n := range stats.winsBy {
		wins += n
	}
	assert.Equal(t, 10, wins, "every game produces exactly one winner")
}
