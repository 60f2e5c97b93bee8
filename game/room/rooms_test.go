package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomRegistryCreateAndGet(t *testing.T) {
	reg := NewRoomRegistry()

	r := reg.Create("den", "host-1", GameTypeBoard, 4)
	require.NotEmpty(t, r.ID)
	assert.Equal(t, StatusWaiting, r.GameStatus)
	assert.Equal(t, "host-1", r.HostID)

	got, err := reg.Get(r.ID)
	require.NoError(t, err)
	assert.Same(t, r, got)

	_, err = reg.Get("missing")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestAddPlayerToRoomCapacity(t *testing.T) {
	reg := NewRoomRegistry()
	r := reg.Create("den", "host-1", GameTypeBoard, 2)

	_, err := reg.AddPlayerToRoom(r.ID, &Player{ID: "p1"})
	require.NoError(t, err)
	_, err = reg.AddPlayerToRoom(r.ID, &Player{ID: "p2"})
	require.NoError(t, err)

	// The rejected join must not mutate the room.
	_, err = reg.AddPlayerToRoom(r.ID, &Player{ID: "p3"})
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Len(t, r.Players, 2)
	assert.True(t, r.IsFull())

	// Re-adding a member is a reconnect, never a capacity failure.
	got, err := reg.AddPlayerToRoom(r.ID, &Player{ID: "p2", IsConnected: true})
	require.NoError(t, err)
	assert.Len(t, got.Players, 2)
	assert.True(t, got.FindPlayer("p2").IsConnected)
}

func TestRemovePlayerFromRoom(t *testing.T) {
	reg := NewRoomRegistry()
	r := reg.Create("den", "host-1", GameTypeBoard, 4)

	p := &Player{ID: "p1"}
	_, err := reg.AddPlayerToRoom(r.ID, p)
	require.NoError(t, err)
	assert.Equal(t, r.ID, p.RoomID)

	got, err := reg.RemovePlayerFromRoom(r.ID, "p1")
	require.NoError(t, err)
	assert.Empty(t, got.Players)
	assert.Empty(t, p.RoomID)

	// An emptied room stays in the registry for the orchestrator to
	// dispose of.
	_, err = reg.Get(r.ID)
	assert.NoError(t, err)

	// Removing a non-member is a no-op.
	_, err = reg.RemovePlayerFromRoom(r.ID, "ghost")
	assert.NoError(t, err)
}

func TestRoomSnapshotIsDeep(t *testing.T) {
	reg := NewRoomRegistry()
	r := reg.Create("den", "host-1", GameTypeBoard, 4)
	_, err := reg.AddPlayerToRoom(r.ID, &Player{ID: "p1", Position: 3})
	require.NoError(t, err)
	r.GameState = &GameState{
		PlayerPositions: map[string]int{"p1": 3},
		CurrentTask: &TaskAssignment{
			Trigger:   TriggerStar,
			Executors: []*ExecutorTask{{Executor: PlayerSnapshot{ID: "p1"}}},
		},
	}

	snap := r.Snapshot()
	snap.Players[0].Position = 99
	snap.GameState.PlayerPositions["p1"] = 99
	snap.GameState.CurrentTask.Executors[0].Completed = true

	assert.Equal(t, 3, r.Players[0].Position)
	assert.Equal(t, 3, r.GameState.PlayerPositions["p1"])
	assert.False(t, r.GameState.CurrentTask.Executors[0].Completed)
}
