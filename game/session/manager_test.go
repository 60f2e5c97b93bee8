package session

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partyline/lanboard/game/room"
)

type nopStore struct{}

func (nopStore) Save(*room.Room) {}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(string, any) {}

func testRoom(id string) *room.Room {
	return &room.Room{
		ID:         id,
		Name:       "test",
		MaxPlayers: 4,
		GameType:   room.GameTypeBoard,
		Players: []*room.Player{
			{ID: "p1", IsHost: true, IsConnected: true},
			{ID: "p2", IsConnected: true},
		},
	}
}

func TestManagerCreateAndGet(t *testing.T) {
	m := NewManager(zerolog.Nop())
	r := testRoom("room-1")

	inst, err := m.Create(r, nopStore{}, nopBroadcaster{})
	require.NoError(t, err)
	require.NotNil(t, inst)
	assert.Equal(t, 1, m.Count())

	got, err := m.Get("room-1")
	require.NoError(t, err)
	assert.Same(t, inst, got)

	_, err = m.Create(r, nopStore{}, nopBroadcaster{})
	assert.ErrorIs(t, err, ErrInstanceAlreadyExists)
}

func TestManagerGetMissing(t *testing.T) {
	m := NewManager(zerolog.Nop())
	_, err := m.Get("nope")
	assert.ErrorIs(t, err, ErrInstanceNotFound)
}

func TestManagerUnknownGameType(t *testing.T) {
	m := NewManager(zerolog.Nop())
	r := testRoom("room-1")
	r.GameType = "chess"

	_, err := m.Create(r, nopStore{}, nopBroadcaster{})
	assert.ErrorIs(t, err, ErrUnknownGameType)
	assert.Equal(t, 0, m.Count())
}

func TestManagerGetOrRecreate(t *testing.T) {
	m := NewManager(zerolog.Nop())
	r := testRoom("room-1")

	inst, err := m.Create(r, nopStore{}, nopBroadcaster{})
	require.NoError(t, err)
	require.NoError(t, inst.OnStart())

	// Existing instance is returned as-is.
	same, err := m.GetOrRecreate(r, nopStore{}, nopBroadcaster{})
	require.NoError(t, err)
	assert.Same(t, inst, same)

	// After a simulated restart the instance is rebuilt and resumed,
	// keeping positions.
	r.GameState.PlayerPositions["p1"] = 7
	m.Remove("room-1")
	rebuilt, err := m.GetOrRecreate(r, nopStore{}, nopBroadcaster{})
	require.NoError(t, err)
	assert.NotSame(t, inst, rebuilt)
	assert.Equal(t, 7, r.GameState.PlayerPositions["p1"])
	assert.Equal(t, room.StatusPlaying, r.GameStatus)
}

func TestManagerRecreateWithoutStateFails(t *testing.T) {
	m := NewManager(zerolog.Nop())
	r := testRoom("room-1") // never started, no game state

	_, err := m.GetOrRecreate(r, nopStore{}, nopBroadcaster{})
	assert.Error(t, err)
	assert.Equal(t, 0, m.Count())
}

func TestManagerRemove(t *testing.T) {
	m := NewManager(zerolog.Nop())
	r := testRoom("room-1")

	_, err := m.Create(r, nopStore{}, nopBroadcaster{})
	require.NoError(t, err)

	m.Remove("room-1")
	assert.Equal(t, 0, m.Count())
	_, err = m.Get("room-1")
	assert.ErrorIs(t, err, ErrInstanceNotFound)

	m.Remove("room-1") // idempotent
}
