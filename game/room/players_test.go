package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerRegistryUpsertPreservesProgress(t *testing.T) {
	reg := NewPlayerRegistry()

	p := reg.Upsert(&Player{ID: "p1", Name: "ada", IsConnected: true})
	p.Score = 3
	p.Position = 12
	p.CompletedTasks = []string{"task a"}

	// A reconnect carries identity fields only; progress survives.
	back := reg.Upsert(&Player{ID: "p1", Name: "ada the second", IsConnected: true})
	assert.Same(t, p, back)
	assert.Equal(t, "ada the second", back.Name)
	assert.Equal(t, 3, back.Score)
	assert.Equal(t, 12, back.Position)
	assert.Equal(t, []string{"task a"}, back.CompletedTasks)

	// Empty identity fields do not clobber existing values.
	back = reg.Upsert(&Player{ID: "p1"})
	assert.Equal(t, "ada the second", back.Name)
}

func TestPlayerRegistryConnectionFlag(t *testing.T) {
	reg := NewPlayerRegistry()
	reg.Upsert(&Player{ID: "p1", IsConnected: true})

	p := reg.SetConnected("p1", false)
	require.NotNil(t, p)
	assert.False(t, p.IsConnected)

	assert.Nil(t, reg.SetConnected("ghost", false))

	// Disconnection never deletes the record.
	got, err := reg.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
}

func TestPlayerRegistryRoomAffiliation(t *testing.T) {
	reg := NewPlayerRegistry()
	reg.Upsert(&Player{ID: "p1"})

	reg.SetRoom("p1", "room-1")
	p, err := reg.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, "room-1", p.RoomID)

	reg.ClearRoom("p1")
	assert.Empty(t, p.RoomID)

	_, err = reg.Get("ghost")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}
