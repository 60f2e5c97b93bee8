package discovery

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ad(roomID string, ts int64) RoomBroadcast {
	return RoomBroadcast{
		RoomID:    roomID,
		RoomName:  "room " + roomID,
		HostIP:    "192.168.1.10",
		TCPPort:   5000,
		GameType:  "board",
		Timestamp: ts,
	}
}

func TestListenerUpsertFiresFoundOnce(t *testing.T) {
	l := NewListener(zerolog.Nop(), 0)

	var found []string
	l.OnFound(func(info RoomBroadcast) { found = append(found, info.RoomID) })

	now := time.Now()
	l.upsert(ad("a", 100), now)
	l.upsert(ad("a", 101), now.Add(time.Second))
	l.upsert(ad("b", 100), now)

	assert.Equal(t, []string{"a", "b"}, found, "refreshes never re-fire found")
	assert.Len(t, l.Rooms(), 2)
}

func TestListenerKeepsNewestPayload(t *testing.T) {
	l := NewListener(zerolog.Nop(), 0)
	now := time.Now()

	fresh := ad("a", 200)
	fresh.CurrentPlayers = 3
	l.upsert(fresh, now)

	// A reordered older datagram must not roll the payload back.
	stale := ad("a", 100)
	stale.CurrentPlayers = 1
	l.upsert(stale, now.Add(time.Second))

	rooms := l.Rooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, 3, rooms[0].CurrentPlayers)
	assert.Equal(t, int64(200), rooms[0].Timestamp)
}

func TestListenerSweepExpiresStaleEntries(t *testing.T) {
	l := NewListener(zerolog.Nop(), 0)

	var lost []string
	l.OnLost(func(info RoomBroadcast) { lost = append(lost, info.RoomID) })

	now := time.Now()
	l.upsert(ad("old", 100), now)
	l.upsert(ad("fresh", 100), now.Add(8*time.Second))

	// Within the window nothing expires.
	l.sweep(now.Add(StalenessWindow))
	assert.Len(t, l.Rooms(), 2)
	assert.Empty(t, lost)

	// Past the window the unrefreshed entry goes, the refreshed one stays.
	l.sweep(now.Add(StalenessWindow + time.Second))
	rooms := l.Rooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, "fresh", rooms[0].RoomID)
	assert.Equal(t, []string{"old"}, lost)
}

func TestListenerRefreshPostponesExpiry(t *testing.T) {
	l := NewListener(zerolog.Nop(), 0)

	var lost int
	l.OnLost(func(RoomBroadcast) { lost++ })

	now := time.Now()
	l.upsert(ad("a", 100), now)
	l.upsert(ad("a", 101), now.Add(9*time.Second))

	l.sweep(now.Add(StalenessWindow + time.Second))
	assert.Len(t, l.Rooms(), 1)
	assert.Zero(t, lost)
}

func TestListenerRoomsSortedNewestFirst(t *testing.T) {
	l := NewListener(zerolog.Nop(), 0)
	now := time.Now()

	l.upsert(ad("a", 100), now)
	l.upsert(ad("b", 300), now)
	l.upsert(ad("c", 200), now)

	rooms := l.Rooms()
	require.Len(t, rooms, 3)
	assert.Equal(t, "b", rooms[0].RoomID)
	assert.Equal(t, "c", rooms[1].RoomID)
	assert.Equal(t, "a", rooms[2].RoomID)
}

func TestAdvertiserUpdateMutatesPayload(t *testing.T) {
	a := NewAdvertiser(zerolog.Nop(), "127.0.0.1:0")
	a.info = ad("a", 0)

	a.Update(func(b *RoomBroadcast) { b.CurrentPlayers = 4 })
	assert.Equal(t, 4, a.info.CurrentPlayers)
	assert.Equal(t, "a", a.info.RoomID)
}

func TestLocalIPReturnsSomething(t *testing.T) {
	ip := LocalIP()
	assert.NotEmpty(t, ip)
}
