package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHost(t *testing.T) *Host {
	t.Helper()
	h := NewHost(zerolog.Nop())
	_, err := h.Start(0)
	require.NoError(t, err)
	t.Cleanup(h.Stop)
	return h
}

func connect(t *testing.T, h *Host, selfID string) *Client {
	t.Helper()
	c := NewClient(zerolog.Nop())
	require.NoError(t, c.Connect(context.Background(), "127.0.0.1", h.Port(), selfID))
	t.Cleanup(c.Disconnect)
	return c
}

func TestRequestResponseRoundTrip(t *testing.T) {
	h := startHost(t)
	h.Handle("echo", func(req *Request) (any, error) {
		var payload map[string]string
		require.NoError(t, json.Unmarshal(req.Data, &payload))
		payload["seenPlayer"] = req.PlayerID
		return payload, nil
	})

	c := connect(t, h, "p1")

	raw, err := c.Request(context.Background(), "echo", map[string]string{"msg": "hello"})
	require.NoError(t, err)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(raw, &resp))
	assert.Equal(t, "hello", resp["msg"])
	assert.Equal(t, "p1", resp["seenPlayer"])
}

func TestRequestErrorCarriesCode(t *testing.T) {
	h := startHost(t)
	h.Handle("fail", func(*Request) (any, error) {
		return nil, errors.New("room_full")
	})

	c := connect(t, h, "p1")

	_, err := c.Request(context.Background(), "fail", nil)
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "room_full", remote.Code)
	assert.Equal(t, "fail", remote.Event)
}

func TestUnknownEventRejected(t *testing.T) {
	h := startHost(t)
	c := connect(t, h, "p1")

	_, err := c.Request(context.Background(), "nope", nil)
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "unknown_event", remote.Code)
}

func TestRequestTimeout(t *testing.T) {
	h := startHost(t)
	release := make(chan struct{})
	h.Handle("slow", func(*Request) (any, error) {
		<-release
		return nil, nil
	})
	defer close(release)

	c := connect(t, h, "p1")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.Request(ctx, "slow", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestBroadcastReachesAllGuests(t *testing.T) {
	h := startHost(t)
	h.Handle("hello", func(*Request) (any, error) { return nil, nil })

	received := make(chan string, 4)
	c1 := connect(t, h, "p1")
	c1.On("news", func(data json.RawMessage) { received <- "p1" })
	c2 := connect(t, h, "p2")
	c2.On("news", func(data json.RawMessage) { received <- "p2" })

	// A first request binds each connection to its player id.
	_, err := c1.Request(context.Background(), "hello", nil)
	require.NoError(t, err)
	_, err = c2.Request(context.Background(), "hello", nil)
	require.NoError(t, err)

	h.Broadcast("news", map[string]string{"msg": "started"})

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case who := <-received:
			got[who] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("broadcast not received, got %v", got)
		}
	}
	assert.True(t, got["p1"] && got["p2"])
}

func TestBroadcastExceptSkipsSender(t *testing.T) {
	h := startHost(t)
	h.Handle("hello", func(*Request) (any, error) { return nil, nil })

	received := make(chan string, 4)
	c1 := connect(t, h, "p1")
	c1.On("news", func(json.RawMessage) { received <- "p1" })
	c2 := connect(t, h, "p2")
	c2.On("news", func(json.RawMessage) { received <- "p2" })

	_, err := c1.Request(context.Background(), "hello", nil)
	require.NoError(t, err)
	_, err = c2.Request(context.Background(), "hello", nil)
	require.NoError(t, err)

	h.BroadcastExcept("p1", "news", nil)

	select {
	case who := <-received:
		assert.Equal(t, "p2", who)
	case <-time.After(2 * time.Second):
		t.Fatal("p2 never received the broadcast")
	}
	select {
	case who := <-received:
		t.Fatalf("unexpected delivery to %s", who)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSendToClient(t *testing.T) {
	h := startHost(t)
	h.Handle("hello", func(*Request) (any, error) { return nil, nil })

	received := make(chan json.RawMessage, 1)
	c := connect(t, h, "p1")
	c.On("whisper", func(data json.RawMessage) { received <- data })

	_, err := c.Request(context.Background(), "hello", nil)
	require.NoError(t, err)

	assert.True(t, h.SendToClient("p1", "whisper", map[string]int{"n": 7}))
	select {
	case data := <-received:
		var payload map[string]int
		require.NoError(t, json.Unmarshal(data, &payload))
		assert.Equal(t, 7, payload["n"])
	case <-time.After(2 * time.Second):
		t.Fatal("directed message never arrived")
	}

	assert.False(t, h.SendToClient("ghost", "whisper", nil))
}

func TestConnectionCallbacks(t *testing.T) {
	h := startHost(t)
	h.Handle("hello", func(*Request) (any, error) { return nil, nil })

	var connects atomic.Int32
	disconnected := make(chan string, 1)
	h.OnConnect(func(clientID string) { connects.Add(1) })
	h.OnDisconnect(func(clientID, playerID string) { disconnected <- playerID })

	c := connect(t, h, "p1")
	_, err := c.Request(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), connects.Load())

	c.Disconnect()
	select {
	case playerID := <-disconnected:
		assert.Equal(t, "p1", playerID)
	case <-time.After(2 * time.Second):
		t.Fatal("disconnect callback never fired")
	}
}

func TestHostStopReleasesPendingRequests(t *testing.T) {
	h := NewHost(zerolog.Nop())
	_, err := h.Start(0)
	require.NoError(t, err)

	release := make(chan struct{})
	defer close(release)
	h.Handle("slow", func(*Request) (any, error) {
		<-release
		return nil, nil
	})

	c := connect(t, h, "p1")

	errs := make(chan error, 1)
	go func() {
		_, err := c.Request(context.Background(), "slow", nil)
		errs <- err
	}()

	time.Sleep(50 * time.Millisecond)
	h.Stop()

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ErrDisconnected)
	case <-time.After(2 * time.Second):
		t.Fatal("pending request never resolved after host stop")
	}
}

func TestRequestWithoutConnection(t *testing.T) {
	c := NewClient(zerolog.Nop())
	_, err := c.Request(context.Background(), "echo", nil)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestHealthEndpoint(t *testing.T) {
	h := startHost(t)

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/healthz", h.Port()))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}
