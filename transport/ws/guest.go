package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var (
	ErrNotConnected = errors.New("not connected to a host")
	ErrDisconnected = errors.New("connection to host closed")
)

// Client is the guest side of the session transport: a single connection
// to the host over which requests travel with correlated responses and
// host broadcasts arrive unsolicited.
//
// Every Request resolves with exactly one response or a context error;
// replies are never silently dropped.
type Client struct {
	log    zerolog.Logger
	selfID string

	conn    *websocket.Conn
	writeMu sync.Mutex

	mu       sync.Mutex
	pending  map[string]chan Envelope
	handlers map[string][]func(json.RawMessage)
	done     chan struct{}
	closing  sync.Once
}

// NewClient creates a disconnected guest transport.
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		log:      log.With().Str("component", "ws-guest").Logger(),
		pending:  make(map[string]chan Envelope),
		handlers: make(map[string][]func(json.RawMessage)),
	}
}

// Connect establishes the outbound connection and starts the read loop.
// It returns once the connection is confirmed open, or with the dial
// error (which includes ctx expiry) on failure.
func (c *Client) Connect(ctx context.Context, host string, port int, selfID string) error {
	u := url.URL{
		Scheme: "ws",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/ws",
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect to host %s: %w", u.Host, err)
	}

	c.mu.Lock()
	c.selfID = selfID
	c.conn = conn
	c.done = make(chan struct{})
	c.closing = sync.Once{}
	c.mu.Unlock()

	go c.readLoop(conn)

	c.log.Info().Str("host", u.Host).Msg("connected to host")
	return nil
}

// On subscribes to host-broadcast events. Handlers run on the read loop,
// so per-connection ordering is preserved.
func (c *Client) On(event string, fn func(data json.RawMessage)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], fn)
}

// Off removes every handler subscribed to an event.
func (c *Client) Off(event string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handlers, event)
}

// Request sends an event and waits for the correlated response. The
// caller bounds the wait through ctx; on expiry the pending slot is
// released and a ctx error returned.
func (c *Client) Request(ctx context.Context, event string, data any) (json.RawMessage, error) {
	raw, err := marshalData(data)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	conn := c.conn
	done := c.done
	if conn == nil {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}
	requestID := uuid.NewString()
	ch := make(chan Envelope, 1)
	c.pending[requestID] = ch
	c.mu.Unlock()

	env := Envelope{
		Type:      TypeRequest,
		Event:     event,
		RequestID: requestID,
		PlayerID:  c.selfID,
		Data:      raw,
	}

	if err := c.write(conn, env); err != nil {
		c.forget(requestID)
		return nil, err
	}

	select {
	case resp := <-ch:
		if resp.Error != "" {
			return nil, &RemoteError{Event: event, Code: resp.Error}
		}
		return resp.Data, nil
	case <-done:
		c.forget(requestID)
		return nil, ErrDisconnected
	case <-ctx.Done():
		c.forget(requestID)
		return nil, fmt.Errorf("%s timed out: %w", event, ctx.Err())
	}
}

// Disconnect closes the connection and releases pending requests.
func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

func (c *Client) write(conn *websocket.Conn, env Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(env); err != nil {
		return fmt.Errorf("failed to send %s: %w", env.Event, err)
	}
	return nil
}

func (c *Client) forget(requestID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, requestID)
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer c.teardown(conn)

	conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug().Err(err).Msg("host connection read failed")
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.log.Warn().Err(err).Msg("dropping malformed message from host")
			continue
		}

		switch env.Type {
		case TypeResponse:
			c.mu.Lock()
			ch, ok := c.pending[env.RequestID]
			if ok {
				delete(c.pending, env.RequestID)
			}
			c.mu.Unlock()
			if ok {
				ch <- env
			}

		case TypeBroadcast:
			c.mu.Lock()
			handlers := append([]func(json.RawMessage){}, c.handlers[env.Event]...)
			c.mu.Unlock()
			for _, fn := range handlers {
				fn(env.Data)
			}
		}
	}
}

// teardown releases the connection and wakes every waiter. Requests still
// pending resolve with ErrDisconnected through the done channel.
func (c *Client) teardown(conn *websocket.Conn) {
	conn.Close()

	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	done := c.done
	closing := &c.closing
	c.mu.Unlock()

	closing.Do(func() {
		if done != nil {
			close(done)
		}
	})
}
