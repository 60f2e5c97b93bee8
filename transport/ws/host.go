package ws

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Room snapshots with board
	// and task state fit comfortably under this.
	maxMessageSize = 64 * 1024

	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Peers are LAN devices dialing by IP; there is no origin to enforce.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// hostClient is one accepted guest connection.
type hostClient struct {
	id       string
	playerID string
	conn     *websocket.Conn
	send     chan []byte
	closed   sync.Once
}

func (c *hostClient) close() {
	c.closed.Do(func() {
		close(c.send)
	})
}

// Host accepts guest connections, dispatches their requests to registered
// handlers, and fans broadcasts out to every connected guest. Messages to
// a single guest preserve send order; no ordering holds across guests.
type Host struct {
	log zerolog.Logger

	mu       sync.RWMutex
	clients  map[string]*hostClient
	byPlayer map[string]string
	handlers map[string]HandlerFunc

	onConnect    func(clientID string)
	onDisconnect func(clientID, playerID string)

	srv     *http.Server
	port    int
	running bool
}

// NewHost creates a host transport. Wire handlers with Handle before
// calling Start.
func NewHost(log zerolog.Logger) *Host {
	return &Host{
		log:      log.With().Str("component", "ws-host").Logger(),
		clients:  make(map[string]*hostClient),
		byPlayer: make(map[string]string),
		handlers: make(map[string]HandlerFunc),
	}
}

// Handle registers the handler for an inbound request event.
func (h *Host) Handle(event string, fn HandlerFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[event] = fn
}

// Unhandle removes the handler for an event.
func (h *Host) Unhandle(event string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.handlers, event)
}

// ClearHandlers detaches every registered handler and callback.
func (h *Host) ClearHandlers() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers = make(map[string]HandlerFunc)
	h.onConnect = nil
	h.onDisconnect = nil
}

// OnConnect registers a callback fired with the new connection's client id.
func (h *Host) OnConnect(fn func(clientID string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onConnect = fn
}

// OnDisconnect registers a callback fired when a connection closes. The
// player id is empty if the guest never sent a request.
func (h *Host) OnDisconnect(fn func(clientID, playerID string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onDisconnect = fn
}

// Start binds a listening socket and returns the bound port. If the
// requested port is taken it falls back to a kernel-assigned one.
func (h *Host) Start(port int) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return 0, fmt.Errorf("host transport already running")
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		h.log.Warn().Int("port", port).Err(err).Msg("requested port unavailable, falling back")
		ln, err = net.Listen("tcp", ":0")
		if err != nil {
			return 0, fmt.Errorf("failed to bind listening socket: %w", err)
		}
	}

	router := mux.NewRouter()
	router.HandleFunc("/ws", h.serveWS)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}).Methods("GET")

	h.srv = &http.Server{Handler: router}
	h.port = ln.Addr().(*net.TCPAddr).Port
	h.running = true

	go func() {
		if err := h.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			h.log.Error().Err(err).Msg("host transport server failed")
		}
	}()

	h.log.Info().Int("port", h.port).Msg("host transport listening")
	return h.port, nil
}

// Port returns the bound port.
func (h *Host) Port() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.port
}

// SendToClient delivers one pushed message to one guest. It reports
// whether delivery was attempted; false means the connection is gone.
func (h *Host) SendToClient(playerID, event string, data any) bool {
	payload, err := h.encodeBroadcast(event, data)
	if err != nil {
		h.log.Warn().Err(err).Str("event", event).Msg("failed to encode message")
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	clientID, ok := h.byPlayer[playerID]
	if !ok {
		return false
	}
	c, ok := h.clients[clientID]
	if !ok {
		return false
	}
	h.trySend(c, payload)
	return true
}

// Broadcast delivers a message to every connected guest. A send failing
// for one guest never aborts delivery to the rest.
func (h *Host) Broadcast(event string, data any) {
	h.BroadcastExcept("", event, data)
}

// BroadcastExcept delivers a message to every connected guest except the
// one bound to exceptPlayerID.
func (h *Host) BroadcastExcept(exceptPlayerID, event string, data any) {
	payload, err := h.encodeBroadcast(event, data)
	if err != nil {
		h.log.Warn().Err(err).Str("event", event).Msg("failed to encode broadcast")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		if exceptPlayerID != "" && c.playerID == exceptPlayerID {
			continue
		}
		h.trySend(c, payload)
	}
}

// Stop closes all connections and the listening socket.
func (h *Host) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	srv := h.srv
	clients := make([]*hostClient, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[string]*hostClient)
	h.byPlayer = make(map[string]string)
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
		c.conn.Close()
	}
	if srv != nil {
		srv.Close()
	}
	h.log.Info().Msg("host transport stopped")
}

func (h *Host) encodeBroadcast(event string, data any) ([]byte, error) {
	raw, err := marshalData(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: TypeBroadcast, Event: event, Data: raw})
}

// trySend enqueues without blocking; a guest that cannot drain its buffer
// is treated as dead. Caller holds at least a read lock.
func (h *Host) trySend(c *hostClient, payload []byte) {
	defer func() {
		// close(send) can race an in-flight enqueue during teardown.
		recover()
	}()
	select {
	case c.send <- payload:
	default:
		h.log.Warn().Str("client", c.id).Msg("guest send buffer full, dropping connection")
		c.conn.Close()
	}
}

// serveWS upgrades an inbound connection and runs its pumps.
func (h *Host) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &hostClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c.id] = c
	onConnect := h.onConnect
	h.mu.Unlock()

	h.log.Debug().Str("client", c.id).Str("remote", conn.RemoteAddr().String()).Msg("guest connected")
	if onConnect != nil {
		onConnect(c.id)
	}

	go h.writePump(c)
	h.readPump(c)
}

func (h *Host) readPump(c *hostClient) {
	defer h.dropClient(c)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Str("client", c.id).Err(err).Msg("guest read failed")
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			h.log.Warn().Str("client", c.id).Err(err).Msg("dropping malformed message")
			continue
		}
		if env.Type != TypeRequest {
			continue
		}

		h.bindPlayer(c, env.PlayerID)
		h.dispatch(c, &env)
	}
}

// bindPlayer associates the connection with the player id carried on its
// requests, so pushes and disconnect events can be addressed by player.
func (h *Host) bindPlayer(c *hostClient, playerID string) {
	if playerID == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.playerID == playerID {
		return
	}
	c.playerID = playerID
	h.byPlayer[playerID] = c.id
}

func (h *Host) dispatch(c *hostClient, env *Envelope) {
	h.mu.RLock()
	handler := h.handlers[env.Event]
	h.mu.RUnlock()

	resp := Envelope{Type: TypeResponse, RequestID: env.RequestID}
	if handler == nil {
		resp.Error = "unknown_event"
	} else {
		result, err := handler(&Request{
			ClientID:  c.id,
			PlayerID:  env.PlayerID,
			RequestID: env.RequestID,
			Data:      env.Data,
		})
		if err != nil {
			resp.Error = err.Error()
		} else if raw, merr := marshalData(result); merr != nil {
			h.log.Error().Err(merr).Str("event", env.Event).Msg("failed to marshal response")
			resp.Error = "internal_error"
		} else {
			resp.Data = raw
		}
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to marshal response envelope")
		return
	}

	h.mu.RLock()
	h.trySend(c, payload)
	h.mu.RUnlock()
}

func (h *Host) dropClient(c *hostClient) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; !ok {
		// Already removed by Stop.
		h.mu.Unlock()
		c.conn.Close()
		return
	}
	delete(h.clients, c.id)
	if c.playerID != "" && h.byPlayer[c.playerID] == c.id {
		delete(h.byPlayer, c.playerID)
	}
	onDisconnect := h.onDisconnect
	playerID := c.playerID
	h.mu.Unlock()

	c.close()
	c.conn.Close()

	h.log.Debug().Str("client", c.id).Str("player", playerID).Msg("guest disconnected")
	if onDisconnect != nil {
		onDisconnect(c.id, playerID)
	}
}

func (h *Host) writePump(c *hostClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
