package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/partyline/lanboard/discovery"
	"github.com/partyline/lanboard/game/content"
	"github.com/partyline/lanboard/game/engine"
	"github.com/partyline/lanboard/game/room"
	"github.com/partyline/lanboard/game/session"
	"github.com/partyline/lanboard/transport/ws"
)

const (
	// joinTimeout bounds a guest's room:join round trip.
	joinTimeout = 30 * time.Second

	// actionTimeout bounds a guest's game:action round trip.
	actionTimeout = 10 * time.Second

	// disconnectGrace is how long a disconnected executor has to return
	// before their pending task is auto-failed.
	disconnectGrace = 15 * time.Second

	defaultMaxPlayers = 8
)

// JoinRequest is the room:join request payload.
type JoinRequest struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Avatar     string `json:"avatar,omitempty"`
}

// LeaveRequest is the room:leave request payload.
type LeaveRequest struct {
	PlayerID string `json:"playerId"`
}

// PresenceEvent is the client:connected / client:disconnected broadcast
// payload.
type PresenceEvent struct {
	PlayerID string `json:"playerId"`
}

// CreateRoomOptions configures a hosted room.
type CreateRoomOptions struct {
	RoomName   string
	PlayerName string
	Avatar     string
	MaxPlayers int
	TaskSetID  string
	Port       int
}

// JoinOptions configures joining a discovered room.
type JoinOptions struct {
	PlayerName string
	Avatar     string
}

// mirroredEvents are the host broadcasts a guest subscribes to on join.
// room:update additionally refreshes the guest's local room mirror; every
// event is re-emitted on the local emitter for the UI layer.
var mirroredEvents = []string{
	room.EventRoomJoin,
	room.EventRoomLeave,
	room.EventRoomUpdate,
	room.EventClientConnected,
	room.EventClientDisconnected,
	room.EventGameDice,
	room.EventGameTask,
	room.EventGameTaskCompleted,
	room.EventGameAllTasksCompleted,
	room.EventGameNext,
	room.EventGameVictory,
}

// LANService orchestrates one device's participation in a LAN session:
// hosting a room (authoritative registries, engine, advertiser, host
// transport) or joining one as a guest (client transport, mirrored room).
// A service is in at most one room at a time.
type LANService struct {
	log       zerolog.Logger
	players   *room.PlayerRegistry
	rooms     *room.RoomRegistry
	instances *session.Manager
	provider  content.Provider
	emitter   *Emitter
	scheduler *Scheduler
	store     *registryStore

	mu         sync.Mutex
	self       *room.Player
	roomID     string
	host       *ws.Host
	client     *ws.Client
	advertiser *discovery.Advertiser
	listener   *discovery.Listener
	roomLocks  map[string]*sync.Mutex
}

// New creates a LAN service around explicitly constructed collaborators.
func New(log zerolog.Logger, players *room.PlayerRegistry, rooms *room.RoomRegistry, instances *session.Manager, provider content.Provider) *LANService {
	slog := log.With().Str("component", "service").Logger()
	return &LANService{
		log:       slog,
		players:   players,
		rooms:     rooms,
		instances: instances,
		provider:  provider,
		emitter:   NewEmitter(),
		scheduler: NewScheduler(),
		store:     &registryStore{rooms: rooms, log: slog},
		roomLocks: make(map[string]*sync.Mutex),
	}
}

// WithPersistence mirrors every room save to disk so a restarted host can
// resume games.
func (s *LANService) WithPersistence(p session.RoomPersistence) *LANService {
	s.store.persistence = p
	return s
}

// Events returns the local event bus the UI layer subscribes to.
func (s *LANService) Events() *Emitter {
	return s.emitter
}

// Self returns the local player identity, nil before the first create or
// join.
func (s *LANService) Self() *room.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.self
}

// CurrentRoom returns the room this service is in.
func (s *LANService) CurrentRoom() (*room.Room, error) {
	s.mu.Lock()
	id := s.roomID
	s.mu.Unlock()

	if id == "" {
		return nil, ErrNotInRoom
	}
	return s.rooms.Get(id)
}

// IsHost reports whether this service is hosting its current room.
func (s *LANService) IsHost() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.host != nil
}

// Port returns the bound session transport port when hosting, 0 otherwise.
func (s *LANService) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.host == nil {
		return 0
	}
	return s.host.Port()
}

// lockRoom returns the mutex serializing all engine access for a room.
func (s *LANService) lockRoom(roomID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.roomLocks[roomID]
	if !ok {
		l = &sync.Mutex{}
		s.roomLocks[roomID] = l
	}
	return l
}

// CreateRoom starts hosting: it creates the room and host player, binds
// the session transport (falling back to an ephemeral port), wires the
// request handlers, and begins advertising on the LAN.
func (s *LANService) CreateRoom(ctx context.Context, opts CreateRoomOptions) (*room.Room, error) {
	s.mu.Lock()
	if s.roomID != "" {
		s.mu.Unlock()
		return nil, ErrAlreadyInRoom
	}
	s.mu.Unlock()

	taskSet, err := s.resolveTaskSet(opts.TaskSetID)
	if err != nil {
		return nil, err
	}

	maxPlayers := opts.MaxPlayers
	if maxPlayers <= 0 {
		maxPlayers = defaultMaxPlayers
	}

	self := s.players.Upsert(&room.Player{
		ID:          uuid.NewString(),
		Name:        opts.PlayerName,
		Avatar:      opts.Avatar,
		Color:       content.AllocateColor(nil),
		IsHost:      true,
		IsConnected: true,
	})

	r := s.rooms.Create(opts.RoomName, self.ID, room.GameTypeBoard, maxPlayers)
	r.TaskSet = taskSet
	if _, err := s.rooms.AddPlayerToRoom(r.ID, self); err != nil {
		return nil, err
	}
	s.players.SetRoom(self.ID, r.ID)
	s.store.Save(r)

	host := ws.NewHost(s.log)
	s.wireHostHandlers(host, r.ID)
	port, err := host.Start(opts.Port)
	if err != nil {
		return nil, fmt.Errorf("failed to start session transport: %w", err)
	}

	// Discovery is best effort: a room that cannot advertise is still
	// joinable by address, so a broadcast socket failure only logs.
	adv := discovery.NewAdvertiser(s.log, "")
	if err := adv.Start(discovery.RoomBroadcast{
		RoomID:         r.ID,
		RoomName:       r.Name,
		HostName:       self.Name,
		HostIP:         discovery.LocalIP(),
		TCPPort:        port,
		MaxPlayers:     r.MaxPlayers,
		CurrentPlayers: len(r.Players),
		GameType:       r.GameType,
	}); err != nil {
		s.log.Warn().Err(err).Msg("room advertising unavailable")
		adv = nil
	}

	s.mu.Lock()
	s.self = self
	s.roomID = r.ID
	s.host = host
	s.advertiser = adv
	s.mu.Unlock()

	s.emitter.Emit(room.EventRoomUpdate, r.Snapshot())
	s.log.Info().Str("room", r.ID).Int("port", port).Msg("room created")
	return r, nil
}

func (s *LANService) resolveTaskSet(id string) (*room.TaskSet, error) {
	if id == "" {
		return s.provider.Default(), nil
	}
	return s.provider.TaskSet(id)
}

func (s *LANService) wireHostHandlers(host *ws.Host, roomID string) {
	host.Handle(room.EventRoomJoin, func(req *ws.Request) (any, error) {
		return s.handleJoin(roomID, req)
	})
	host.Handle(room.EventRoomLeave, func(req *ws.Request) (any, error) {
		return s.handleLeave(roomID, req)
	})
	host.Handle(room.EventGameAction, func(req *ws.Request) (any, error) {
		return s.handleGameAction(roomID, req)
	})
	host.OnDisconnect(func(clientID, playerID string) {
		s.handleGuestDisconnect(roomID, playerID)
	})
}

// handleJoin admits a guest or re-admits a returning one. The capacity
// check happens before any mutation; a rejected join leaves the room
// untouched. The response is the full room snapshot; everyone else learns
// of the change through broadcasts.
func (s *LANService) handleJoin(roomID string, req *ws.Request) (any, error) {
	var jr JoinRequest
	if err := json.Unmarshal(req.Data, &jr); err != nil || jr.PlayerID == "" || jr.PlayerName == "" {
		return nil, errors.New(codeBadRequest)
	}

	lock := s.lockRoom(roomID)
	lock.Lock()
	defer lock.Unlock()

	r, err := s.rooms.Get(roomID)
	if err != nil {
		return nil, encodeError(err)
	}

	returning := r.FindPlayer(jr.PlayerID) != nil
	if !returning && r.IsFull() {
		return nil, encodeError(room.ErrRoomFull)
	}

	p := &room.Player{
		ID:          jr.PlayerID,
		Name:        jr.PlayerName,
		Avatar:      jr.Avatar,
		IsConnected: true,
	}
	if !returning {
		p.Color = content.AllocateColor(takenColors(r))
	}
	rec := s.players.Upsert(p)

	if _, err := s.rooms.AddPlayerToRoom(roomID, rec); err != nil {
		return nil, encodeError(err)
	}
	s.players.SetRoom(rec.ID, roomID)

	// A returning executor beat the auto-fail grace timer.
	s.scheduler.Cancel(autoFailKey(rec.ID))

	s.store.Save(r)
	snap := r.Snapshot()

	if returning {
		s.broadcastExcept(rec.ID, room.EventClientConnected, PresenceEvent{PlayerID: rec.ID})
	} else {
		s.broadcastExcept(rec.ID, room.EventRoomJoin, rec.Snapshot())
	}
	s.broadcastExcept(rec.ID, room.EventRoomUpdate, snap)
	s.updateAdvertiser(r)

	s.log.Info().Str("player", rec.ID).Bool("returning", returning).Msg("guest joined")
	return snap, nil
}

// handleLeave removes a guest from the room. The engine releases whatever
// the player held before membership changes, so the room cannot stall on
// a departed player's turn or task.
func (s *LANService) handleLeave(roomID string, req *ws.Request) (any, error) {
	var lr LeaveRequest
	if err := json.Unmarshal(req.Data, &lr); err != nil || lr.PlayerID == "" {
		return nil, errors.New(codeBadRequest)
	}

	lock := s.lockRoom(roomID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.removePlayer(roomID, lr.PlayerID); err != nil {
		return nil, encodeError(err)
	}
	return map[string]bool{"ok": true}, nil
}

// removePlayer is the shared leave path. Caller holds the room lock.
func (s *LANService) removePlayer(roomID, playerID string) error {
	r, err := s.rooms.Get(roomID)
	if err != nil {
		return err
	}

	s.scheduler.Cancel(autoFailKey(playerID))
	s.players.SetConnected(playerID, false)

	// Disconnected players are skipped by turn rotation, so release the
	// player's holdings before dropping their membership.
	if inst, err := s.instances.Get(roomID); err == nil {
		if err := inst.OnPlayerLeave(playerID); err != nil {
			s.log.Warn().Err(err).Str("player", playerID).Msg("failed to release departing player")
		}
	}

	r, err = s.rooms.RemovePlayerFromRoom(roomID, playerID)
	if err != nil {
		return err
	}
	s.players.ClearRoom(playerID)
	s.store.Save(r)

	s.broadcastExcept(playerID, room.EventRoomLeave, PresenceEvent{PlayerID: playerID})
	s.broadcastExcept(playerID, room.EventRoomUpdate, r.Snapshot())
	s.updateAdvertiser(r)

	s.log.Info().Str("player", playerID).Msg("player left room")
	return nil
}

// handleGameAction funnels a guest action into the engine under the
// per-room lock.
func (s *LANService) handleGameAction(roomID string, req *ws.Request) (any, error) {
	action, err := engine.ParseAction(req.Data)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownAction) {
			return nil, encodeError(err)
		}
		return nil, errors.New(codeBadRequest)
	}

	lock := s.lockRoom(roomID)
	lock.Lock()
	defer lock.Unlock()

	inst, err := s.instances.Get(roomID)
	if err != nil {
		return nil, encodeError(engine.ErrRoomNotPlaying)
	}

	result, err := inst.OnPlayerAction(req.PlayerID, action)
	if err != nil {
		return nil, encodeError(err)
	}
	return result, nil
}

// handleGuestDisconnect marks the guest disconnected and, if they hold an
// open executor task, arms the auto-fail grace timer. Membership and
// progress survive; a reconnect within the grace period cancels the
// timer.
func (s *LANService) handleGuestDisconnect(roomID, playerID string) {
	if playerID == "" {
		return
	}

	lock := s.lockRoom(roomID)
	lock.Lock()
	defer lock.Unlock()

	r, err := s.rooms.Get(roomID)
	if err != nil || r.FindPlayer(playerID) == nil {
		return
	}

	s.players.SetConnected(playerID, false)
	s.store.Save(r)
	s.broadcastExcept(playerID, room.EventClientDisconnected, PresenceEvent{PlayerID: playerID})
	s.broadcastExcept(playerID, room.EventRoomUpdate, r.Snapshot())

	if s.hasOpenExecutorTask(r, playerID) {
		s.scheduler.After(autoFailKey(playerID), disconnectGrace, func() {
			s.autoFailTask(roomID, playerID)
		})
	}

	s.log.Info().Str("player", playerID).Msg("guest disconnected")
}

func (s *LANService) hasOpenExecutorTask(r *room.Room, playerID string) bool {
	gs := r.GameState
	if gs == nil || !gs.HasPendingTask || gs.CurrentTask == nil {
		return false
	}
	et := gs.CurrentTask.Executor(playerID)
	return et != nil && !et.Completed
}

func (s *LANService) autoFailTask(roomID, playerID string) {
	lock := s.lockRoom(roomID)
	lock.Lock()
	defer lock.Unlock()

	inst, err := s.instances.Get(roomID)
	if err != nil {
		return
	}
	if err := inst.FailPendingTask(playerID); err != nil {
		s.log.Warn().Err(err).Str("player", playerID).Msg("auto-fail failed")
	}
}

// StartGame begins the game in the hosted room. Host-only, requires at
// least two members, and refuses a room that is already playing. Called
// again after a game has ended it starts a rematch.
func (s *LANService) StartGame(ctx context.Context) error {
	s.mu.Lock()
	host := s.host
	roomID := s.roomID
	s.mu.Unlock()

	if roomID == "" {
		return ErrNotInRoom
	}
	if host == nil {
		return ErrNotHost
	}

	lock := s.lockRoom(roomID)
	lock.Lock()
	defer lock.Unlock()

	r, err := s.rooms.Get(roomID)
	if err != nil {
		return err
	}
	if len(r.Players) < 2 {
		return ErrNotEnoughPlayers
	}
	if r.TaskSet == nil {
		r.TaskSet = s.provider.Default()
	}

	// A finished game leaves its instance behind until the room closes;
	// starting again in an ended room is a rematch, so replace it.
	if _, err := s.instances.Get(roomID); err == nil && r.GameStatus == room.StatusEnded {
		s.instances.Remove(roomID)
	}

	inst, err := s.instances.Create(r, s.store, &hostBroadcaster{host: host, emitter: s.emitter})
	if err != nil {
		return err
	}
	if err := inst.OnStart(); err != nil {
		s.instances.Remove(roomID)
		return err
	}

	s.log.Info().Str("room", roomID).Int("players", len(r.Players)).Msg("game started")
	return nil
}

// SubmitAction is the uniform action funnel: on the host it goes straight
// into the engine under the room lock; on a guest it makes the bounded
// request round trip. Guest callers receive the raw response payload.
func (s *LANService) SubmitAction(ctx context.Context, action engine.Action) (any, error) {
	s.mu.Lock()
	self := s.self
	roomID := s.roomID
	hosting := s.host != nil
	client := s.client
	s.mu.Unlock()

	if roomID == "" || self == nil {
		return nil, ErrNotInRoom
	}

	if hosting {
		lock := s.lockRoom(roomID)
		lock.Lock()
		defer lock.Unlock()

		inst, err := s.instances.Get(roomID)
		if err != nil {
			return nil, engine.ErrRoomNotPlaying
		}
		return inst.OnPlayerAction(self.ID, action)
	}

	rctx, cancel := context.WithTimeout(ctx, actionTimeout)
	defer cancel()

	raw, err := client.Request(rctx, room.EventGameAction, action)
	if err != nil {
		return nil, s.mapRemoteError(err, ErrActionTimeout)
	}
	return raw, nil
}

// JoinRoom connects to a discovered host and joins its room. The whole
// operation is bounded by the join timeout; an unreachable host resolves
// with ErrJoinTimeout and a refused dial with ErrConnectionRefused,
// never a hang.
func (s *LANService) JoinRoom(ctx context.Context, hostIP string, port int, opts JoinOptions) (*room.Room, error) {
	s.mu.Lock()
	if s.roomID != "" {
		s.mu.Unlock()
		return nil, ErrAlreadyInRoom
	}
	self := s.self
	s.mu.Unlock()

	if self == nil {
		self = s.players.Upsert(&room.Player{
			ID:          uuid.NewString(),
			Name:        opts.PlayerName,
			Avatar:      opts.Avatar,
			IsConnected: true,
		})
	}

	jctx, cancel := context.WithTimeout(ctx, joinTimeout)
	defer cancel()

	client := ws.NewClient(s.log)
	if err := client.Connect(jctx, hostIP, port, self.ID); err != nil {
		// Dial errors against a dead address do not always unwrap to the
		// context error, so consult the deadline directly.
		if jctx.Err() != nil {
			return nil, ErrJoinTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrConnectionRefused, err)
	}

	// Mirror subscriptions go in before the join request so no broadcast
	// between admission and subscription is lost.
	for _, event := range mirroredEvents {
		ev := event
		client.On(ev, func(data json.RawMessage) {
			if ev == room.EventRoomUpdate {
				s.mirrorRoom(data)
			}
			s.emitter.Emit(ev, data)
		})
	}

	raw, err := client.Request(jctx, room.EventRoomJoin, JoinRequest{
		PlayerID:   self.ID,
		PlayerName: self.Name,
		Avatar:     self.Avatar,
	})
	if err != nil {
		client.Disconnect()
		return nil, s.mapRemoteError(err, ErrJoinTimeout)
	}

	var r room.Room
	if err := json.Unmarshal(raw, &r); err != nil {
		client.Disconnect()
		return nil, fmt.Errorf("malformed join response: %w", err)
	}
	s.rooms.Save(&r)
	s.players.SetRoom(self.ID, r.ID)

	s.mu.Lock()
	s.self = self
	s.roomID = r.ID
	s.client = client
	s.mu.Unlock()

	s.emitter.Emit(room.EventRoomUpdate, r.Snapshot())
	s.log.Info().Str("room", r.ID).Str("host", hostIP).Msg("joined room")
	return &r, nil
}

// mirrorRoom refreshes the guest-side room mirror from a room:update
// broadcast.
func (s *LANService) mirrorRoom(data json.RawMessage) {
	var r room.Room
	if err := json.Unmarshal(data, &r); err != nil {
		s.log.Warn().Err(err).Msg("dropping malformed room update")
		return
	}
	s.rooms.Save(&r)
}

// mapRemoteError converts transport errors into the service taxonomy: a
// wire code becomes its typed sentinel, a deadline becomes timeoutErr.
func (s *LANService) mapRemoteError(err error, timeoutErr error) error {
	var remote *ws.RemoteError
	if errors.As(err, &remote) {
		return decodeError(remote.Code)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return timeoutErr
	}
	if errors.Is(err, ws.ErrDisconnected) {
		return ErrRoomClosed
	}
	return err
}

// LeaveRoom leaves the current room. For a guest this notifies the host
// and disconnects; for the host it closes the room for everyone.
func (s *LANService) LeaveRoom(ctx context.Context) error {
	s.mu.Lock()
	self := s.self
	roomID := s.roomID
	hosting := s.host != nil
	client := s.client
	s.mu.Unlock()

	if roomID == "" {
		return ErrNotInRoom
	}

	if hosting {
		return s.closeRoom()
	}

	rctx, cancel := context.WithTimeout(ctx, actionTimeout)
	defer cancel()
	if _, err := client.Request(rctx, room.EventRoomLeave, LeaveRequest{PlayerID: self.ID}); err != nil {
		// Leaving is best effort; the host's disconnect handling covers
		// a lost notification.
		s.log.Warn().Err(err).Msg("leave notification failed")
	}
	client.Disconnect()

	s.mu.Lock()
	s.client = nil
	s.roomID = ""
	s.mu.Unlock()

	s.players.ClearRoom(self.ID)
	// The mirrored room is dead weight once we are out of it.
	s.rooms.Delete(roomID)
	s.emitter.Emit(room.EventRoomLeave, PresenceEvent{PlayerID: self.ID})
	return nil
}

// closeRoom tears the hosted room down: the engine ends, guests get a
// final room:leave, and the advertiser and transport stop.
func (s *LANService) closeRoom() error {
	s.mu.Lock()
	host := s.host
	adv := s.advertiser
	roomID := s.roomID
	self := s.self
	s.host = nil
	s.advertiser = nil
	s.roomID = ""
	s.mu.Unlock()

	if roomID == "" {
		return nil
	}

	lock := s.lockRoom(roomID)
	lock.Lock()
	if inst, err := s.instances.Get(roomID); err == nil {
		if err := inst.OnEnd(); err != nil {
			s.log.Warn().Err(err).Msg("failed to end game on close")
		}
		s.instances.Remove(roomID)
	}
	lock.Unlock()

	if host != nil {
		if self != nil {
			host.Broadcast(room.EventRoomLeave, PresenceEvent{PlayerID: self.ID})
		}
		host.ClearHandlers()
		host.Stop()
	}
	if adv != nil {
		adv.Stop()
	}
	if self != nil {
		s.players.ClearRoom(self.ID)
	}
	s.rooms.Delete(roomID)

	s.log.Info().Str("room", roomID).Msg("room closed")
	return nil
}

// StartDiscovery begins listening for room advertisements, re-emitting
// found and lost rooms on the local event bus.
func (s *LANService) StartDiscovery() error {
	s.mu.Lock()
	if s.listener != nil {
		s.mu.Unlock()
		return nil
	}
	listener := discovery.NewListener(s.log, discovery.DefaultPort)
	s.listener = listener
	s.mu.Unlock()

	listener.OnFound(func(info discovery.RoomBroadcast) {
		s.emitter.Emit(room.EventRoomFound, info)
	})
	listener.OnLost(func(info discovery.RoomBroadcast) {
		s.emitter.Emit(room.EventRoomLost, info)
	})

	if err := listener.Start(); err != nil {
		s.mu.Lock()
		s.listener = nil
		s.mu.Unlock()
		return err
	}
	return nil
}

// StopDiscovery stops the listener.
func (s *LANService) StopDiscovery() {
	s.mu.Lock()
	listener := s.listener
	s.listener = nil
	s.mu.Unlock()

	if listener != nil {
		listener.Stop()
	}
}

// DiscoveredRooms returns the currently visible rooms, freshest first.
func (s *LANService) DiscoveredRooms() []discovery.RoomBroadcast {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()

	if listener == nil {
		return nil
	}
	return listener.Rooms()
}

// Cleanup releases everything the service holds: timers, discovery,
// transports, the hosted room, and event subscriptions. Safe to call
// more than once.
func (s *LANService) Cleanup() {
	s.scheduler.CancelAll()
	s.StopDiscovery()

	s.mu.Lock()
	hosting := s.host != nil
	client := s.client
	s.client = nil
	s.mu.Unlock()

	if hosting {
		s.closeRoom()
	}
	if client != nil {
		client.Disconnect()
	}

	s.mu.Lock()
	s.roomID = ""
	s.mu.Unlock()

	s.emitter.Clear()
	s.log.Info().Msg("service cleaned up")
}

// broadcastExcept sends to every guest except one and loops the event
// back to the local emitter.
func (s *LANService) broadcastExcept(exceptPlayerID, event string, data any) {
	s.mu.Lock()
	host := s.host
	s.mu.Unlock()

	if host != nil {
		host.BroadcastExcept(exceptPlayerID, event, data)
	}
	s.emitter.Emit(event, data)
}

func (s *LANService) updateAdvertiser(r *room.Room) {
	s.mu.Lock()
	adv := s.advertiser
	s.mu.Unlock()

	if adv == nil {
		return
	}
	count := len(r.Players)
	adv.Update(func(b *discovery.RoomBroadcast) {
		b.CurrentPlayers = count
	})
}

func takenColors(r *room.Room) []string {
	out := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		if p.Color != "" {
			out = append(out, p.Color)
		}
	}
	return out
}

func autoFailKey(playerID string) string {
	return "autofail:" + playerID
}
