package discovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Listener collects room advertisements from the LAN and expires entries
// that stop refreshing. Reception errors are logged and reading continues;
// they never surface to the caller.
type Listener struct {
	log       zerolog.Logger
	port      int
	staleness time.Duration
	sweepTick time.Duration

	mu      sync.Mutex
	entries map[string]*listenerEntry
	conn    *net.UDPConn
	stop    chan struct{}
	running bool

	onFound func(RoomBroadcast)
	onLost  func(RoomBroadcast)
}

type listenerEntry struct {
	info     RoomBroadcast
	lastSeen time.Time
}

// NewListener creates a listener for the given UDP port, or the default
// discovery port when port is 0.
func NewListener(log zerolog.Logger, port int) *Listener {
	if port == 0 {
		port = DefaultPort
	}
	return &Listener{
		log:       log.With().Str("component", "discovery").Logger(),
		port:      port,
		staleness: StalenessWindow,
		sweepTick: BroadcastInterval,
		entries:   make(map[string]*listenerEntry),
	}
}

// OnFound registers a callback fired when a room is seen for the first
// time. Must be set before Start.
func (l *Listener) OnFound(fn func(RoomBroadcast)) { l.onFound = fn }

// OnLost registers a callback fired when a room's advertisement goes
// stale. Must be set before Start.
func (l *Listener) OnLost(fn func(RoomBroadcast)) { l.onLost = fn }

// Start binds the UDP socket and begins collecting advertisements.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return fmt.Errorf("listener already running")
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: l.port})
	if err != nil {
		return fmt.Errorf("failed to bind discovery port: %w", err)
	}

	l.conn = conn
	l.stop = make(chan struct{})
	l.running = true

	go l.readLoop(conn, l.stop)
	go l.sweepLoop(l.stop)

	l.log.Info().Int("port", l.Port()).Msg("listening for room advertisements")
	return nil
}

// Port returns the bound UDP port.
func (l *Listener) Port() int {
	if l.conn == nil {
		return l.port
	}
	return l.conn.LocalAddr().(*net.UDPAddr).Port
}

// Rooms returns a snapshot of currently discovered rooms, newest first.
func (l *Listener) Rooms() []RoomBroadcast {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]RoomBroadcast, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out
}

// Stop halts reception and clears collected entries.
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.running {
		return
	}
	close(l.stop)
	l.conn.Close()
	l.conn = nil
	l.running = false
	l.entries = make(map[string]*listenerEntry)
}

func (l *Listener) readLoop(conn *net.UDPConn, stop chan struct{}) {
	buf := make([]byte, 2048)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-stop:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			l.log.Warn().Err(err).Msg("discovery read failed")
			continue
		}

		var info RoomBroadcast
		if err := json.Unmarshal(buf[:n], &info); err != nil {
			l.log.Warn().Err(err).Msg("dropping malformed room advertisement")
			continue
		}
		if info.RoomID == "" {
			continue
		}
		l.upsert(info, time.Now())
	}
}

// upsert records or refreshes an advertisement. Duplicates and reordered
// datagrams are tolerated: the entry keeps the payload with the newest
// embedded timestamp.
func (l *Listener) upsert(info RoomBroadcast, now time.Time) {
	l.mu.Lock()
	e, known := l.entries[info.RoomID]
	if known {
		if info.Timestamp >= e.info.Timestamp {
			e.info = info
		}
		e.lastSeen = now
	} else {
		l.entries[info.RoomID] = &listenerEntry{info: info, lastSeen: now}
	}
	onFound := l.onFound
	l.mu.Unlock()

	if !known && onFound != nil {
		onFound(info)
	}
}

func (l *Listener) sweepLoop(stop chan struct{}) {
	ticker := time.NewTicker(l.sweepTick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			l.sweep(time.Now())
		}
	}
}

// sweep removes entries whose last refresh is older than the staleness
// window and fires the room-lost notification for each.
func (l *Listener) sweep(now time.Time) {
	l.mu.Lock()
	var lost []RoomBroadcast
	for id, e := range l.entries {
		if now.Sub(e.lastSeen) > l.staleness {
			lost = append(lost, e.info)
			delete(l.entries, id)
		}
	}
	onLost := l.onLost
	l.mu.Unlock()

	for _, info := range lost {
		l.log.Debug().Str("room", info.RoomID).Msg("room advertisement went stale")
		if onLost != nil {
			onLost(info)
		}
	}
}
