package discovery

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultPort is the UDP port room advertisements are sent to.
	DefaultPort = 47799

	// BroadcastInterval is how often an advertisement is retransmitted.
	BroadcastInterval = 2 * time.Second

	// StalenessWindow is how long a listener keeps an entry without a
	// refresh before dropping it.
	StalenessWindow = 10 * time.Second
)

// RoomBroadcast is the discovery wire payload. It is best-effort and
// unordered; receivers rely on Timestamp for freshness, never on arrival
// order.
type RoomBroadcast struct {
	RoomID         string `json:"roomId"`
	RoomName       string `json:"roomName"`
	HostName       string `json:"hostName"`
	HostIP         string `json:"hostIP"`
	TCPPort        int    `json:"tcpPort"`
	MaxPlayers     int    `json:"maxPlayers"`
	CurrentPlayers int    `json:"currentPlayers"`
	GameType       string `json:"gameType"`
	Timestamp      int64  `json:"timestamp"`
}

// Advertiser periodically broadcasts a RoomBroadcast describing the local
// room. Transmission errors are logged and retried on the next tick; they
// never surface to the caller.
type Advertiser struct {
	log      zerolog.Logger
	addr     string
	interval time.Duration

	mu      sync.Mutex
	info    RoomBroadcast
	conn    net.Conn
	stop    chan struct{}
	running bool
}

// NewAdvertiser creates an advertiser targeting addr, or the LAN broadcast
// address on the default port when addr is empty.
func NewAdvertiser(log zerolog.Logger, addr string) *Advertiser {
	if addr == "" {
		addr = fmt.Sprintf("255.255.255.255:%d", DefaultPort)
	}
	return &Advertiser{
		log:      log.With().Str("component", "discovery").Logger(),
		addr:     addr,
		interval: BroadcastInterval,
	}
}

// Start begins periodic transmission of info. It sends one advertisement
// immediately so listeners see the room without waiting a full interval.
func (a *Advertiser) Start(info RoomBroadcast) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return fmt.Errorf("advertiser already running")
	}

	udpAddr, err := net.ResolveUDPAddr("udp4", a.addr)
	if err != nil {
		return fmt.Errorf("failed to resolve broadcast address: %w", err)
	}
	conn, err := net.DialUDP("udp4", nil, udpAddr)
	if err != nil {
		return fmt.Errorf("failed to open broadcast socket: %w", err)
	}

	a.info = info
	a.conn = conn
	a.stop = make(chan struct{})
	a.running = true

	a.sendLocked()
	go a.loop(a.stop)

	a.log.Info().Str("room", info.RoomID).Str("addr", a.addr).Msg("advertising room")
	return nil
}

// Update mutates the next transmitted payload without restarting the
// timer, e.g. to reflect an occupancy change.
func (a *Advertiser) Update(mutate func(*RoomBroadcast)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	mutate(&a.info)
}

// Stop halts transmission and releases the socket. Safe to call twice.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return
	}
	close(a.stop)
	a.conn.Close()
	a.conn = nil
	a.running = false
}

func (a *Advertiser) loop(stop chan struct{}) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			a.mu.Lock()
			if a.running {
				a.sendLocked()
			}
			a.mu.Unlock()
		}
	}
}

func (a *Advertiser) sendLocked() {
	a.info.Timestamp = time.Now().UnixMilli()

	data, err := json.Marshal(a.info)
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to marshal room advertisement")
		return
	}
	if _, err := a.conn.Write(data); err != nil {
		a.log.Warn().Err(err).Msg("failed to send room advertisement")
	}
}
