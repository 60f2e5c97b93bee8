// Command lanboard runs a LAN board-game session from the terminal.
//
// It supports three commands:
//   - "host" – create a room, advertise it on the LAN, and accept guests
//   - "join" – connect to a host by address, or to the first discovered room
//   - "list" – print the rooms currently advertised on the LAN
//
// Flags control the session port, player and room names, the task-set
// directory, and debug logging. A .env file in the working directory is
// loaded before flags are parsed.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/partyline/lanboard/discovery"
	"github.com/partyline/lanboard/game/content"
	"github.com/partyline/lanboard/game/room"
	"github.com/partyline/lanboard/game/service"
	"github.com/partyline/lanboard/game/session"
)

const appVersion = "1.0.0"

func main() {
	// Missing .env is fine; it only supplies defaults.
	godotenv.Load()

	cmd := &cli.Command{
		Name:    "lanboard",
		Usage:   "host or join a LAN board game",
		Version: appVersion,
		Commands: []*cli.Command{
			hostCommand(),
			joinCommand(),
			listCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func hostCommand() *cli.Command {
	return &cli.Command{
		Name:  "host",
		Usage: "create a room and accept guests",
		Flags: append(commonFlags(),
			&cli.StringFlag{Name: "room", Usage: "room name", Value: "lanboard"},
			&cli.IntFlag{Name: "port", Usage: "session port (0 picks a free one)", Sources: cli.EnvVars("LANBOARD_PORT")},
			&cli.IntFlag{Name: "max-players", Usage: "room capacity", Value: 8},
			&cli.StringFlag{Name: "taskset", Usage: "task set id"},
			&cli.StringFlag{Name: "taskset-dir", Usage: "directory with task set JSON files", Sources: cli.EnvVars("LANBOARD_TASKSET_DIR")},
			&cli.StringFlag{Name: "data-dir", Usage: "directory for persisted rooms", Sources: cli.EnvVars("LANBOARD_DATA_DIR")},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := newLogger(cmd.Bool("debug"))
			svc, err := buildService(log, cmd.String("taskset-dir"), cmd.String("data-dir"))
			if err != nil {
				return err
			}
			defer svc.Cleanup()

			r, err := svc.CreateRoom(ctx, service.CreateRoomOptions{
				RoomName:   cmd.String("room"),
				PlayerName: cmd.String("name"),
				MaxPlayers: int(cmd.Int("max-players")),
				TaskSetID:  cmd.String("taskset"),
				Port:       int(cmd.Int("port")),
			})
			if err != nil {
				return fmt.Errorf("failed to create room: %w", err)
			}

			log.Info().
				Str("room", r.Name).
				Str("id", r.ID).
				Int("port", svc.Port()).
				Msg("hosting, waiting for guests (ctrl-c to stop)")

			svc.Events().On(room.EventRoomJoin, func(data any) {
				log.Info().Interface("player", data).Msg("player joined")
			})
			svc.Events().On(room.EventRoomLeave, func(data any) {
				log.Info().Interface("player", data).Msg("player left")
			})

			waitForSignal(ctx)
			return nil
		},
	}
}

func joinCommand() *cli.Command {
	return &cli.Command{
		Name:  "join",
		Usage: "join a room by address, or the first discovered one",
		Flags: append(commonFlags(),
			&cli.StringFlag{Name: "addr", Usage: "host address (host:port); empty means discover"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := newLogger(cmd.Bool("debug"))
			svc, err := buildService(log, "", "")
			if err != nil {
				return err
			}
			defer svc.Cleanup()

			hostIP, port, err := resolveTarget(ctx, svc, cmd.String("addr"))
			if err != nil {
				return err
			}

			r, err := svc.JoinRoom(ctx, hostIP, port, service.JoinOptions{
				PlayerName: cmd.String("name"),
			})
			if err != nil {
				return fmt.Errorf("failed to join: %w", err)
			}

			log.Info().Str("room", r.Name).Int("players", len(r.Players)).Msg("joined (ctrl-c to leave)")

			svc.Events().On(room.EventGameVictory, func(data any) {
				log.Info().Interface("victory", data).Msg("game over")
			})

			waitForSignal(ctx)
			return svc.LeaveRoom(context.Background())
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "print rooms advertised on the LAN",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
			&cli.DurationFlag{Name: "wait", Usage: "how long to listen", Value: 3 * time.Second},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := newLogger(cmd.Bool("debug"))
			svc, err := buildService(log, "", "")
			if err != nil {
				return err
			}
			defer svc.Cleanup()

			if err := svc.StartDiscovery(); err != nil {
				return fmt.Errorf("failed to start discovery: %w", err)
			}

			select {
			case <-time.After(cmd.Duration("wait")):
			case <-ctx.Done():
			}

			rooms := svc.DiscoveredRooms()
			if len(rooms) == 0 {
				fmt.Println("no rooms found")
				return nil
			}
			for _, info := range rooms {
				fmt.Printf("%-20s %s:%d  %d/%d players  host=%s\n",
					info.RoomName, info.HostIP, info.TCPPort,
					info.CurrentPlayers, info.MaxPlayers, info.HostName)
			}
			return nil
		},
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "player name", Value: defaultPlayerName(), Sources: cli.EnvVars("LANBOARD_NAME")},
		&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
	}
}

func defaultPlayerName() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "player"
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

func buildService(log zerolog.Logger, taskSetDir, dataDir string) (*service.LANService, error) {
	provider, err := content.NewFileProvider(taskSetDir, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load task sets: %w", err)
	}

	svc := service.New(log,
		room.NewPlayerRegistry(),
		room.NewRoomRegistry(),
		session.NewManager(log),
		provider,
	)

	if dataDir != "" {
		persistence, err := session.NewFilePersistence(dataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open data directory: %w", err)
		}
		svc = svc.WithPersistence(persistence)
	}
	return svc, nil
}

// resolveTarget parses an explicit host:port, or discovers the first
// advertised room when addr is empty.
func resolveTarget(ctx context.Context, svc *service.LANService, addr string) (string, int, error) {
	if addr != "" {
		hostIP, portStr, err := net.SplitHostPort(addr)
		if err != nil {
			return "", 0, fmt.Errorf("invalid address %q, want host:port", addr)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return "", 0, fmt.Errorf("invalid port in %q", addr)
		}
		return hostIP, port, nil
	}

	if err := svc.StartDiscovery(); err != nil {
		return "", 0, fmt.Errorf("failed to start discovery: %w", err)
	}
	defer svc.StopDiscovery()

	deadline := time.After(discovery.StalenessWindow)
	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-tick.C:
			if rooms := svc.DiscoveredRooms(); len(rooms) > 0 {
				return rooms[0].HostIP, rooms[0].TCPPort, nil
			}
		case <-deadline:
			return "", 0, fmt.Errorf("no rooms discovered")
		case <-ctx.Done():
			return "", 0, ctx.Err()
		}
	}
}

func waitForSignal(ctx context.Context) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case <-sig:
	case <-ctx.Done():
	}
}
