package service

import (
	"errors"
	"fmt"

	"github.com/partyline/lanboard/game/engine"
	"github.com/partyline/lanboard/game/room"
)

var (
	ErrNotInRoom        = errors.New("not in a room")
	ErrAlreadyInRoom    = errors.New("already in a room")
	ErrNotHost          = errors.New("only the host can do this")
	ErrNotEnoughPlayers = errors.New("at least two players are required")
	ErrJoinTimeout      = errors.New("join request timed out")
	ErrActionTimeout    = errors.New("action request timed out")
	ErrRoomClosed       = errors.New("the room was closed by the host")

	// ErrConnectionRefused is a dial failure that was answered rather than
	// blackholed: the host address is reachable but nothing is serving.
	ErrConnectionRefused = errors.New("host refused the connection")
)

// Wire error codes. Errors cross the session transport as short stable
// strings in the response envelope; both sides map between codes and the
// typed sentinels so errors.Is works on either end of the wire.
const (
	codeRoomFull       = "room_full"
	codeRoomNotFound   = "room_not_found"
	codePlayerNotFound = "player_not_found"
	codeNotYourTurn    = "not_your_turn"
	codeRoomNotPlaying = "room_not_playing"
	codeNoPendingRoll  = "no_pending_roll"
	codeTaskPending    = "task_pending"
	codeNoPendingTask  = "no_pending_task"
	codeNotAnExecutor  = "not_an_executor"
	codeUnknownAction  = "unknown_action"
	codeBadRequest     = "bad_request"
	codeInternal       = "internal_error"
)

var errByCode = map[string]error{
	codeRoomFull:       room.ErrRoomFull,
	codeRoomNotFound:   room.ErrRoomNotFound,
	codePlayerNotFound: room.ErrPlayerNotFound,
	codeNotYourTurn:    engine.ErrNotYourTurn,
	codeRoomNotPlaying: engine.ErrRoomNotPlaying,
	codeNoPendingRoll:  engine.ErrNoPendingRoll,
	codeTaskPending:    engine.ErrTaskPending,
	codeNoPendingTask:  engine.ErrNoPendingTask,
	codeNotAnExecutor:  engine.ErrNotAnExecutor,
	codeUnknownAction:  engine.ErrUnknownAction,
}

var codeByErr = func() map[error]string {
	m := make(map[error]string, len(errByCode))
	for code, err := range errByCode {
		m[err] = code
	}
	return m
}()

// encodeError turns a service or engine error into its wire code. Unknown
// errors encode as internal_error so internals never leak to guests.
func encodeError(err error) error {
	for sentinel, code := range codeByErr {
		if errors.Is(err, sentinel) {
			return errors.New(code)
		}
	}
	return errors.New(codeInternal)
}

// decodeError maps a wire code back onto the matching sentinel so guest
// callers can errors.Is against the same errors the host uses.
func decodeError(code string) error {
	if err, ok := errByCode[code]; ok {
		return err
	}
	return fmt.Errorf("host rejected request: %s", code)
}
