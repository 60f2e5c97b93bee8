package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/partyline/lanboard/game/engine"
	"github.com/partyline/lanboard/game/room"
)

func TestErrorCodeRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		sentinel error
		code     string
	}{
		{name: "room full", sentinel: room.ErrRoomFull, code: codeRoomFull},
		{name: "room not found", sentinel: room.ErrRoomNotFound, code: codeRoomNotFound},
		{name: "not your turn", sentinel: engine.ErrNotYourTurn, code: codeNotYourTurn},
		{name: "task pending", sentinel: engine.ErrTaskPending, code: codeTaskPending},
		{name: "not an executor", sentinel: engine.ErrNotAnExecutor, code: codeNotAnExecutor},
		{name: "unknown action", sentinel: engine.ErrUnknownAction, code: codeUnknownAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, encodeError(tt.sentinel).Error())
			assert.ErrorIs(t, decodeError(tt.code), tt.sentinel)
		})
	}
}

func TestEncodeErrorWrapped(t *testing.T) {
	wrapped := fmt.Errorf("dispatch: %w", engine.ErrNoPendingRoll)
	assert.Equal(t, codeNoPendingRoll, encodeError(wrapped).Error())
}

func TestEncodeErrorUnknownNeverLeaks(t *testing.T) {
	err := encodeError(errors.New("open /etc/secret: permission denied"))
	assert.Equal(t, codeInternal, err.Error())
}

func TestDecodeErrorUnknownCode(t *testing.T) {
	err := decodeError("mystery_code")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "mystery_code")
}
