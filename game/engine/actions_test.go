package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Action
		wantErr bool
	}{
		{
			name:    "roll dice",
			payload: `{"type":"roll_dice"}`,
			want:    Action{Type: ActionRollDice},
		},
		{
			name:    "move complete",
			payload: `{"type":"move_complete"}`,
			want:    Action{Type: ActionMoveComplete},
		},
		{
			name:    "complete task success",
			payload: `{"type":"complete_task","completed":true}`,
			want:    Action{Type: ActionCompleteTask, Completed: true},
		},
		{
			name:    "unknown type",
			payload: `{"type":"teleport"}`,
			wantErr: true,
		},
		{
			name:    "empty type",
			payload: `{}`,
			wantErr: true,
		},
		{
			name:    "unknown field",
			payload: `{"type":"roll_dice","force":6}`,
			wantErr: true,
		},
		{
			name:    "not json",
			payload: `roll the dice`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAction([]byte(tt.payload))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
