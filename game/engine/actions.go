package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ActionType enumerates the closed set of player actions. The payload is
// decoded at the transport boundary so the engine's dispatch switch is
// exhaustive over this enum.
type ActionType string

const (
	ActionRollDice     ActionType = "roll_dice"
	ActionMoveComplete ActionType = "move_complete"
	ActionCompleteTask ActionType = "complete_task"
)

// Action is the game:action request payload. Completed is only meaningful
// for complete_task.
type Action struct {
	Type      ActionType `json:"type"`
	Completed bool       `json:"completed,omitempty"`
}

// ParseAction strictly decodes an action payload, rejecting unknown fields
// and action types.
func ParseAction(data []byte) (Action, error) {
	var a Action
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return Action{}, fmt.Errorf("malformed action payload: %w", err)
	}

	switch a.Type {
	case ActionRollDice, ActionMoveComplete, ActionCompleteTask:
		return a, nil
	default:
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}
}
