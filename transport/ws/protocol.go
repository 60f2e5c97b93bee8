package ws

import (
	"encoding/json"
	"fmt"
)

// Message kinds carried on a session connection. A request expects exactly
// one response correlated by RequestID; broadcasts are unsolicited pushes
// from the host.
const (
	TypeRequest   = "request"
	TypeResponse  = "response"
	TypeBroadcast = "broadcast"
)

// Envelope is the wire frame for every session message. Data holds the
// event-specific payload; Error is set on responses that reject the
// request, using a stable code the caller can map to a typed error.
type Envelope struct {
	Type      string          `json:"type"`
	Event     string          `json:"event,omitempty"`
	RequestID string          `json:"requestId,omitempty"`
	PlayerID  string          `json:"playerId,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Request is an inbound application message handed to a host-side handler.
type Request struct {
	ClientID  string
	PlayerID  string
	RequestID string
	Data      json.RawMessage
}

// HandlerFunc processes one request. The returned value is marshalled into
// the correlated response; a returned error travels back in the response's
// Error field and only the requesting client sees it.
type HandlerFunc func(req *Request) (any, error)

// RemoteError is a request rejection surfaced by the remote peer.
type RemoteError struct {
	Event string
	Code  string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Event, e.Code)
}

func marshalData(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return data, nil
}
