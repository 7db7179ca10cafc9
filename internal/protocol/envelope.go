// Package protocol defines the wire contract with the game server: the JSON
// event envelope, the closed set of inbound event variants, and the outbound
// command encoders. The package is a pure codec; it performs no I/O and
// holds no state.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnknownEvent marks an inbound event name outside the closed set.
	ErrUnknownEvent = errors.New("protocol: unknown event")
	// ErrMalformedEvent marks an envelope or payload that failed to decode.
	ErrMalformedEvent = errors.New("protocol: malformed event")
)

// Envelope is the transport frame: a named event with a JSON payload.
// Outbound frames additionally carry a client-generated request id so a
// server acknowledgment can be correlated.
type Envelope struct {
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data,omitempty"`
	RequestID string          `json:"requestId,omitempty"`
}

// EncodeEnvelope serializes an envelope to a wire frame.
//
// Precondition: event must be non-empty; data must be JSON-serializable.
// Postcondition: Returns the frame bytes or a wrapped marshalling error.
func EncodeEnvelope(event, requestID string, data any) ([]byte, error) {
	if event == "" {
		return nil, fmt.Errorf("%w: empty event name", ErrMalformedEvent)
	}
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshalling %s payload: %w", event, err)
		}
		raw = b
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: raw, RequestID: requestID})
	if err != nil {
		return nil, fmt.Errorf("marshalling %s envelope: %w", event, err)
	}
	return frame, nil
}

// decodeEnvelope parses a raw wire frame into an envelope.
func decodeEnvelope(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("%w: missing event name", ErrMalformedEvent)
	}
	return env, nil
}
