// Package client owns the single live transport connection to the game
// server: dialing with retry and attempt ceiling, classification of
// connection failures and disconnects into human-readable descriptors, the
// ordered inbound read pump, and the auxiliary REST surface.
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Category is the enumerated classification of a connection failure.
type Category int

const (
	// CategoryGeneric is any failure the other categories do not cover.
	CategoryGeneric Category = iota
	// CategoryNetworkUnreachable means the server address could not be reached.
	CategoryNetworkUnreachable
	// CategoryTimeout means the attempt exceeded its deadline.
	CategoryTimeout
	// CategoryCORS means the server rejected the origin.
	CategoryCORS
	// CategoryTransport means the websocket handshake itself failed.
	CategoryTransport
)

// String returns the category identifier.
func (c Category) String() string {
	switch c {
	case CategoryNetworkUnreachable:
		return "network-unreachable"
	case CategoryTimeout:
		return "timeout"
	case CategoryCORS:
		return "cors-policy"
	case CategoryTransport:
		return "transport-error"
	default:
		return "generic"
	}
}

// Message returns the human-readable descriptor for a failure of this
// category, suitable for ConnectionState.Err.
func (c Category) Message() string {
	switch c {
	case CategoryNetworkUnreachable:
		return "Cannot reach the server. Check the address and that the server is running."
	case CategoryTimeout:
		return "Connection timed out. The server may be overloaded."
	case CategoryCORS:
		return "CORS policy error. Check the server's security restrictions."
	case CategoryTransport:
		return "Transport error during connection. The server may not speak this protocol."
	default:
		return "Connection failed. Please try again."
	}
}

// Classify maps a connection-attempt error onto a Category. The string
// heuristics are best-effort: transports report failures as free-form
// messages, so this is the one place those strings are inspected.
//
// Precondition: err must be non-nil.
func Classify(err error) Category {
	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CategoryTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "network is unreachable"),
		strings.Contains(msg, "no route to host"):
		return CategoryNetworkUnreachable
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return CategoryTimeout
	case strings.Contains(msg, "cors"), strings.Contains(msg, "forbidden"):
		return CategoryCORS
	case strings.Contains(msg, "bad handshake"), strings.Contains(msg, "websocket"):
		return CategoryTransport
	default:
		return CategoryGeneric
	}
}

// Disconnect reason tokens, mirroring the server's vocabulary.
const (
	ReasonServerDisconnect = "io server disconnect"
	ReasonClientDisconnect = "io client disconnect"
	ReasonTransportClose   = "transport close"
	ReasonTransportError   = "transport error"
)

// DisconnectMessage maps a disconnect reason onto the descriptor written to
// ConnectionState.Err. Unknown reasons pass through unchanged.
func DisconnectMessage(reason string) string {
	switch reason {
	case ReasonServerDisconnect:
		return "Server disconnected. Please try reconnecting."
	case ReasonClientDisconnect:
		return "Connection closed by the client."
	case ReasonTransportClose, ReasonTransportError:
		return "Network connection was lost. Check your internet connection."
	default:
		return reason
	}
}

// TerminalRetryMessage is the descriptor set once the attempt ceiling is
// reached; auto-retry stops after it is written.
func TerminalRetryMessage(attempts int) string {
	return fmt.Sprintf("Failed to connect after %d attempts. Check the server and try again.", attempts)
}
