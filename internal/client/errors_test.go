package client_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mwaltari/cipherduel/internal/client"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o deadline reached" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want client.Category
	}{
		{"context deadline", context.DeadlineExceeded, client.CategoryTimeout},
		{"net timeout", timeoutErr{}, client.CategoryTimeout},
		{"wrapped net timeout", fmt.Errorf("dialing: %w", timeoutErr{}), client.CategoryTimeout},
		{"connection refused", errors.New("dial tcp 127.0.0.1:3001: connect: connection refused"), client.CategoryNetworkUnreachable},
		{"unknown host", errors.New("dial tcp: lookup gameserver.local: no such host"), client.CategoryNetworkUnreachable},
		{"network unreachable", errors.New("connect: network is unreachable"), client.CategoryNetworkUnreachable},
		{"timed out text", errors.New("handshake timed out"), client.CategoryTimeout},
		{"cors rejection", errors.New("CORS origin rejected"), client.CategoryCORS},
		{"forbidden", errors.New("server returned 403 Forbidden"), client.CategoryCORS},
		{"bad handshake", errors.New("websocket: bad handshake"), client.CategoryTransport},
		{"anything else", errors.New("flux capacitor drained"), client.CategoryGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, client.Classify(tt.err))
		})
	}
}

func TestCategory_Message_Distinct(t *testing.T) {
	categories := []client.Category{
		client.CategoryGeneric,
		client.CategoryNetworkUnreachable,
		client.CategoryTimeout,
		client.CategoryCORS,
		client.CategoryTransport,
	}
	seen := map[string]client.Category{}
	for _, c := range categories {
		msg := c.Message()
		assert.NotEmpty(t, msg)
		prev, dup := seen[msg]
		assert.False(t, dup, "categories %v and %v share a message", prev, c)
		seen[msg] = c
	}
}

func TestDisconnectMessage(t *testing.T) {
	tests := []struct {
		reason string
		want   string
	}{
		{"io server disconnect", "Server disconnected. Please try reconnecting."},
		{"io client disconnect", "Connection closed by the client."},
		{"transport close", "Network connection was lost. Check your internet connection."},
		{"transport error", "Network connection was lost. Check your internet connection."},
		{"ping timeout", "ping timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			assert.Equal(t, tt.want, client.DisconnectMessage(tt.reason))
		})
	}
}

func TestTerminalRetryMessage(t *testing.T) {
	msg := client.TerminalRetryMessage(3)
	assert.Contains(t, msg, "after 3 attempts")
}

func TestWebsocketTransport_DialFailure(t *testing.T) {
	tr := client.NewWebsocketTransport(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	// No listener on this port.
	_, err := tr.Dial(ctx, "ws://127.0.0.1:1/socket")
	assert.Error(t, err)
}
