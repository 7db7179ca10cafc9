package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Conn is one live transport connection carrying wire frames.
type Conn interface {
	// ID returns the transport-session identifier.
	ID() string
	// ReadFrame blocks until the next inbound frame or a read error.
	ReadFrame() ([]byte, error)
	// WriteFrame writes one outbound frame, honoring the context deadline.
	WriteFrame(ctx context.Context, frame []byte) error
	// Close tears the connection down. Close is idempotent.
	Close() error
}

// Transport dials connections. The production implementation speaks
// websocket; tests substitute a scripted fake.
type Transport interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// WebsocketTransport dials websocket connections with a handshake timeout.
type WebsocketTransport struct {
	dialer *websocket.Dialer
}

// NewWebsocketTransport creates a WebsocketTransport.
//
// Precondition: handshakeTimeout must be > 0.
func NewWebsocketTransport(handshakeTimeout time.Duration) *WebsocketTransport {
	return &WebsocketTransport{
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
	}
}

// Dial opens a websocket connection to url.
//
// Postcondition: Returns a Conn with a fresh transport-session identifier,
// or a wrapped dial error.
func (t *WebsocketTransport) Dial(ctx context.Context, url string) (Conn, error) {
	ws, resp, err := t.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	id := ""
	if resp != nil {
		id = resp.Header.Get("X-Session-Id")
	}
	if id == "" {
		id = uuid.NewString()
	}
	return &wsConn{id: id, ws: ws}, nil
}

// wsConn adapts a gorilla websocket connection to the Conn interface.
// Gorilla connections allow one concurrent writer; writeMu enforces that.
type wsConn struct {
	id      string
	ws      *websocket.Conn
	writeMu sync.Mutex

	closeMu sync.Mutex
	closed  bool
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) ReadFrame() ([]byte, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *wsConn) WriteFrame(ctx context.Context, frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline := time.Time{}
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("setting write deadline: %w", err)
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

func (c *wsConn) Close() error {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	// Best-effort close handshake before dropping the TCP connection.
	c.writeMu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()

	return c.ws.Close()
}

// disconnectReason derives the reason token for a read-pump error.
// clientInitiated is true when this client tore the connection down itself.
func disconnectReason(err error, clientInitiated bool) string {
	if clientInitiated {
		return ReasonClientDisconnect
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseServiceRestart) {
		return ReasonServerDisconnect
	}
	if websocket.IsUnexpectedCloseError(err) {
		return ReasonTransportError
	}
	if err != nil {
		return ReasonTransportClose
	}
	return ""
}
