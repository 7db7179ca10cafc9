// Package testutil provides shared test fakes for the transport layer.
package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/mwaltari/cipherduel/internal/client"
)

// ErrConnClosed is returned by FakeConn reads and writes after Close.
var ErrConnClosed = errors.New("testutil: conn closed")

// FakeConn is an in-memory Conn: tests script inbound frames through
// Deliver/Fail and inspect outbound frames through Sent.
type FakeConn struct {
	TransportID string

	inbound chan frameOrErr

	mu     sync.Mutex
	sent   [][]byte
	closed bool
}

type frameOrErr struct {
	frame []byte
	err   error
}

// NewFakeConn creates a FakeConn with the given transport id.
func NewFakeConn(id string) *FakeConn {
	return &FakeConn{
		TransportID: id,
		inbound:     make(chan frameOrErr, 64),
	}
}

// ID returns the transport id.
func (c *FakeConn) ID() string { return c.TransportID }

// Deliver queues one inbound frame for ReadFrame.
func (c *FakeConn) Deliver(frame []byte) {
	c.inbound <- frameOrErr{frame: frame}
}

// Fail queues a read error, ending the read pump with err.
func (c *FakeConn) Fail(err error) {
	c.inbound <- frameOrErr{err: err}
}

// ReadFrame returns the next scripted frame or error.
func (c *FakeConn) ReadFrame() ([]byte, error) {
	fe, ok := <-c.inbound
	if !ok {
		return nil, ErrConnClosed
	}
	if fe.err != nil {
		return nil, fe.err
	}
	return fe.frame, nil
}

// WriteFrame records the outbound frame.
func (c *FakeConn) WriteFrame(_ context.Context, frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnClosed
	}
	cp := make([]byte, len(frame))
	copy(cp, frame)
	c.sent = append(c.sent, cp)
	return nil
}

// Sent returns a copy of all frames written so far.
func (c *FakeConn) Sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.sent))
	copy(out, c.sent)
	return out
}

// Close unblocks any pending read. Close is idempotent.
func (c *FakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.inbound)
	}
	return nil
}

// ScriptedTransport returns the scripted dial outcomes in order; once the
// script is exhausted, every further dial fails.
type ScriptedTransport struct {
	mu       sync.Mutex
	outcomes []DialOutcome
	dials    int
}

// DialOutcome is one scripted Dial result.
type DialOutcome struct {
	Conn *FakeConn
	Err  error
}

// NewScriptedTransport creates a ScriptedTransport.
func NewScriptedTransport(outcomes ...DialOutcome) *ScriptedTransport {
	return &ScriptedTransport{outcomes: outcomes}
}

// Dial pops the next scripted outcome.
func (t *ScriptedTransport) Dial(_ context.Context, _ string) (client.Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dials++
	if len(t.outcomes) == 0 {
		return nil, errors.New("testutil: dial script exhausted")
	}
	next := t.outcomes[0]
	t.outcomes = t.outcomes[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	return next.Conn, nil
}

// Dials returns how many times Dial was invoked.
func (t *ScriptedTransport) Dials() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dials
}
