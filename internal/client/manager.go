package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mwaltari/cipherduel/internal/dispatch"
	"github.com/mwaltari/cipherduel/internal/game/state"
	"github.com/mwaltari/cipherduel/internal/protocol"
)

// ErrNotConnected is returned by Send when no live transport exists.
var ErrNotConnected = errors.New("client: not connected")

// Config holds the connection manager's transport policy.
type Config struct {
	// URL is the websocket endpoint.
	URL string
	// Reconnection enables automatic reconnects after a transport loss.
	Reconnection bool
	// MaxAttempts is the consecutive-failure ceiling before retrying stops.
	MaxAttempts int
	// RetryDelay is the pause between consecutive attempts.
	RetryDelay time.Duration
	// ConnectTimeout bounds each individual dial.
	ConnectTimeout time.Duration
}

// Manager owns the one transport connection. It reports every connectivity
// transition into the state store and feeds inbound frames, in arrival
// order, to the dispatcher. All methods are safe for concurrent use.
type Manager struct {
	cfg        Config
	transport  Transport
	store      *state.Store
	dispatcher *dispatch.Dispatcher
	logger     *zap.Logger

	mu         sync.Mutex
	conn       Conn
	connecting bool
	closing    bool
	stopCh     chan struct{}
	pumpDone   sync.WaitGroup
}

// NewManager creates a connection Manager.
//
// Precondition: transport, store, dispatcher, and logger must be non-nil;
// cfg.URL must be non-empty; cfg.MaxAttempts must be >= 1.
func NewManager(cfg Config, transport Transport, store *state.Store, dispatcher *dispatch.Dispatcher, logger *zap.Logger) *Manager {
	if transport == nil {
		panic("client.NewManager: transport must not be nil")
	}
	if store == nil {
		panic("client.NewManager: store must not be nil")
	}
	if dispatcher == nil {
		panic("client.NewManager: dispatcher must not be nil")
	}
	if logger == nil {
		panic("client.NewManager: logger must not be nil")
	}
	return &Manager{
		cfg:        cfg,
		transport:  transport,
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Connect ensures exactly one live transport exists. Calls while connected,
// or while an attempt is already pending, are no-ops. On failure the attempt
// is retried up to the configured ceiling; each failure writes a
// category-specific descriptor into the connection state.
//
// Postcondition: Returns nil once connected, or the terminal error after the
// attempt ceiling is reached or the manager is torn down mid-retry.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.conn != nil || m.connecting {
		m.mu.Unlock()
		return nil
	}
	m.connecting = true
	m.closing = false
	if m.stopCh == nil {
		m.stopCh = make(chan struct{})
	}
	stopCh := m.stopCh
	m.mu.Unlock()

	err := m.connectLoop(ctx, stopCh)

	m.mu.Lock()
	m.connecting = false
	m.mu.Unlock()
	return err
}

func (m *Manager) connectLoop(ctx context.Context, stopCh chan struct{}) error {
	attempts := m.store.Connection().Attempts
	if attempts >= m.cfg.MaxAttempts {
		// A previous cycle hit the ceiling; this call is a fresh user-initiated retry.
		attempts = 0
	}

	for {
		dialCtx, cancel := context.WithTimeout(ctx, m.cfg.ConnectTimeout)
		conn, err := m.transport.Dial(dialCtx, m.cfg.URL)
		cancel()

		if err == nil {
			m.adopt(conn, stopCh)
			return nil
		}

		attempts++
		category := Classify(err)
		m.logger.Warn("connection attempt failed",
			zap.Int("attempt", attempts),
			zap.String("category", category.String()),
			zap.Error(err),
		)

		if attempts >= m.cfg.MaxAttempts {
			msg := TerminalRetryMessage(attempts)
			m.store.SetConnection(state.ConnectionState{Err: msg, Attempts: attempts})
			return fmt.Errorf("client: %s: %w", msg, err)
		}
		m.store.SetConnection(state.ConnectionState{Err: category.Message(), Attempts: attempts})

		select {
		case <-time.After(m.cfg.RetryDelay):
		case <-stopCh:
			return errors.New("client: connect abandoned by teardown")
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// adopt installs a freshly dialed connection and starts its read pump.
// A dial that lands after teardown began is closed instead of installed.
func (m *Manager) adopt(conn Conn, stopCh chan struct{}) {
	m.mu.Lock()
	if m.closing {
		m.mu.Unlock()
		_ = conn.Close()
		return
	}
	m.conn = conn
	m.mu.Unlock()

	m.store.SetConnection(state.ConnectionState{
		Connected:   true,
		TransportID: conn.ID(),
	})
	m.logger.Info("connected", zap.String("transport_id", conn.ID()))

	m.pumpDone.Add(1)
	go func() {
		defer m.pumpDone.Done()
		m.readPump(conn, stopCh)
	}()
}

// readPump reads frames until the connection dies. It is the only goroutine
// applying inbound events, which preserves arrival order: an event is fully
// applied before the next frame is read.
func (m *Manager) readPump(conn Conn, stopCh chan struct{}) {
	for {
		frame, err := conn.ReadFrame()
		if err != nil {
			m.handleDisconnect(conn, err, stopCh)
			return
		}

		ev, decodeErr := protocol.Decode(frame)
		if decodeErr != nil {
			m.logger.Warn("dropping undecodable frame", zap.Error(decodeErr))
			continue
		}
		if applyErr := m.dispatcher.Apply(ev); applyErr != nil {
			m.logger.Warn("event not applied",
				zap.String("event", ev.Name()),
				zap.Error(applyErr),
			)
		}
	}
}

func (m *Manager) handleDisconnect(conn Conn, err error, stopCh chan struct{}) {
	m.mu.Lock()
	clientInitiated := m.closing
	if m.conn == conn {
		m.conn = nil
	}
	m.mu.Unlock()

	reason := disconnectReason(err, clientInitiated)
	msg := DisconnectMessage(reason)
	m.store.SetConnection(state.ConnectionState{Err: msg})
	m.logger.Info("disconnected",
		zap.String("reason", reason),
		zap.Bool("client_initiated", clientInitiated),
	)

	if clientInitiated || !m.cfg.Reconnection {
		return
	}
	select {
	case <-stopCh:
		return
	default:
	}

	go func() {
		if rerr := m.Connect(context.Background()); rerr != nil {
			m.logger.Warn("auto-reconnect gave up", zap.Error(rerr))
		}
	}()
}

// Send writes one frame to the live connection, completing when the write
// has been handed to the transport. Implements dispatch.Sender.
//
// Postcondition: Returns ErrNotConnected when no live transport exists.
func (m *Manager) Send(ctx context.Context, frame []byte) error {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	return conn.WriteFrame(ctx, frame)
}

// Connected reports whether a live transport exists.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn != nil
}

// Disconnect tears down the transport and resets the session state
// container to its initial values. Pending retry timers are abandoned.
// Disconnect is idempotent.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.closing = true
	conn := m.conn
	m.conn = nil
	if m.stopCh != nil {
		close(m.stopCh)
		m.stopCh = nil
	}
	m.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	m.pumpDone.Wait()

	m.store.Reset()
	m.logger.Info("connection torn down")
}
