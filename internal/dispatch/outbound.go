package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mwaltari/cipherduel/internal/game/guard"
	"github.com/mwaltari/cipherduel/internal/game/state"
	"github.com/mwaltari/cipherduel/internal/game/turn"
	"github.com/mwaltari/cipherduel/internal/protocol"
)

// Local refusal errors. An intent rejected with one of these never reaches
// the transport.
var (
	ErrNotInRoom       = errors.New("dispatch: no known room id")
	ErrNotReadyPhase   = errors.New("dispatch: ready may only be toggled while waiting")
	ErrNotYourTurn     = errors.New("dispatch: action is not legal for this turn and role")
	ErrStartConditions = errors.New("dispatch: game start requires two ready players")
	ErrHintTooSimilar  = errors.New("dispatch: hint is too similar to the secret word")
)

// Sender writes one encoded frame to the transport and reports the
// completion of the emit, including the server acknowledgment when the
// transport provides one.
type Sender interface {
	Send(ctx context.Context, frame []byte) error
}

// Outbound validates player intents against the current state and encodes
// them onto the transport. Illegal intents are refused locally: the state
// machine is the authority on legality, the server on outcome.
type Outbound struct {
	store          *state.Store
	sender         Sender
	guardThreshold int
	logger         *zap.Logger
}

// NewOutbound creates an Outbound command builder.
//
// Precondition: store, sender, and logger must be non-nil; guardThreshold
// must be >= 0.
func NewOutbound(store *state.Store, sender Sender, guardThreshold int, logger *zap.Logger) *Outbound {
	if store == nil {
		panic("dispatch.NewOutbound: store must not be nil")
	}
	if sender == nil {
		panic("dispatch.NewOutbound: sender must not be nil")
	}
	if logger == nil {
		panic("dispatch.NewOutbound: logger must not be nil")
	}
	return &Outbound{
		store:          store,
		sender:         sender,
		guardThreshold: guardThreshold,
		logger:         logger,
	}
}

// JoinRoom emits a join_room command.
func (o *Outbound) JoinRoom(ctx context.Context, roomID, playerName string) error {
	frame, err := protocol.EncodeJoinRoom(uuid.NewString(), roomID, playerName)
	if err != nil {
		return err
	}
	return o.send(ctx, protocol.CommandJoinRoom, frame)
}

// LeaveRoom emits a room:leave command.
//
// Precondition: the store must hold a known room id.
func (o *Outbound) LeaveRoom(ctx context.Context) error {
	if o.store.Room().ID == "" {
		return ErrNotInRoom
	}
	frame, err := protocol.EncodeLeaveRoom(uuid.NewString())
	if err != nil {
		return err
	}
	return o.send(ctx, protocol.CommandLeaveRoom, frame)
}

// SetReady emits a room:ready command.
//
// Precondition: the client is in a room and the game has not started.
func (o *Outbound) SetReady(ctx context.Context, ready bool) error {
	if o.store.Room().ID == "" {
		return ErrNotInRoom
	}
	if !turn.MayToggleReady(o.store.Session().Status) {
		return ErrNotReadyPhase
	}
	frame, err := protocol.EncodeReady(uuid.NewString(), ready)
	if err != nil {
		return err
	}
	return o.send(ctx, protocol.CommandReady, frame)
}

// ListRooms emits a list_rooms command.
func (o *Outbound) ListRooms(ctx context.Context) error {
	frame, err := protocol.EncodeListRooms(uuid.NewString())
	if err != nil {
		return err
	}
	return o.send(ctx, protocol.CommandListRooms, frame)
}

// SendHint emits a game:message command carrying a hint.
//
// Precondition: the game is active, it is the encryptor's turn, the caller
// is the encryptor, and the hint passes the similarity guard.
func (o *Outbound) SendHint(ctx context.Context, content string) error {
	sess := o.store.Session()
	if !turn.MaySendHint(sess.Status, sess.Turn, o.store.SelfRole()) {
		return ErrNotYourTurn
	}
	if guard.TooSimilar(content, sess.SecretWord, o.guardThreshold) {
		return ErrHintTooSimilar
	}
	frame, err := protocol.EncodeMessage(uuid.NewString(), content)
	if err != nil {
		return err
	}
	return o.send(ctx, protocol.CommandMessage, frame)
}

// SubmitGuess emits a game:guess command.
//
// Precondition: the game is active, it is the decryptor's turn, and the
// caller is the decryptor.
func (o *Outbound) SubmitGuess(ctx context.Context, guessWord string) error {
	sess := o.store.Session()
	if !turn.MaySubmitGuess(sess.Status, sess.Turn, o.store.SelfRole()) {
		return ErrNotYourTurn
	}
	frame, err := protocol.EncodeGuess(uuid.NewString(), guessWord)
	if err != nil {
		return err
	}
	return o.send(ctx, protocol.CommandGuess, frame)
}

// ProposeWord emits a game:word command proposing the round's secret word.
//
// Precondition: the game is active and the caller is the encryptor.
func (o *Outbound) ProposeWord(ctx context.Context, word string) error {
	if o.store.Session().Status != state.StatusActive || o.store.SelfRole() != state.RoleEncryptor {
		return ErrNotYourTurn
	}
	frame, err := protocol.EncodeWord(uuid.NewString(), word)
	if err != nil {
		return err
	}
	return o.send(ctx, protocol.CommandWord, frame)
}

// StartGame emits a start_game command.
//
// Precondition: the store holds a known room id and the start condition
// (two players, all ready) is met.
func (o *Outbound) StartGame(ctx context.Context) error {
	room := o.store.Room()
	if room.ID == "" {
		return ErrNotInRoom
	}
	if !turn.ShouldStart(room.Players) {
		return ErrStartConditions
	}
	frame, err := protocol.EncodeStartGame(uuid.NewString(), room.ID)
	if err != nil {
		return err
	}
	return o.send(ctx, protocol.CommandStartGame, frame)
}

func (o *Outbound) send(ctx context.Context, command string, frame []byte) error {
	if err := o.sender.Send(ctx, frame); err != nil {
		return fmt.Errorf("sending %s: %w", command, err)
	}
	o.logger.Debug("command sent", zap.String("command", command))
	return nil
}
