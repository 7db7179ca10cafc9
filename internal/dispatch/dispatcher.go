// Package dispatch maps the wire protocol onto the session state container:
// inbound events become state mutations, outbound player intents are
// validated locally and encoded onto the transport.
package dispatch

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mwaltari/cipherduel/internal/game/state"
	"github.com/mwaltari/cipherduel/internal/protocol"
)

// Dispatcher applies inbound server events to the store. Handlers perform
// no I/O; each one fully applies its mutations before Apply returns, so
// callers that process events in arrival order never observe a torn state.
type Dispatcher struct {
	store  *state.Store
	logger *zap.Logger
}

// NewDispatcher creates a Dispatcher.
//
// Precondition: store and logger must be non-nil.
func NewDispatcher(store *state.Store, logger *zap.Logger) *Dispatcher {
	if store == nil {
		panic("dispatch.NewDispatcher: store must not be nil")
	}
	if logger == nil {
		panic("dispatch.NewDispatcher: logger must not be nil")
	}
	return &Dispatcher{store: store, logger: logger}
}

// Apply routes one decoded event to its handler.
//
// Postcondition: Exactly one handler has run, or an error is returned for a
// variant outside the closed set.
func (d *Dispatcher) Apply(ev protocol.Event) error {
	switch e := ev.(type) {
	case protocol.JoinRoomSuccess:
		d.handleJoinSuccess(e)
	case protocol.RoomLeft:
		d.store.ResetGame()
	case protocol.PlayerJoined:
		d.handlePlayerJoined(e)
	case protocol.PlayerLeft:
		d.handlePlayerLeft(e)
	case protocol.PlayerReady:
		d.handlePlayerReady(e)
	case protocol.RoomList:
		d.handleRoomList(e)
	case protocol.LobbyPlayerJoined:
		d.handleLobbyPlayerJoined(e)
	case protocol.GameStarted:
		d.handleGameStarted(e)
	case protocol.GameEnded:
		d.handleGameEnded(e)
	case protocol.RoundStart:
		d.handleRoundStart(e)
	case protocol.RoundEnd:
		d.handleRoundEnd(e)
	case protocol.TurnStart:
		d.handleTurnStart(e)
	case protocol.TurnEnd:
		d.handleTurnEnd()
	case protocol.Message:
		d.handleMessage(e)
	case protocol.MessageHistory:
		d.handleMessageHistory(e)
	case protocol.AIThinking:
		d.handleAIThinking(e)
	case protocol.AIGuess:
		d.handleAIGuess(e)
	case protocol.ServerError:
		d.store.SetLastError(e.Message)
	default:
		return fmt.Errorf("no handler for event %T", ev)
	}
	return nil
}

func (d *Dispatcher) handleJoinSuccess(e protocol.JoinRoomSuccess) {
	d.store.SetSelfID(e.PlayerID)
	players := toPlayers(e.Players)
	assignProvisionalRoles(players)
	d.store.SetRoom(state.Room{
		ID:       e.RoomID,
		Players:  players,
		Capacity: state.RoomCapacity,
	})
	d.logger.Debug("joined room",
		zap.String("room_id", e.RoomID),
		zap.String("player_id", e.PlayerID),
		zap.Int("occupancy", len(players)),
	)
}

func (d *Dispatcher) handlePlayerJoined(e protocol.PlayerJoined) {
	room := d.store.Room()
	for _, p := range room.Players {
		if p.ID == e.Player.ID {
			return
		}
	}
	room.Players = append(room.Players, toPlayer(e.Player))
	assignProvisionalRoles(room.Players)
	d.store.SetRoom(room)
}

func (d *Dispatcher) handleLobbyPlayerJoined(e protocol.LobbyPlayerJoined) {
	players := toPlayers(e.Players)
	assignProvisionalRoles(players)
	room := d.store.Room()
	if e.RoomID != "" {
		room.ID = e.RoomID
	}
	room.Players = players
	d.store.SetRoom(room)
}

func (d *Dispatcher) handlePlayerLeft(e protocol.PlayerLeft) {
	room := d.store.Room()
	kept := room.Players[:0]
	for _, p := range room.Players {
		if p.ID != e.PlayerID {
			kept = append(kept, p)
		}
	}
	room.Players = kept
	assignProvisionalRoles(room.Players)
	d.store.SetRoom(room)
}

func (d *Dispatcher) handlePlayerReady(e protocol.PlayerReady) {
	room := d.store.Room()
	for i := range room.Players {
		if room.Players[i].ID == e.PlayerID {
			room.Players[i].Ready = e.Ready
		}
	}
	d.store.SetRoom(room)
}

func (d *Dispatcher) handleRoomList(e protocol.RoomList) {
	rooms := make([]state.RoomInfo, 0, len(e.Rooms))
	for _, r := range e.Rooms {
		capacity := r.Capacity
		if capacity == 0 {
			capacity = state.RoomCapacity
		}
		rooms = append(rooms, state.RoomInfo{ID: r.ID, Occupancy: r.PlayerCount, Capacity: capacity})
	}
	d.store.SetRoomList(rooms)
}

func (d *Dispatcher) handleGameStarted(e protocol.GameStarted) {
	room := d.store.Room()
	if len(e.Players) > 0 {
		room.Players = toPlayers(e.Players)
	}
	// The server's role mapping overwrites any provisional assignment.
	for i := range room.Players {
		if r, ok := e.Roles[room.Players[i].ID]; ok {
			room.Players[i].Role = state.Role(r)
		}
		room.Players[i].Authoritative = true
	}
	d.store.SetRoom(room)

	sess := d.store.Session()
	sess.Status = state.StatusActive
	sess.SecretWord = e.SecretWord
	if e.MaxRounds > 0 {
		sess.MaxRounds = e.MaxRounds
	}
	if err := d.store.SetSession(sess); err != nil {
		d.logger.Warn("game start ignored", zap.Error(err))
		return
	}
	d.logger.Info("game started",
		zap.String("room_id", room.ID),
		zap.Int("max_rounds", sess.MaxRounds),
	)
}

func (d *Dispatcher) handleGameEnded(e protocol.GameEnded) {
	sess := d.store.Session()
	sess.Status = state.StatusEnded
	sess.Score = e.Scores.Human - e.Scores.AI
	sess.SecretWord = ""
	sess.Turn = state.HolderNone
	if err := d.store.SetSession(sess); err != nil {
		d.logger.Warn("game end ignored", zap.Error(err))
		return
	}
	d.logger.Info("game ended",
		zap.Int("score", sess.Score),
		zap.String("winner", e.Winner),
	)
}

func (d *Dispatcher) handleRoundStart(e protocol.RoundStart) {
	sess := d.store.Session()
	sess.Round = e.Round
	if e.Word != "" {
		sess.SecretWord = e.Word
	}
	if err := d.store.SetSession(sess); err != nil {
		d.logger.Warn("round start ignored", zap.Error(err))
	}
}

func (d *Dispatcher) handleRoundEnd(e protocol.RoundEnd) {
	sess := d.store.Session()
	sess.Score = e.Scores.Human - e.Scores.AI
	sess.Turn = state.HolderNone
	if err := d.store.SetSession(sess); err != nil {
		d.logger.Warn("round end ignored", zap.Error(err))
	}
}

func (d *Dispatcher) handleTurnStart(e protocol.TurnStart) {
	sess := d.store.Session()
	switch e.Turn {
	case "encryptor":
		sess.Turn = state.HolderEncryptor
	case "ai":
		sess.Turn = state.HolderAI
	case "decryptor":
		sess.Turn = state.HolderDecryptor
	default:
		d.logger.Warn("unknown turn holder", zap.String("turn", e.Turn))
		sess.Turn = state.HolderNone
	}
	if err := d.store.SetSession(sess); err != nil {
		d.logger.Warn("turn start ignored", zap.Error(err))
	}
}

func (d *Dispatcher) handleTurnEnd() {
	sess := d.store.Session()
	sess.Turn = state.HolderNone
	if err := d.store.SetSession(sess); err != nil {
		d.logger.Warn("turn end ignored", zap.Error(err))
	}
}

func (d *Dispatcher) handleMessage(e protocol.Message) {
	d.store.AppendTurn(toTurn(e.Message))
}

func (d *Dispatcher) handleMessageHistory(e protocol.MessageHistory) {
	turns := make([]state.ConversationTurn, 0, len(e.Messages))
	for _, m := range e.Messages {
		turns = append(turns, toTurn(m))
	}
	d.store.ReplaceConversation(turns)
}

func (d *Dispatcher) handleAIThinking(e protocol.AIThinking) {
	thinking := e.Thinking
	if len(thinking) == 0 && e.Content != "" {
		thinking = []string{e.Content}
	}
	d.appendAITurn(protocol.FormatInterception(thinking, ""))
}

func (d *Dispatcher) handleAIGuess(e protocol.AIGuess) {
	d.appendAITurn(protocol.FormatInterception(e.Thinking, e.Guess))
}

func (d *Dispatcher) appendAITurn(content string) {
	d.store.AppendTurn(state.ConversationTurn{
		ID:        uuid.NewString(),
		Type:      state.TurnAI,
		Content:   content,
		CreatedAt: time.Now(),
	})
}

// assignProvisionalRoles fills roles by join order (first joiner encryptor)
// for players whose role is not yet server-authoritative. Provisional roles
// are UI guidance only; the server's game-start mapping overwrites them.
func assignProvisionalRoles(players []state.Player) {
	for i := range players {
		if players[i].Authoritative {
			continue
		}
		if i == 0 {
			players[i].Role = state.RoleEncryptor
		} else {
			players[i].Role = state.RoleDecryptor
		}
	}
}

func toPlayers(ws []protocol.WirePlayer) []state.Player {
	out := make([]state.Player, 0, len(ws))
	for _, w := range ws {
		out = append(out, toPlayer(w))
	}
	return out
}

func toPlayer(w protocol.WirePlayer) state.Player {
	return state.Player{
		ID:        w.ID,
		Name:      w.Name,
		Ready:     w.Ready,
		Role:      state.Role(w.Role),
		SessionID: w.SessionID,
	}
}

func toTurn(m protocol.WireMessage) state.ConversationTurn {
	id := m.ID
	if id == "" {
		id = uuid.NewString()
	}
	return state.ConversationTurn{
		ID:        id,
		Type:      state.TurnType(m.Type),
		Content:   m.Content,
		PlayerID:  m.PlayerID,
		CreatedAt: m.Timestamp,
	}
}
