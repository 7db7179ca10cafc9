package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// Inbound event names recognized by Decode. The set is closed: an
// unlisted name decodes to ErrUnknownEvent.
const (
	EventJoinRoomSuccess   = "join_room_success"
	EventRoomLeft          = "room:left"
	EventPlayerJoined      = "room:playerJoined"
	EventPlayerLeft        = "room:playerLeft"
	EventPlayerReady       = "room:playerReady"
	EventRoomList          = "room_list"
	EventLobbyPlayerJoined = "player_joined"
	EventStartGame         = "start_game"
	EventGameStarted       = "game:started"
	EventGameEnded         = "game:ended"
	EventRoundStart        = "game:roundStart"
	EventRoundEnd          = "game:roundEnd"
	EventTurnStart         = "game:turnStart"
	EventTurnEnd           = "game:turnEnd"
	EventMessage           = "game:message"
	EventMessageHistory    = "game:messageHistory"
	EventAIThinking        = "game:aiThinking"
	EventAIGuess           = "game:aiGuess"
	EventError             = "error"
)

// WirePlayer is the player shape used by room and game payloads.
type WirePlayer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Ready     bool   `json:"ready"`
	Role      string `json:"role,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

// WireRoom is one entry of the lobby room listing payload.
type WireRoom struct {
	ID          string `json:"id"`
	PlayerCount int    `json:"playerCount"`
	Capacity    int    `json:"capacity"`
}

// WireMessage is the conversation-turn shape used by message payloads.
type WireMessage struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	PlayerID  string    `json:"playerId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Scores is the two-sided score payload; the humans' side and the
// automated agent's side.
type Scores struct {
	Human int `json:"human"`
	AI    int `json:"ai"`
}

// Event is one decoded inbound server event. The variant set is closed;
// dispatchers switch exhaustively over it.
type Event interface {
	// Name returns the wire event name.
	Name() string
}

// JoinRoomSuccess confirms this client's room join.
type JoinRoomSuccess struct {
	RoomID   string       `json:"roomId"`
	Players  []WirePlayer `json:"players"`
	PlayerID string       `json:"playerId"`
}

// RoomLeft confirms this client left its room.
type RoomLeft struct{}

// PlayerJoined announces another player entering the room.
type PlayerJoined struct {
	Player WirePlayer `json:"player"`
}

// PlayerLeft announces a player leaving the room.
type PlayerLeft struct {
	PlayerID string `json:"playerId"`
}

// PlayerReady announces a ready-flag toggle.
type PlayerReady struct {
	PlayerID string `json:"playerId"`
	Ready    bool   `json:"ready"`
}

// RoomList carries the lobby room listing.
type RoomList struct {
	Rooms []WireRoom `json:"rooms"`
}

// LobbyPlayerJoined is the lobby-surface join announcement carrying the
// full roster.
type LobbyPlayerJoined struct {
	RoomID  string       `json:"roomId"`
	Player  WirePlayer   `json:"player"`
	Players []WirePlayer `json:"players"`
}

// GameStarted begins the game: server-authoritative roles and the secret
// word (omitted by the server from the decryptor's payload).
type GameStarted struct {
	Players    []WirePlayer      `json:"players"`
	Roles      map[string]string `json:"roles"`
	SecretWord string            `json:"secretWord,omitempty"`
	MaxRounds  int               `json:"maxRounds,omitempty"`
}

// GameEnded terminates the game with final scores.
type GameEnded struct {
	Scores Scores `json:"scores"`
	Winner string `json:"winner"`
}

// RoundStart opens a round; Word is present only for the encryptor.
type RoundStart struct {
	Round int    `json:"round"`
	Word  string `json:"word,omitempty"`
	Role  string `json:"role,omitempty"`
}

// RoundEnd closes a round with updated scores.
type RoundEnd struct {
	Round  int    `json:"round"`
	Scores Scores `json:"scores"`
}

// TurnStart hands the turn to a holder.
type TurnStart struct {
	Turn string `json:"turn"`
}

// TurnEnd clears the turn holder.
type TurnEnd struct{}

// Message appends one conversation turn.
type Message struct {
	Message WireMessage `json:"message"`
}

// MessageHistory replaces the conversation wholesale, used after a
// reconnect or late join.
type MessageHistory struct {
	Messages []WireMessage `json:"messages"`
}

// AIThinking streams the automated agent's reasoning.
type AIThinking struct {
	Content  string   `json:"content,omitempty"`
	Thinking []string `json:"thinking,omitempty"`
}

// AIGuess delivers the automated agent's guess with its reasoning.
type AIGuess struct {
	Thinking   []string `json:"thinking,omitempty"`
	Guess      string   `json:"guess"`
	Confidence float64  `json:"confidence,omitempty"`
}

// ServerError is the generic application-error event.
type ServerError struct {
	Message string `json:"message"`
}

func (JoinRoomSuccess) Name() string   { return EventJoinRoomSuccess }
func (RoomLeft) Name() string          { return EventRoomLeft }
func (PlayerJoined) Name() string      { return EventPlayerJoined }
func (PlayerLeft) Name() string        { return EventPlayerLeft }
func (PlayerReady) Name() string       { return EventPlayerReady }
func (RoomList) Name() string          { return EventRoomList }
func (LobbyPlayerJoined) Name() string { return EventLobbyPlayerJoined }
func (GameStarted) Name() string       { return EventGameStarted }
func (GameEnded) Name() string         { return EventGameEnded }
func (RoundStart) Name() string        { return EventRoundStart }
func (RoundEnd) Name() string          { return EventRoundEnd }
func (TurnStart) Name() string         { return EventTurnStart }
func (TurnEnd) Name() string           { return EventTurnEnd }
func (Message) Name() string           { return EventMessage }
func (MessageHistory) Name() string    { return EventMessageHistory }
func (AIThinking) Name() string        { return EventAIThinking }
func (AIGuess) Name() string           { return EventAIGuess }
func (ServerError) Name() string       { return EventError }

// Decode parses a raw wire frame into a typed inbound event.
//
// Postcondition: Returns exactly one variant of the closed Event set, or
// ErrUnknownEvent / ErrMalformedEvent.
func Decode(frame []byte) (Event, error) {
	env, err := decodeEnvelope(frame)
	if err != nil {
		return nil, err
	}

	switch env.Event {
	case EventJoinRoomSuccess:
		return decodePayload[JoinRoomSuccess](env)
	case EventRoomLeft:
		return RoomLeft{}, nil
	case EventPlayerJoined:
		return decodePayload[PlayerJoined](env)
	case EventPlayerLeft:
		return decodePayload[PlayerLeft](env)
	case EventPlayerReady:
		return decodePayload[PlayerReady](env)
	case EventRoomList:
		return decodePayload[RoomList](env)
	case EventLobbyPlayerJoined:
		return decodePayload[LobbyPlayerJoined](env)
	case EventStartGame, EventGameStarted:
		// start_game is the legacy name for the same payload.
		return decodePayload[GameStarted](env)
	case EventGameEnded:
		return decodePayload[GameEnded](env)
	case EventRoundStart:
		return decodePayload[RoundStart](env)
	case EventRoundEnd:
		return decodePayload[RoundEnd](env)
	case EventTurnStart:
		return decodePayload[TurnStart](env)
	case EventTurnEnd:
		return TurnEnd{}, nil
	case EventMessage:
		return decodePayload[Message](env)
	case EventMessageHistory:
		return decodePayload[MessageHistory](env)
	case EventAIThinking:
		return decodePayload[AIThinking](env)
	case EventAIGuess:
		return decodePayload[AIGuess](env)
	case EventError:
		return decodePayload[ServerError](env)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
}

func decodePayload[T Event](env Envelope) (Event, error) {
	var v T
	if len(env.Data) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return nil, fmt.Errorf("%w: decoding %s payload: %v", ErrMalformedEvent, env.Event, err)
	}
	return v, nil
}
