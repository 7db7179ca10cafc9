package protocol

import (
	"fmt"
	"strings"
)

// Outbound command names.
const (
	CommandJoinRoom  = "join_room"
	CommandLeaveRoom = "room:leave"
	CommandReady     = "room:ready"
	CommandListRooms = "list_rooms"
	CommandMessage   = "game:message"
	CommandGuess     = "game:guess"
	CommandWord      = "game:word"
	CommandStartGame = "start_game"
)

type joinRoomPayload struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

type readyPayload struct {
	Ready bool `json:"ready"`
}

type messagePayload struct {
	Content string `json:"content"`
}

type guessPayload struct {
	Guess string `json:"guess"`
}

type wordPayload struct {
	Word string `json:"word"`
}

type startGamePayload struct {
	RoomID string `json:"roomId"`
}

// EncodeJoinRoom builds a join_room frame.
//
// Precondition: roomID and playerName must be non-blank.
func EncodeJoinRoom(requestID, roomID, playerName string) ([]byte, error) {
	if strings.TrimSpace(roomID) == "" {
		return nil, fmt.Errorf("%w: join_room requires a room id", ErrMalformedEvent)
	}
	if strings.TrimSpace(playerName) == "" {
		return nil, fmt.Errorf("%w: join_room requires a player name", ErrMalformedEvent)
	}
	return EncodeEnvelope(CommandJoinRoom, requestID, joinRoomPayload{RoomID: roomID, PlayerName: playerName})
}

// EncodeLeaveRoom builds a room:leave frame. The command carries no payload;
// the server resolves the room from the transport session.
func EncodeLeaveRoom(requestID string) ([]byte, error) {
	return EncodeEnvelope(CommandLeaveRoom, requestID, nil)
}

// EncodeReady builds a room:ready frame.
func EncodeReady(requestID string, ready bool) ([]byte, error) {
	return EncodeEnvelope(CommandReady, requestID, readyPayload{Ready: ready})
}

// EncodeListRooms builds a list_rooms frame.
func EncodeListRooms(requestID string) ([]byte, error) {
	return EncodeEnvelope(CommandListRooms, requestID, nil)
}

// EncodeMessage builds a game:message frame carrying a hint.
//
// Precondition: content must be non-blank.
func EncodeMessage(requestID, content string) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: game:message requires content", ErrMalformedEvent)
	}
	return EncodeEnvelope(CommandMessage, requestID, messagePayload{Content: content})
}

// EncodeGuess builds a game:guess frame.
//
// Precondition: guess must be non-blank.
func EncodeGuess(requestID, guess string) ([]byte, error) {
	if strings.TrimSpace(guess) == "" {
		return nil, fmt.Errorf("%w: game:guess requires a guess", ErrMalformedEvent)
	}
	return EncodeEnvelope(CommandGuess, requestID, guessPayload{Guess: guess})
}

// EncodeWord builds a game:word frame proposing a secret word.
//
// Precondition: word must be non-blank.
func EncodeWord(requestID, word string) ([]byte, error) {
	if strings.TrimSpace(word) == "" {
		return nil, fmt.Errorf("%w: game:word requires a word", ErrMalformedEvent)
	}
	return EncodeEnvelope(CommandWord, requestID, wordPayload{Word: word})
}

// EncodeStartGame builds a start_game frame.
//
// Precondition: roomID must be non-blank.
func EncodeStartGame(requestID, roomID string) ([]byte, error) {
	if strings.TrimSpace(roomID) == "" {
		return nil, fmt.Errorf("%w: start_game requires a room id", ErrMalformedEvent)
	}
	return EncodeEnvelope(CommandStartGame, requestID, startGamePayload{RoomID: roomID})
}
