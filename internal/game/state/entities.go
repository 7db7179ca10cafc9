// Package state provides the process-wide session state container: the
// single source of truth for room, player, turn, conversation, and
// connectivity data. All other components read through its accessors and
// mutate through its setters.
package state

import "time"

// Role is a player's assigned game role.
type Role string

const (
	// RoleNone means no role has been assigned yet.
	RoleNone Role = ""
	// RoleEncryptor gives textual hints toward the secret word.
	RoleEncryptor Role = "encryptor"
	// RoleDecryptor submits guesses for the secret word.
	RoleDecryptor Role = "decryptor"
)

// GameStatus is the lifecycle phase of a game session. Transitions are
// one-directional: waiting → active → ended.
type GameStatus string

const (
	// StatusWaiting means the room is assembling; players may toggle ready.
	StatusWaiting GameStatus = "waiting"
	// StatusActive means a game is in progress.
	StatusActive GameStatus = "active"
	// StatusEnded is terminal; no further transitions are permitted.
	StatusEnded GameStatus = "ended"
)

// Holder identifies who currently has the exclusive right to act.
type Holder string

const (
	// HolderNone means no one holds the turn (e.g. between rounds).
	HolderNone Holder = ""
	// HolderEncryptor is the hint-giver's turn.
	HolderEncryptor Holder = "encryptor"
	// HolderAI is the automated agent's turn.
	HolderAI Holder = "ai"
	// HolderDecryptor is the guesser's turn.
	HolderDecryptor Holder = "decryptor"
)

// TurnType classifies a conversation turn by its author kind.
type TurnType string

const (
	// TurnEncryptor is a hint authored by the encryptor.
	TurnEncryptor TurnType = "encryptor"
	// TurnDecryptor is a guess authored by the decryptor.
	TurnDecryptor TurnType = "decryptor"
	// TurnAI is an automated-agent interception (thinking + guess).
	TurnAI TurnType = "ai"
)

// RoomCapacity is the fixed number of human players per room.
const RoomCapacity = 2

// Player is one human participant in the room.
type Player struct {
	// ID is the opaque player identifier assigned by the server.
	ID string
	// Name is the display name chosen at join time.
	Name string
	// Ready is the player's lobby ready flag.
	Ready bool
	// Role is the player's game role. Provisional (assigned by join order)
	// until Authoritative is set by a game-start event.
	Role Role
	// Authoritative is true once the server has confirmed Role.
	Authoritative bool
	// SessionID is the transport-session identifier, when known.
	SessionID string
}

// Room is the client's read-only projection of the server-side room.
type Room struct {
	// ID is the room identifier; empty when not in a room.
	ID string
	// Players is the current roster in join order.
	Players []Player
	// Capacity is the maximum roster size.
	Capacity int
}

// Occupancy returns the current roster size.
func (r Room) Occupancy() int { return len(r.Players) }

// RoomInfo is one entry of the lobby room listing.
type RoomInfo struct {
	ID        string
	Occupancy int
	Capacity  int
}

// ConversationTurn is one entry of the append-only game transcript.
// Turns are never reordered or mutated after creation.
type ConversationTurn struct {
	// ID is the turn identifier.
	ID string
	// Type classifies the author: encryptor, decryptor, or ai.
	Type TurnType
	// Content is the textual body of the turn.
	Content string
	// PlayerID is the origin player; empty for ai turns.
	PlayerID string
	// CreatedAt is the turn creation timestamp.
	CreatedAt time.Time
}

// GameSession aggregates the per-game scalar state.
type GameSession struct {
	// Status is the lifecycle phase.
	Status GameStatus
	// Round is the current round number, 1-based once active.
	Round int
	// MaxRounds bounds the game length.
	MaxRounds int
	// Score is the running score: positive favors the humans, negative the
	// automated agent, zero is neutral.
	Score int
	// SecretWord is populated only while Status is active; cleared on reset.
	SecretWord string
	// Turn is the current turn holder.
	Turn Holder
}

// ConnectionState tracks transport connectivity. Mutated exclusively by the
// connection manager.
type ConnectionState struct {
	// Connected reports whether a live transport exists.
	Connected bool
	// TransportID is the transport-session identifier when connected.
	TransportID string
	// Err is a human-readable descriptor of the last connectivity or
	// application error; empty when healthy.
	Err string
	// Attempts counts consecutive failed connection attempts.
	Attempts int
}
