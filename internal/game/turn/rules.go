// Package turn provides the legality rules over the session state: pure
// predicates deciding which player intents may be emitted right now. The
// server remains authoritative on outcome; these rules exist so illegal
// actions are rejected locally instead of burning a round trip.
package turn

import "github.com/mwaltari/cipherduel/internal/game/state"

// MaySendHint reports whether a hint may be sent: the game is active, it is
// the encryptor's turn, and the caller is the encryptor.
func MaySendHint(status state.GameStatus, holder state.Holder, role state.Role) bool {
	return status == state.StatusActive &&
		holder == state.HolderEncryptor &&
		role == state.RoleEncryptor
}

// MaySubmitGuess reports whether a guess may be submitted: the game is
// active, it is the decryptor's turn, and the caller is the decryptor.
func MaySubmitGuess(status state.GameStatus, holder state.Holder, role state.Role) bool {
	return status == state.StatusActive &&
		holder == state.HolderDecryptor &&
		role == state.RoleDecryptor
}

// MayToggleReady reports whether the lobby ready flag may be toggled.
func MayToggleReady(status state.GameStatus) bool {
	return status == state.StatusWaiting
}

// ShouldStart reports whether the game-start condition holds: exactly two
// players present and all of them ready.
func ShouldStart(players []state.Player) bool {
	if len(players) != state.RoomCapacity {
		return false
	}
	for _, p := range players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// Next returns the holder that follows cur in the encryptor → ai →
// decryptor → encryptor cycle. HolderNone maps to HolderEncryptor, the
// opening move of a round.
func Next(cur state.Holder) state.Holder {
	switch cur {
	case state.HolderEncryptor:
		return state.HolderAI
	case state.HolderAI:
		return state.HolderDecryptor
	case state.HolderDecryptor:
		return state.HolderEncryptor
	default:
		return state.HolderEncryptor
	}
}
