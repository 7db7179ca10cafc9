package protocol_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/mwaltari/cipherduel/internal/protocol"
)

func TestFormatInterception(t *testing.T) {
	tests := []struct {
		name     string
		thinking []string
		guess    string
		want     string
	}{
		{"both segments", []string{"x", "y"}, "apple", "Thinking: x y\n\nGuess: apple"},
		{"guess only", nil, "apple", "Guess: apple"},
		{"thinking only", []string{"hmm"}, "", "Thinking: hmm"},
		{"neither", nil, "", ""},
		{"blank thoughts collapse", []string{"", " "}, "apple", "Guess: apple"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, protocol.FormatInterception(tt.thinking, tt.guess))
		})
	}
}

func TestParseInterception(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		wantThinking string
		wantGuess    string
	}{
		{"both segments", "Thinking: x y\n\nGuess: apple", "x y", "apple"},
		{"guess missing", "Thinking: x y", "x y", ""},
		{"thinking missing", "Guess: apple", "", "apple"},
		{"empty content", "", "", ""},
		{"free text", "hello there", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thinking, guess := protocol.ParseInterception(tt.content)
			assert.Equal(t, tt.wantThinking, thinking)
			assert.Equal(t, tt.wantGuess, guess)
		})
	}
}

// TestInterception_RoundTrip verifies format → parse recovers the joined
// thinking and the guess for arbitrary word-like inputs.
func TestInterception_RoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		thinking := rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,8}`), 0, 5).Draw(rt, "thinking")
		guess := rapid.StringMatching(`[a-z]{0,8}`).Draw(rt, "guess")

		content := protocol.FormatInterception(thinking, guess)
		gotThinking, gotGuess := protocol.ParseInterception(content)

		joined := ""
		for i, th := range thinking {
			if i > 0 {
				joined += " "
			}
			joined += th
		}
		assert.Equal(rt, joined, gotThinking)
		assert.Equal(rt, guess, gotGuess)
	})
}
