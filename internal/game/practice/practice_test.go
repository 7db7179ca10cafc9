package practice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mwaltari/cipherduel/internal/game/state"
	"github.com/mwaltari/cipherduel/internal/protocol"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantThinking []string
		wantGuess    string
		wantErr      bool
	}{
		{
			name:         "full reply",
			text:         "THINKING: sounds like a fruit\nGUESS: apple",
			wantThinking: []string{"sounds like a fruit"},
			wantGuess:    "apple",
		},
		{
			name:      "missing thinking",
			text:      "GUESS: apple",
			wantGuess: "apple",
		},
		{
			name:      "missing guess falls back to last word",
			text:      "I think the word is apple.",
			wantGuess: "apple",
		},
		{
			name:         "lowercase prefixes accepted",
			text:         "thinking: hmm\nguess: Pear extra",
			wantThinking: []string{"hmm"},
			wantGuess:    "pear",
		},
		{
			name:         "multiple thinking lines",
			text:         "THINKING: first\nTHINKING: second\nGUESS: cat",
			wantThinking: []string{"first", "second"},
			wantGuess:    "cat",
		},
		{
			name:      "first guess wins",
			text:      "GUESS: apple\nGUESS: pear",
			wantGuess: "apple",
		},
		{
			name:    "empty reply",
			text:    "",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thinking, guess, err := parseReply(tt.text)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrEmptyReply)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantThinking, thinking)
			assert.Equal(t, tt.wantGuess, guess)
		})
	}
}

type fakeMessagesAPI struct {
	reply string
	err   error
}

func (f *fakeMessagesAPI) New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{
			{Type: "text", Text: f.reply},
		},
	}, nil
}

func TestInterceptor_Guess(t *testing.T) {
	api := &fakeMessagesAPI{reply: "THINKING: fruit clue\nGUESS: apple"}
	ic := NewInterceptor(api, "test-model", zaptest.NewLogger(t))

	thinking, guess, err := ic.Guess(context.Background(), 5, []string{"grows on trees"})
	require.NoError(t, err)
	assert.Equal(t, []string{"fruit clue"}, thinking)
	assert.Equal(t, "apple", guess)
}

func TestInterceptor_Guess_APIError(t *testing.T) {
	boom := errors.New("rate limited")
	ic := NewInterceptor(&fakeMessagesAPI{err: boom}, "test-model", zaptest.NewLogger(t))

	_, _, err := ic.Guess(context.Background(), 5, []string{"hint"})
	assert.ErrorIs(t, err, boom)
}

// scriptedGuesser returns canned guesses in order.
type scriptedGuesser struct {
	guesses []string
	calls   int
}

func (g *scriptedGuesser) Guess(ctx context.Context, secretLen int, hints []string) ([]string, string, error) {
	if g.calls >= len(g.guesses) {
		return nil, "", errors.New("out of scripted guesses")
	}
	guess := g.guesses[g.calls]
	g.calls++
	return []string{"scripted"}, guess, nil
}

func newTestSession(t *testing.T, guesser Guesser, maxRounds int) (*Session, *state.Store) {
	t.Helper()
	store := state.NewStore()
	sess, err := NewSession(store, guesser, []string{"apple"}, maxRounds, 2, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, sess.Start())
	return sess, store
}

func TestSession_StartActivatesStore(t *testing.T) {
	_, store := newTestSession(t, &scriptedGuesser{}, 3)

	got := store.Session()
	assert.Equal(t, state.StatusActive, got.Status)
	assert.Equal(t, 1, got.Round)
	assert.Equal(t, 3, got.MaxRounds)
	assert.Equal(t, "apple", got.SecretWord)
	assert.Equal(t, state.HolderEncryptor, got.Turn)
}

func TestSession_HintTooSimilarRejected(t *testing.T) {
	sess, store := newTestSession(t, &scriptedGuesser{}, 3)

	_, err := sess.SubmitHint(context.Background(), "apples")
	assert.ErrorIs(t, err, ErrHintTooSimilar)
	assert.Empty(t, store.Conversation())
}

func TestSession_GuessBeforeHintRejected(t *testing.T) {
	sess, _ := newTestSession(t, &scriptedGuesser{}, 3)

	_, err := sess.SubmitGuess("apple")
	assert.ErrorIs(t, err, ErrNoHintYet)
}

func TestSession_HumanWinsRound(t *testing.T) {
	sess, store := newTestSession(t, &scriptedGuesser{guesses: []string{"pear"}}, 3)

	out, err := sess.SubmitHint(context.Background(), "grows on trees")
	require.NoError(t, err)
	assert.Equal(t, "pear", out.AIGuess)
	assert.False(t, out.RoundOver)

	out, err = sess.SubmitGuess("Apple")
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.True(t, out.RoundOver)
	assert.False(t, out.GameOver)
	assert.Equal(t, 1, out.Score)
	assert.Equal(t, "apple", out.Secret)

	// Next round starts in the store.
	got := store.Session()
	assert.Equal(t, 2, got.Round)
	assert.Equal(t, state.StatusActive, got.Status)

	// Conversation order: encryptor hint, ai interception, decryptor guess.
	conv := store.Conversation()
	require.Len(t, conv, 3)
	assert.Equal(t, state.TurnEncryptor, conv[0].Type)
	assert.Equal(t, state.TurnAI, conv[1].Type)
	assert.Equal(t, state.TurnDecryptor, conv[2].Type)

	thinking, guess := protocol.ParseInterception(conv[1].Content)
	assert.Equal(t, "scripted", thinking)
	assert.Equal(t, "pear", guess)
}

func TestSession_AIWinsRound(t *testing.T) {
	sess, _ := newTestSession(t, &scriptedGuesser{guesses: []string{"apple"}}, 3)

	out, err := sess.SubmitHint(context.Background(), "grows on trees")
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.True(t, out.RoundOver)
	assert.Equal(t, -1, out.Score)
	assert.Equal(t, -1, sess.Score())
}

func TestSession_GameEndsAfterMaxRounds(t *testing.T) {
	sess, store := newTestSession(t, &scriptedGuesser{guesses: []string{"apple"}}, 1)

	out, err := sess.SubmitHint(context.Background(), "grows on trees")
	require.NoError(t, err)
	assert.True(t, out.GameOver)
	assert.True(t, sess.Finished())

	got := store.Session()
	assert.Equal(t, state.StatusEnded, got.Status)
	assert.Equal(t, -1, got.Score)
	assert.Empty(t, got.SecretWord)

	_, err = sess.SubmitHint(context.Background(), "another hint")
	assert.ErrorIs(t, err, ErrSessionOver)
	_, err = sess.SubmitGuess("apple")
	assert.ErrorIs(t, err, ErrSessionOver)
}

func TestLoadWords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.yaml")
	require.NoError(t, os.WriteFile(path, []byte("words:\n  - Apple\n  - '  pear '\n  - ''\n"), 0644))

	words, err := LoadWords(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "pear"}, words)
}

func TestLoadWords_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.yaml")
	require.NoError(t, os.WriteFile(path, []byte("words: []\n"), 0644))

	_, err := LoadWords(path)
	assert.Error(t, err)
}
