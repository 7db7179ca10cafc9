package practice

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mwaltari/cipherduel/internal/game/guard"
	"github.com/mwaltari/cipherduel/internal/game/state"
	"github.com/mwaltari/cipherduel/internal/protocol"
)

var (
	// ErrHintTooSimilar means the hint is within the edit-distance
	// threshold of the secret word.
	ErrHintTooSimilar = errors.New("hint is too similar to the secret word")
	// ErrSessionOver means the practice game has already ended.
	ErrSessionOver = errors.New("practice session is over")
	// ErrNoHintYet means a guess was submitted before any hint this round.
	ErrNoHintYet = errors.New("give a hint before guessing")
)

// Guesser produces an interception from the hints seen so far.
// Satisfied by *Interceptor; tests substitute a scripted fake.
type Guesser interface {
	Guess(ctx context.Context, secretLen int, hints []string) (thinking []string, guess string, err error)
}

// Outcome reports what a hint or guess did to the round.
type Outcome struct {
	// AIGuess is the interceptor's guess this turn; empty on decryptor turns.
	AIGuess string
	// Correct is true when the acting side guessed the secret word.
	Correct bool
	// RoundOver is true when the round was decided.
	RoundOver bool
	// GameOver is true when the final round was decided.
	GameOver bool
	// Secret is the revealed word; populated only when RoundOver.
	Secret string
	// Score is the running score after this turn, positive favoring the human.
	Score int
}

// Session runs a local practice game: the user plays both human roles
// while the Guesser plays the interception agent. Rounds and the
// conversation flow through the same Store the online client uses.
type Session struct {
	store     *state.Store
	guesser   Guesser
	logger    *zap.Logger
	words     []string
	maxRounds int
	threshold int
	rng       *rand.Rand

	mu       sync.Mutex
	secret   string
	round    int
	hints    []string
	human    int
	ai       int
	finished bool
}

// NewSession creates a practice session.
//
// Precondition: store, guesser, logger must be non-nil; words must be
// non-empty; maxRounds >= 1.
func NewSession(store *state.Store, guesser Guesser, words []string, maxRounds, threshold int, logger *zap.Logger) (*Session, error) {
	if store == nil {
		panic("practice.NewSession: store is nil")
	}
	if guesser == nil {
		panic("practice.NewSession: guesser is nil")
	}
	if logger == nil {
		panic("practice.NewSession: logger is nil")
	}
	if len(words) == 0 {
		return nil, errors.New("practice word list is empty")
	}
	if maxRounds < 1 {
		return nil, fmt.Errorf("max rounds must be >= 1, got %d", maxRounds)
	}
	return &Session{
		store:     store,
		guesser:   guesser,
		logger:    logger,
		words:     words,
		maxRounds: maxRounds,
		threshold: threshold,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Start begins the first round.
//
// Postcondition: the Store session is active with a secret word set.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.round = 1
	s.secret = s.pickWord()
	s.hints = nil
	return s.store.SetSession(state.GameSession{
		Status:     state.StatusActive,
		Round:      s.round,
		MaxRounds:  s.maxRounds,
		SecretWord: s.secret,
		Turn:       state.HolderEncryptor,
	})
}

// SubmitHint records a guard-checked hint and runs the interceptor turn.
// When the interceptor guesses the word, the round goes to the agent.
//
// Postcondition: On nil error, the hint and the interception are appended
// to the Store conversation in order.
func (s *Session) SubmitHint(ctx context.Context, hint string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return Outcome{}, ErrSessionOver
	}
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return Outcome{}, fmt.Errorf("%w: hint is empty", protocol.ErrMalformedEvent)
	}
	if guard.TooSimilar(hint, s.secret, s.threshold) {
		return Outcome{}, ErrHintTooSimilar
	}

	s.hints = append(s.hints, hint)
	s.appendTurn(state.TurnEncryptor, hint)

	thinking, aiGuess, err := s.guesser.Guess(ctx, utf8.RuneCountInString(s.secret), s.hints)
	if err != nil {
		return Outcome{}, err
	}
	s.appendTurn(state.TurnAI, protocol.FormatInterception(thinking, aiGuess))

	out := Outcome{AIGuess: aiGuess, Score: s.human - s.ai}
	if strings.EqualFold(aiGuess, s.secret) {
		s.ai++
		out.Correct = true
		s.settleRound(&out)
	}
	return out, nil
}

// SubmitGuess records the decryptor's guess. A correct guess wins the
// round for the humans.
func (s *Session) SubmitGuess(guess string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return Outcome{}, ErrSessionOver
	}
	guess = strings.TrimSpace(guess)
	if guess == "" {
		return Outcome{}, fmt.Errorf("%w: guess is empty", protocol.ErrMalformedEvent)
	}
	if len(s.hints) == 0 {
		return Outcome{}, ErrNoHintYet
	}

	s.appendTurn(state.TurnDecryptor, guess)

	out := Outcome{Score: s.human - s.ai}
	if strings.EqualFold(guess, s.secret) {
		s.human++
		out.Correct = true
		s.settleRound(&out)
	}
	return out, nil
}

// Finished reports whether the game has ended.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Score returns the running score, positive favoring the human.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.human - s.ai
}

// settleRound closes the current round and advances or ends the game.
// Caller holds s.mu.
func (s *Session) settleRound(out *Outcome) {
	out.RoundOver = true
	out.Secret = s.secret
	out.Score = s.human - s.ai

	if s.round >= s.maxRounds {
		s.finished = true
		out.GameOver = true
		if err := s.store.SetSession(state.GameSession{
			Status:    state.StatusEnded,
			Round:     s.round,
			MaxRounds: s.maxRounds,
			Score:     s.human - s.ai,
		}); err != nil {
			s.logger.Warn("practice end transition rejected", zap.Error(err))
		}
		return
	}

	s.round++
	s.secret = s.pickWord()
	s.hints = nil
	if err := s.store.SetSession(state.GameSession{
		Status:     state.StatusActive,
		Round:      s.round,
		MaxRounds:  s.maxRounds,
		Score:      s.human - s.ai,
		SecretWord: s.secret,
		Turn:       state.HolderEncryptor,
	}); err != nil {
		s.logger.Warn("practice round transition rejected", zap.Error(err))
	}
}

func (s *Session) appendTurn(turnType state.TurnType, content string) {
	s.store.AppendTurn(state.ConversationTurn{
		ID:        uuid.NewString(),
		Type:      turnType,
		Content:   content,
		CreatedAt: time.Now(),
	})
}

func (s *Session) pickWord() string {
	return s.words[s.rng.Intn(len(s.words))]
}
