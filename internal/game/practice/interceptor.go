// Package practice implements the offline practice mode: the automated
// interception agent runs locally against the Anthropic Messages API and
// rounds are scored without a game server.
package practice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

// ErrEmptyReply is returned when the model produced no usable text.
var ErrEmptyReply = errors.New("empty interceptor reply")

// MessagesAPI is the slice of the Anthropic client the interceptor needs.
// anthropic.Client.Messages satisfies it.
type MessagesAPI interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

const systemPrompt = `You are the interception agent in a word-guessing game.
Two humans exchange hints about a secret word; you see only the hints and try
to guess the word before the humans do. Reply with exactly two lines:
THINKING: <one short line of reasoning>
GUESS: <a single lowercase word>`

// Interceptor produces guesses for the secret word from the hint transcript.
type Interceptor struct {
	api    MessagesAPI
	model  string
	logger *zap.Logger
}

// NewInterceptor creates an Interceptor backed by the given Messages API.
//
// Precondition: api, logger must be non-nil; model must be non-empty.
func NewInterceptor(api MessagesAPI, model string, logger *zap.Logger) *Interceptor {
	if api == nil {
		panic("practice.NewInterceptor: api is nil")
	}
	if model == "" {
		panic("practice.NewInterceptor: model is empty")
	}
	if logger == nil {
		panic("practice.NewInterceptor: logger is nil")
	}
	return &Interceptor{api: api, model: model, logger: logger}
}

// Guess asks the model for an interception given the hints seen so far.
// The reply is parsed tolerantly: absent THINKING or GUESS lines do not
// fail the call as long as some guess can be extracted.
//
// Precondition: secretLen > 0; hints must be non-empty.
// Postcondition: On nil error, guess is a non-empty lowercase word.
func (i *Interceptor) Guess(ctx context.Context, secretLen int, hints []string) (thinking []string, guess string, err error) {
	var b strings.Builder
	fmt.Fprintf(&b, "The secret word has %d letters. Hints so far:\n", secretLen)
	for n, h := range hints {
		fmt.Fprintf(&b, "%d. %s\n", n+1, h)
	}
	b.WriteString("What is your guess?")

	msg, err := i.api.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(i.model),
		MaxTokens: 256,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(b.String())),
		},
	})
	if err != nil {
		return nil, "", fmt.Errorf("interceptor request: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	thinking, guess, err = parseReply(text.String())
	if err != nil {
		return nil, "", err
	}
	i.logger.Debug("interceptor reply",
		zap.String("guess", guess),
		zap.Int("hints", len(hints)),
	)
	return thinking, guess, nil
}

// parseReply extracts THINKING lines and the GUESS word from a model reply.
// Missing THINKING yields empty thinking; missing GUESS falls back to the
// last word of the reply.
func parseReply(text string) (thinking []string, guess string, err error) {
	var lastWord string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(upper, "THINKING:"):
			if t := strings.TrimSpace(line[len("THINKING:"):]); t != "" {
				thinking = append(thinking, t)
			}
		case strings.HasPrefix(upper, "GUESS:") && guess == "":
			fields := strings.Fields(line[len("GUESS:"):])
			if len(fields) > 0 {
				guess = strings.ToLower(fields[0])
			}
		default:
			fields := strings.Fields(line)
			lastWord = fields[len(fields)-1]
		}
	}
	if guess == "" {
		guess = strings.ToLower(strings.Trim(lastWord, ".,!?\"'"))
	}
	if guess == "" {
		return nil, "", ErrEmptyReply
	}
	return thinking, guess, nil
}
