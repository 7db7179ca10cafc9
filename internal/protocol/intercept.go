package protocol

import "strings"

const (
	thinkingMarker = "Thinking:"
	guessMarker    = "Guess:"
)

// FormatInterception renders an automated-agent turn body from its
// reasoning and guess: "Thinking: <joined thoughts>\n\nGuess: <guess>".
// A missing guess yields only the Thinking segment; a missing thinking list
// yields only the Guess segment.
func FormatInterception(thinking []string, guess string) string {
	var parts []string
	if joined := strings.TrimSpace(strings.Join(thinking, " ")); joined != "" {
		parts = append(parts, thinkingMarker+" "+joined)
	}
	if guess = strings.TrimSpace(guess); guess != "" {
		parts = append(parts, guessMarker+" "+guess)
	}
	return strings.Join(parts, "\n\n")
}

// ParseInterception splits an automated-agent turn body back into its
// reasoning and guess. Either segment may be absent; the corresponding
// return value is then the empty string.
func ParseInterception(content string) (thinking, guess string) {
	rest := content
	if i := strings.Index(rest, guessMarker); i >= 0 {
		guess = strings.TrimSpace(rest[i+len(guessMarker):])
		rest = rest[:i]
	}
	if i := strings.Index(rest, thinkingMarker); i >= 0 {
		thinking = strings.TrimSpace(rest[i+len(thinkingMarker):])
	}
	return thinking, guess
}
