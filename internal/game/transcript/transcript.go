// Package transcript exports finished-game conversations as YAML documents.
package transcript

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mwaltari/cipherduel/internal/game/state"
)

// Header carries the game-level metadata written ahead of the turns.
type Header struct {
	// Mode is "online" or "practice".
	Mode string `yaml:"mode"`
	// RoomID is the room the game was played in; empty for practice games.
	RoomID string `yaml:"room_id,omitempty"`
	// Rounds is the number of rounds played.
	Rounds int `yaml:"rounds"`
	// Score is the final score; positive favors the humans.
	Score int `yaml:"score"`
	// EndedAt is when the game ended.
	EndedAt time.Time `yaml:"ended_at"`
}

type document struct {
	Header Header       `yaml:"game"`
	Turns  []turnRecord `yaml:"turns"`
}

type turnRecord struct {
	Type      string    `yaml:"type"`
	Content   string    `yaml:"content"`
	PlayerID  string    `yaml:"player_id,omitempty"`
	CreatedAt time.Time `yaml:"created_at"`
}

// Export writes the game header and conversation turns to w as a single
// YAML document. Turn order is preserved.
//
// Precondition: w must be non-nil.
// Postcondition: On nil error, a complete YAML document has been written.
func Export(w io.Writer, h Header, turns []state.ConversationTurn) error {
	doc := document{Header: h, Turns: make([]turnRecord, 0, len(turns))}
	for _, t := range turns {
		doc.Turns = append(doc.Turns, turnRecord{
			Type:      string(t.Type),
			Content:   t.Content,
			PlayerID:  t.PlayerID,
			CreatedAt: t.CreatedAt,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding transcript: %w", err)
	}
	return enc.Close()
}

// WriteFile exports the transcript into dir under a timestamped filename
// and returns the path written.
//
// Precondition: dir must exist and be writable.
func WriteFile(dir string, h Header, turns []state.ConversationTurn) (string, error) {
	name := fmt.Sprintf("cipherduel-%s.yaml", h.EndedAt.Format("20060102-150405"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating transcript file: %w", err)
	}
	defer f.Close()

	if err := Export(f, h, turns); err != nil {
		return "", err
	}
	return path, nil
}
