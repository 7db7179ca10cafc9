package practice

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type wordFile struct {
	Words []string `yaml:"words"`
}

// LoadWords reads the practice secret-word list from a YAML file.
// Words are trimmed and lowercased; blanks are dropped.
//
// Postcondition: On nil error, the returned slice is non-empty.
func LoadWords(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading word list: %w", err)
	}

	var wf wordFile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parsing word list %s: %w", path, err)
	}

	words := make([]string, 0, len(wf.Words))
	for _, w := range wf.Words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list %s contains no words", path)
	}
	return words, nil
}
