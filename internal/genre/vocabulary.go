package genre

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// ErrEmptyVocabulary is returned when either word list is empty.
var ErrEmptyVocabulary = errors.New("empty vocabulary")

//go:embed words.json
var wordsJSON []byte

// Vocabulary holds the adjective and noun lists phrases are drawn from.
// It is immutable once built.
type Vocabulary struct {
	adjectives []string
	nouns      []string
}

// NewVocabulary copies the given lists into a new Vocabulary.
func NewVocabulary(adjectives, nouns []string) (*Vocabulary, error) {
	if len(adjectives) == 0 || len(nouns) == 0 {
		return nil, ErrEmptyVocabulary
	}
	return &Vocabulary{
		adjectives: append([]string(nil), adjectives...),
		nouns:      append([]string(nil), nouns...),
	}, nil
}

// ParseVocabulary decodes a {"adjectives": [...], "nouns": [...]} document.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var words struct {
		Adjectives []string `json:"adjectives"`
		Nouns      []string `json:"nouns"`
	}
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}
	return NewVocabulary(words.Adjectives, words.Nouns)
}

var (
	defaultVocabOnce sync.Once
	defaultVocab     *Vocabulary
	defaultVocabErr  error
)

// DefaultVocabulary returns the embedded word lists, parsed once per process.
func DefaultVocabulary() (*Vocabulary, error) {
	defaultVocabOnce.Do(func() {
		defaultVocab, defaultVocabErr = ParseVocabulary(wordsJSON)
	})
	return defaultVocab, defaultVocabErr
}

// Adjectives returns a copy of the adjective list.
func (v *Vocabulary) Adjectives() []string {
	return append([]string(nil), v.adjectives...)
}

// Nouns returns a copy of the noun list.
func (v *Vocabulary) Nouns() []string {
	return append([]string(nil), v.nouns...)
}

func (v *Vocabulary) empty() bool {
	return v == nil || len(v.adjectives) == 0 || len(v.nouns) == 0
}
