// Package genre generates random music genre names and derives their URL slugs.
package genre

import (
	"fmt"
	"strings"
)

var (
	// AdjectiveCounts weights how many adjectives a phrase starts with.
	AdjectiveCounts = Table{{Label: 1, Weight: 0.7}, {Label: 2, Weight: 0.25}, {Label: 3, Weight: 0.05}}
	// NounCounts weights how many nouns follow the adjectives.
	NounCounts = Table{{Label: 1, Weight: 0.8}, {Label: 2, Weight: 0.15}, {Label: 3, Weight: 0.05}}
)

// Generator composes genre phrases from a vocabulary.
type Generator struct {
	vocab   *Vocabulary
	sampler Sampler
	source  Source
}

// Option configures a Generator.
type Option func(*Generator)

// WithSource sets the random source used by Generate.
func WithSource(r Source) Option {
	return func(g *Generator) { g.source = r }
}

// WithSampler sets the sampler used for the word counts.
func WithSampler(s Sampler) Option {
	return func(g *Generator) { g.sampler = s }
}

// NewGenerator creates a generator over vocab.
// By default it samples with CDFSampler from the process-wide random source.
func NewGenerator(vocab *Vocabulary, opts ...Option) (*Generator, error) {
	if vocab.empty() {
		return nil, ErrEmptyVocabulary
	}
	g := &Generator{
		vocab:   vocab,
		sampler: CDFSampler{},
		source:  GlobalSource(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate returns a new phrase drawn from the generator's source.
func (g *Generator) Generate() (string, error) {
	if g == nil {
		return "", ErrEmptyVocabulary
	}
	return g.GenerateWith(g.source)
}

// GenerateWith returns a new phrase drawn from r.
// It is safe for concurrent use as long as r is.
func (g *Generator) GenerateWith(r Source) (string, error) {
	if g == nil || g.vocab.empty() {
		return "", ErrEmptyVocabulary
	}

	adjCount, err := g.sampler.Choose(r, AdjectiveCounts)
	if err != nil {
		return "", fmt.Errorf("choose adjective count: %w", err)
	}
	nounCount, err := g.sampler.Choose(r, NounCounts)
	if err != nil {
		return "", fmt.Errorf("choose noun count: %w", err)
	}

	adjectives := pick(r, g.vocab.adjectives, adjCount)
	nouns := pick(r, g.vocab.nouns, nounCount)

	phrase := strings.Join(adjectives, " ") + " " + strings.Join(nouns, " ")

	// Joins prefix adjectives such as "post-" to the next word. Only the first is repaired.
	return strings.Replace(phrase, "- ", "-", 1), nil
}

func pick(r Source, words []string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = words[r.IntN(len(words))]
	}
	return out
}
