// Package id generates prefixed record identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// GenrePrefix prefixes genre record IDs.
const GenrePrefix = "genre"

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "genre-V1StGXR8_Z5jdHi6B-myT").
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// NewGenreID returns a fresh genre record ID.
func NewGenreID() (string, error) {
	return Generate(GenrePrefix)
}
