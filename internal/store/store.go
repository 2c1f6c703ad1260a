// Package store defines the persistence interface for generated genres.
package store

import (
	"context"

	"github.com/musicgenreator/genreator/internal/domain"
)

// Default and maximum page sizes for ListGenres.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// GenreStore persists genres keyed by slug.
type GenreStore interface {
	// GetGenreBySlug returns ErrNotFound when no genre has the slug.
	GetGenreBySlug(ctx context.Context, slug string) (*domain.Genre, error)
	// CreateGenre returns ErrAlreadyExists when the slug is taken.
	CreateGenre(ctx context.Context, g *domain.Genre) error
	// ListGenres returns genres newest first.
	ListGenres(ctx context.Context, limit, offset int) ([]*domain.Genre, error)
	CountGenres(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
	Close() error
}

// ClampPage normalizes a limit and offset for ListGenres.
func ClampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
