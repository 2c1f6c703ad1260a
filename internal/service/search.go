package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/musicgenreator/genreator/internal/domain"
	domainerrors "github.com/musicgenreator/genreator/internal/errors"
	"github.com/musicgenreator/genreator/internal/store"
)

const reindexPageSize = 100

// SearchResult is a page of genres matching a query.
type SearchResult struct {
	Query  string          `json:"query"`
	Total  uint64          `json:"total"`
	Genres []*domain.Genre `json:"genres"`
}

// Search finds stored genres by name. Hits whose genre has disappeared
// from the store are skipped and dropped from the index.
func (s *GenreService) Search(ctx context.Context, q string, limit, offset int) (*SearchResult, error) {
	if s.index == nil {
		return nil, domainerrors.Unavailable("search is not available")
	}
	limit, offset = store.ClampPage(limit, offset)

	res, err := s.index.Search(ctx, strings.TrimSpace(q), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("search genres: %w", err)
	}

	result := &SearchResult{
		Query:  res.Query,
		Total:  res.Total,
		Genres: make([]*domain.Genre, 0, len(res.Hits)),
	}
	for _, slug := range res.Slugs() {
		g, err := s.store.GetGenreBySlug(ctx, slug)
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Debug("search hit missing from store", "slug", slug)
			if err := s.index.DeleteGenre(slug); err != nil {
				s.logger.Warn("failed to drop stale search hit", "slug", slug, "error", err)
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve search hit %q: %w", slug, err)
		}
		result.Genres = append(result.Genres, g)
	}
	return result, nil
}

// Reindex rebuilds the search index from the store and returns the number
// of genres indexed.
func (s *GenreService) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, nil
	}
	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	indexed := 0
	for offset := 0; ; offset += reindexPageSize {
		if err := ctx.Err(); err != nil {
			return indexed, err
		}

		genres, err := s.store.ListGenres(ctx, reindexPageSize, offset)
		if err != nil {
			return indexed, fmt.Errorf("list genres: %w", err)
		}
		if len(genres) == 0 {
			break
		}
		if err := s.index.IndexGenres(genres); err != nil {
			return indexed, fmt.Errorf("index genres: %w", err)
		}
		indexed += len(genres)
		if len(genres) < reindexPageSize {
			break
		}
	}

	s.logger.Info("search index rebuilt", "genres", indexed)
	return indexed, nil
}

// EnsureIndex rebuilds the search index when it is empty but the store is not.
func (s *GenreService) EnsureIndex(ctx context.Context) error {
	if s.index == nil {
		return nil
	}

	indexed, err := s.index.Count()
	if err != nil {
		return fmt.Errorf("count index: %w", err)
	}
	if indexed > 0 {
		return nil
	}

	stored, err := s.store.CountGenres(ctx)
	if err != nil {
		return fmt.Errorf("count genres: %w", err)
	}
	if stored == 0 {
		return nil
	}

	_, err = s.Reindex(ctx)
	return err
}
