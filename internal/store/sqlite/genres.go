package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/musicgenreator/genreator/internal/domain"
	"github.com/musicgenreator/genreator/internal/store"
)

// genreColumns is the ordered list of columns selected in genre queries.
// Must match the scan order in scanGenre.
const genreColumns = `id, slug, genre, created_at`

// scanGenre scans a sql.Row (or sql.Rows via its Scan method) into a domain.Genre.
func scanGenre(scanner interface{ Scan(dest ...any) error }) (*domain.Genre, error) {
	var (
		g         domain.Genre
		createdAt string
	)
	if err := scanner.Scan(&g.ID, &g.Slug, &g.Name, &createdAt); err != nil {
		return nil, err
	}

	var err error
	g.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &g, nil
}

// CreateGenre inserts a new genre. A taken slug returns store.ErrAlreadyExists.
func (s *Store) CreateGenre(ctx context.Context, g *domain.Genre) error {
	if g.ID == "" || g.Slug == "" {
		return store.ErrInvalidInput.WithMessage("genre id and slug are required")
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO genres (`+genreColumns+`) VALUES (?, ?, ?, ?)`,
		g.ID, g.Slug, g.Name, formatTime(g.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage(fmt.Sprintf("genre %q already exists", g.Slug)).WithCause(err)
		}
		return fmt.Errorf("insert genre: %w", err)
	}
	return nil
}

// GetGenreBySlug retrieves a genre by its slug.
func (s *Store) GetGenreBySlug(ctx context.Context, slug string) (*domain.Genre, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+genreColumns+` FROM genres WHERE slug = ?`, slug)

	g, err := scanGenre(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get genre by slug: %w", err)
	}
	return g, nil
}

// ListGenres returns a page of genres, newest first.
func (s *Store) ListGenres(ctx context.Context, limit, offset int) ([]*domain.Genre, error) {
	limit, offset = store.ClampPage(limit, offset)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+genreColumns+` FROM genres
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	defer rows.Close()

	var genres []*domain.Genre
	for rows.Next() {
		g, err := scanGenre(rows)
		if err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

// CountGenres returns the number of stored genres.
func (s *Store) CountGenres(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM genres`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count genres: %w", err)
	}
	return n, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
