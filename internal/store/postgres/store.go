// Package postgres implements store.GenreStore on PostgreSQL using a pgx connection pool.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/musicgenreator/genreator/internal/domain"
	"github.com/musicgenreator/genreator/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

const genreColumns = `id, slug, genre, created_at`

// Store provides PostgreSQL-backed genre persistence.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var _ store.GenreStore = (*Store)(nil)

// Open connects to databaseURL, verifies the connection and applies the schema.
// maxConns <= 0 keeps the pgxpool default.
func Open(ctx context.Context, databaseURL string, maxConns int32, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		config.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	logger.Debug("postgres store opened",
		"host", config.ConnConfig.Host,
		"database", config.ConnConfig.Database,
		"max_conns", config.MaxConns,
	)

	return &Store{pool: pool, logger: logger}, nil
}

// Close releases every pooled connection.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func scanGenre(row pgx.Row) (*domain.Genre, error) {
	var g domain.Genre
	if err := row.Scan(&g.ID, &g.Slug, &g.Name, &g.CreatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateGenre inserts a new genre. A taken slug returns store.ErrAlreadyExists.
func (s *Store) CreateGenre(ctx context.Context, g *domain.Genre) error {
	if g.ID == "" || g.Slug == "" {
		return store.ErrInvalidInput.WithMessage("genre id and slug are required")
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO genres (id, slug, genre, created_at)
		VALUES ($1, $2, $3, COALESCE($4::timestamptz, now()))
		RETURNING created_at`,
		g.ID, g.Slug, g.Name, nullTime(g),
	).Scan(&g.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return store.ErrAlreadyExists.WithMessage(fmt.Sprintf("genre %q already exists", g.Slug)).WithCause(err)
		}
		return fmt.Errorf("insert genre: %w", err)
	}
	return nil
}

// GetGenreBySlug retrieves a genre by its slug.
func (s *Store) GetGenreBySlug(ctx context.Context, slug string) (*domain.Genre, error) {
	g, err := scanGenre(s.pool.QueryRow(ctx,
		`SELECT `+genreColumns+` FROM genres WHERE slug = $1`, slug))
	if errors.Is(err, pgx.ErrNoRows) {
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

	rows, err := s.pool.Query(ctx,
		`SELECT `+genreColumns+` FROM genres
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
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
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM genres`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count genres: %w", err)
	}
	return n, nil
}

func nullTime(g *domain.Genre) any {
	if g.CreatedAt.IsZero() {
		return nil
	}
	return g.CreatedAt
}
