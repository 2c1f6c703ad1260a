package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/musicgenreator/genreator/internal/domain"
	domainerrors "github.com/musicgenreator/genreator/internal/errors"
	"github.com/musicgenreator/genreator/internal/genre"
	"github.com/musicgenreator/genreator/internal/id"
	"github.com/musicgenreator/genreator/internal/screenshot"
	"github.com/musicgenreator/genreator/internal/search"
	"github.com/musicgenreator/genreator/internal/store"
	"github.com/musicgenreator/genreator/internal/validation"
)

// PhraseGenerator produces genre phrases.
type PhraseGenerator interface {
	Generate() (string, error)
}

// Screenshotter captures social cards for genre pages.
type Screenshotter interface {
	Enabled() bool
	ImageURL(slug string) string
	Exists(ctx context.Context, slug string) (bool, error)
	Capture(ctx context.Context, slug string) (*screenshot.CaptureResult, error)
}

// GenreIndex is the full-text index kept in sync with the store.
type GenreIndex interface {
	IndexGenre(g *domain.Genre) error
	IndexGenres(genres []*domain.Genre) error
	Search(ctx context.Context, q string, limit, offset int) (*search.Result, error)
	DeleteGenre(slug string) error
	Count() (uint64, error)
	Rebuild() error
}

// GenerateResult is a generated genre and whether it was stored for the first time.
type GenerateResult struct {
	Genre   *domain.Genre
	Created bool
}

// GenreService orchestrates genre generation, lookup and the side effects of
// storing a new genre (search indexing and screenshot capture).
type GenreService struct {
	store     store.GenreStore
	generator PhraseGenerator
	index     GenreIndex
	shots     Screenshotter
	logger    *slog.Logger
	validator *validation.Validator

	// Background screenshot jobs.
	bgCtx    context.Context
	bgCancel context.CancelFunc
	mu       sync.Mutex // guards closed and wg.Add
	closed   bool
	wg       sync.WaitGroup
	pending  sync.Map // slug -> struct{}
}

// NewGenreService creates a new genre service. index and shots may be nil.
func NewGenreService(
	s store.GenreStore,
	generator PhraseGenerator,
	index GenreIndex,
	shots Screenshotter,
	logger *slog.Logger,
) *GenreService {
	bgCtx, cancel := context.WithCancel(context.Background())
	return &GenreService{
		store:     s,
		generator: generator,
		index:     index,
		shots:     shots,
		logger:    logger,
		validator: validation.New(),
		bgCtx:     bgCtx,
		bgCancel:  cancel,
	}
}

// Generate creates a new phrase and returns the genre stored under its slug,
// storing it first if the slug is new.
func (s *GenreService) Generate(ctx context.Context) (*GenerateResult, error) {
	phrase, err := s.generator.Generate()
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to generate genre")
	}

	slug := genre.ToSlug(phrase)
	if err := s.validator.Var("slug", slug, "required,slug"); err != nil {
		return nil, domainerrors.Internal(fmt.Sprintf("generated phrase %q has no usable slug", phrase))
	}

	existing, err := s.store.GetGenreBySlug(ctx, slug)
	switch {
	case err == nil:
		s.EnsureScreenshot(slug)
		return &GenerateResult{Genre: existing}, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("look up genre %q: %w", slug, err)
	}

	genreID, err := id.NewGenreID()
	if err != nil {
		return nil, err
	}

	g := &domain.Genre{
		ID:        genreID,
		Name:      phrase,
		Slug:      slug,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateGenre(ctx, g); err != nil {
		if !errors.Is(err, store.ErrAlreadyExists) {
			return nil, fmt.Errorf("create genre %q: %w", slug, err)
		}
		// Lost a race with a concurrent request for the same slug.
		existing, getErr := s.store.GetGenreBySlug(ctx, slug)
		if getErr != nil {
			return nil, fmt.Errorf("re-read genre %q: %w", slug, getErr)
		}
		return &GenerateResult{Genre: existing}, nil
	}

	s.logger.Info("genre created", "slug", g.Slug, "genre", g.Name)

	if s.index != nil {
		if err := s.index.IndexGenre(g); err != nil {
			s.logger.Warn("failed to index genre", "slug", g.Slug, "error", err)
		}
	}
	s.scheduleCapture(g.Slug, false)

	return &GenerateResult{Genre: g, Created: true}, nil
}

// GetBySlug returns a stored genre.
func (s *GenreService) GetBySlug(ctx context.Context, slug string) (*domain.Genre, error) {
	if err := s.validator.Var("slug", slug, "required,slug"); err != nil {
		return nil, err
	}

	g, err := s.store.GetGenreBySlug(ctx, slug)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("genre %q not found", slug)
	}
	if err != nil {
		return nil, fmt.Errorf("get genre %q: %w", slug, err)
	}
	return g, nil
}

// List returns a page of genres, newest first, and the total count.
func (s *GenreService) List(ctx context.Context, limit, offset int) ([]*domain.Genre, int, error) {
	limit, offset = store.ClampPage(limit, offset)

	genres, err := s.store.ListGenres(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list genres: %w", err)
	}

	total, err := s.store.CountGenres(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count genres: %w", err)
	}
	return genres, total, nil
}

// Count returns the number of stored genres.
func (s *GenreService) Count(ctx context.Context) (int, error) {
	return s.store.CountGenres(ctx)
}

// ImageURL returns the social card for a stored genre, or "" when
// screenshots are not configured.
func (s *GenreService) ImageURL(slug string) string {
	if s.shots == nil || !s.shots.Enabled() {
		return ""
	}
	return s.shots.ImageURL(slug)
}
