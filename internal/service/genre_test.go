package service

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musicgenreator/genreator/internal/domain"
	domainerrors "github.com/musicgenreator/genreator/internal/errors"
	"github.com/musicgenreator/genreator/internal/screenshot"
	"github.com/musicgenreator/genreator/internal/search"
	"github.com/musicgenreator/genreator/internal/store"
	"github.com/musicgenreator/genreator/internal/store/sqlite"
)

// scriptedGenerator returns its phrases in order, repeating the last one.
type scriptedGenerator struct {
	mu      sync.Mutex
	phrases []string
	next    int
	err     error
}

func (g *scriptedGenerator) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	p := g.phrases[min(g.next, len(g.phrases)-1)]
	g.next++
	return p, nil
}

// fakeShots records screenshot calls.
type fakeShots struct {
	mu        sync.Mutex
	enabled   bool
	stored    map[string]bool
	existsErr error
	checked   []string
	captured  []string
	release   chan struct{} // when set, Capture blocks until closed
}

func (f *fakeShots) Enabled() bool { return f.enabled }

func (f *fakeShots) ImageURL(slug string) string { return "https://cards.example.com/" + slug + ".png" }

func (f *fakeShots) Exists(_ context.Context, slug string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checked = append(f.checked, slug)
	return f.stored[slug], f.existsErr
}

func (f *fakeShots) Capture(ctx context.Context, slug string) (*screenshot.CaptureResult, error) {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captured = append(f.captured, slug)
	return &screenshot.CaptureResult{JobID: "job-" + slug, Status: "queued"}, nil
}

func (f *fakeShots) calls() (checked, captured []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.checked...), append([]string(nil), f.captured...)
}

type genreFixture struct {
	svc   *GenreService
	store *sqlite.Store
	index *search.Index
	gen   *scriptedGenerator
	shots *fakeShots
}

// setupGenreTest creates a genre service backed by a temporary SQLite store.
func setupGenreTest(t *testing.T, phrases ...string) *genreFixture {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "genres.db"), logger)
	require.NoError(t, err)

	index, err := search.Open(search.Options{DataPath: search.MemoryPath, Logger: logger})
	require.NoError(t, err)

	gen := &scriptedGenerator{phrases: phrases}
	shots := &fakeShots{enabled: true, stored: map[string]bool{}}
	svc := NewGenreService(s, gen, index, shots, logger)

	t.Cleanup(func() {
		_ = svc.Shutdown(context.Background())
		_ = index.Close()
		_ = s.Close()
	})

	return &genreFixture{svc: svc, store: s, index: index, gen: gen, shots: shots}
}

func TestGenreService_Generate_CreatesNewGenre(t *testing.T) {
	f := setupGenreTest(t, "post- rock jazz")
	ctx := context.Background()

	res, err := f.svc.Generate(ctx)
	require.NoError(t, err)

	assert.True(t, res.Created)
	assert.Equal(t, "post- rock jazz", res.Genre.Name)
	assert.Equal(t, "post-rock-jazz", res.Genre.Slug)
	assert.NotEmpty(t, res.Genre.ID)

	stored, err := f.store.GetGenreBySlug(ctx, "post-rock-jazz")
	require.NoError(t, err)
	assert.Equal(t, res.Genre.ID, stored.ID)

	count, err := f.index.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	require.NoError(t, f.svc.Shutdown(ctx))
	checked, captured := f.shots.calls()
	assert.Empty(t, checked, "new genres are captured without a check")
	assert.Equal(t, []string{"post-rock-jazz"}, captured)
}

func TestGenreService_Generate_ReturnsExistingGenre(t *testing.T) {
	f := setupGenreTest(t, "dream pop", "Dream  Pop")
	ctx := context.Background()

	first, err := f.svc.Generate(ctx)
	require.NoError(t, err)

	// Wait for the first capture to finish so the second is not deduplicated.
	require.Eventually(t, func() bool {
		_, captured := f.shots.calls()
		_, busy := f.svc.pending.Load("dream-pop")
		return len(captured) == 1 && !busy
	}, time.Second, 5*time.Millisecond)

	f.shots.mu.Lock()
	f.shots.stored["dream-pop"] = true
	f.shots.mu.Unlock()

	second, err := f.svc.Generate(ctx)
	require.NoError(t, err)
	require.NoError(t, f.svc.Shutdown(ctx))

	assert.False(t, second.Created)
	assert.Equal(t, first.Genre.ID, second.Genre.ID)
	assert.Equal(t, "dream pop", second.Genre.Name, "the stored phrase wins")

	total, err := f.store.CountGenres(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	checked, captured := f.shots.calls()
	assert.Equal(t, []string{"dream-pop"}, checked)
	assert.Equal(t, []string{"dream-pop"}, captured, "only the first generation captured")
}

func TestGenreService_Generate_UnusablePhrase(t *testing.T) {
	f := setupGenreTest(t, "---")

	_, err := f.svc.Generate(context.Background())
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInternal))
}

func TestGenreService_Generate_GeneratorError(t *testing.T) {
	f := setupGenreTest(t, "unused")
	f.gen.err = errors.New("empty vocabulary")

	_, err := f.svc.Generate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty vocabulary")
}

// racingStore reports a conflict on create, as if another request stored the slug first.
type racingStore struct {
	store.GenreStore
	winner *domain.Genre
	gets   int
}

func (r *racingStore) GetGenreBySlug(ctx context.Context, slug string) (*domain.Genre, error) {
	r.gets++
	if r.gets == 1 {
		return nil, store.ErrNotFound
	}
	return r.winner, nil
}

func (r *racingStore) CreateGenre(context.Context, *domain.Genre) error {
	return store.ErrAlreadyExists
}

func TestGenreService_Generate_CreateRace(t *testing.T) {
	winner := &domain.Genre{ID: "genre-winner", Name: "dub", Slug: "dub", CreatedAt: time.Now()}
	rs := &racingStore{winner: winner}
	svc := NewGenreService(rs, &scriptedGenerator{phrases: []string{"dub"}}, nil, nil, slog.New(slog.DiscardHandler))

	res, err := svc.Generate(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, "genre-winner", res.Genre.ID)
	assert.Equal(t, 2, rs.gets)
}

func TestGenreService_GetBySlug(t *testing.T) {
	f := setupGenreTest(t, "dream pop")
	ctx := context.Background()

	_, err := f.svc.Generate(ctx)
	require.NoError(t, err)

	tests := []struct {
		name    string
		slug    string
		wantErr *domainerrors.Error
	}{
		{"found", "dream-pop", nil},
		{"missing", "doom-jazz", domainerrors.ErrNotFound},
		{"invalid", "Dream Pop", domainerrors.ErrValidation},
		{"empty", "", domainerrors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := f.svc.GetBySlug(ctx, tt.slug)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, "dream pop", g.Name)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGenreService_List(t *testing.T) {
	f := setupGenreTest(t, "dub", "doom jazz", "dream pop")
	ctx := context.Background()

	for range 3 {
		_, err := f.svc.Generate(ctx)
		require.NoError(t, err)
	}

	genres, total, err := f.svc.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, genres, 2)
	assert.Equal(t, "dream-pop", genres[0].Slug, "newest first")

	rest, _, err := f.svc.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "dub", rest[0].Slug)
}

func TestGenreService_EnsureScreenshot(t *testing.T) {
	tests := []struct {
		name         string
		enabled      bool
		stored       bool
		existsErr    error
		wantChecked  int
		wantCaptured int
	}{
		{"disabled", false, false, nil, 0, 0},
		{"already stored", true, true, nil, 1, 0},
		{"missing", true, false, nil, 1, 1},
		{"check failed", true, false, errors.New("timeout"), 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupGenreTest(t, "dub")
			f.shots.enabled = tt.enabled
			f.shots.stored["dub"] = tt.stored
			f.shots.existsErr = tt.existsErr

			f.svc.EnsureScreenshot("dub")
			require.NoError(t, f.svc.Shutdown(context.Background()))

			checked, captured := f.shots.calls()
			assert.Len(t, checked, tt.wantChecked)
			assert.Len(t, captured, tt.wantCaptured)
		})
	}
}

func TestGenreService_EnsureScreenshot_DeduplicatesInFlight(t *testing.T) {
	f := setupGenreTest(t, "dub")
	f.shots.release = make(chan struct{})

	f.svc.EnsureScreenshot("dub")
	f.svc.EnsureScreenshot("dub")
	close(f.shots.release)
	require.NoError(t, f.svc.Shutdown(context.Background()))

	_, captured := f.shots.calls()
	assert.Equal(t, []string{"dub"}, captured)
}

func TestGenreService_Shutdown_Timeout(t *testing.T) {
	f := setupGenreTest(t, "dub")
	f.shots.release = make(chan struct{})

	f.svc.EnsureScreenshot("dub")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := f.svc.Shutdown(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// No new jobs after shutdown.
	f.svc.EnsureScreenshot("doom-jazz")
	_, captured := f.shots.calls()
	assert.Empty(t, captured)
}

func TestGenreService_ImageURL(t *testing.T) {
	f := setupGenreTest(t, "dub")
	assert.Equal(t, "https://cards.example.com/dub.png", f.svc.ImageURL("dub"))

	f.shots.enabled = false
	assert.Empty(t, f.svc.ImageURL("dub"))
}
