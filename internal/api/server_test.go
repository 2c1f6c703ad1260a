package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/musicgenreator/genreator/internal/cache"
	"github.com/musicgenreator/genreator/internal/domain"
	"github.com/musicgenreator/genreator/internal/music"
	"github.com/musicgenreator/genreator/internal/music/deezer"
	"github.com/musicgenreator/genreator/internal/screenshot"
	"github.com/musicgenreator/genreator/internal/search"
	"github.com/musicgenreator/genreator/internal/service"
	"github.com/musicgenreator/genreator/internal/share"
	"github.com/musicgenreator/genreator/internal/store/sqlite"
)

const testSiteURL = "https://genres.example.com"

// scriptedGenerator returns its phrases in order, repeating the last one.
type scriptedGenerator struct {
	mu      sync.Mutex
	phrases []string
	next    int
}

func (g *scriptedGenerator) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.phrases[min(g.next, len(g.phrases)-1)]
	g.next++
	return p, nil
}

// stubShots claims every screenshot already exists.
type stubShots struct{}

func (stubShots) Enabled() bool { return true }

func (stubShots) ImageURL(slug string) string { return "https://cards.example.com/" + slug + ".png" }

func (stubShots) Exists(context.Context, string) (bool, error) { return true, nil }

func (stubShots) Capture(_ context.Context, slug string) (*screenshot.CaptureResult, error) {
	return &screenshot.CaptureResult{JobID: "job-" + slug, Status: "queued"}, nil
}

type stubTracks struct{ tracks []music.Track }

func (s stubTracks) TopTracks(context.Context, string) ([]music.Track, error) { return s.tracks, nil }

type stubPreviews struct{ tracks []deezer.Track }

func (s stubPreviews) Search(context.Context, string) ([]deezer.Track, error) { return s.tracks, nil }

// fixedRand always picks the same index.
type fixedRand int

func (r fixedRand) IntN(n int) int { return int(r) % n }

type testServer struct {
	*Server
	api   humatest.TestAPI
	store *sqlite.Store
	gen   *scriptedGenerator
}

type testServerConfig struct {
	opts  Options
	shots service.Screenshotter
	music bool
}

// setupTestServer builds a server over a temporary SQLite store and in-memory index and cache.
func setupTestServer(t *testing.T, cfg testServerConfig, phrases ...string) *testServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "genres.db"), logger)
	require.NoError(t, err)

	index, err := search.Open(search.Options{DataPath: search.MemoryPath, Logger: logger})
	require.NoError(t, err)

	if len(phrases) == 0 {
		phrases = []string{"dream pop"}
	}
	gen := &scriptedGenerator{phrases: phrases}
	genreSvc := service.NewGenreService(st, gen, index, cfg.shots, logger)

	services := &Services{
		Genre: genreSvc,
		Share: share.NewBuilder(share.Config{
			SiteURL:       testSiteURL,
			TwitterVia:    "alex_tea",
			Hashtags:      "musicgenreator",
			FacebookAppID: "2640283582660316",
		}, fixedRand(0)),
		Store: st,
		Index: index,
	}

	if cfg.music {
		c, err := cache.Open(cache.MemoryPath, logger)
		require.NoError(t, err)
		t.Cleanup(func() { _ = c.Close() })

		services.Music = service.NewMusicService(
			stubTracks{tracks: []music.Track{{Name: "Teardrop", Artist: "Massive Attack", URL: "https://last.fm/teardrop"}}},
			stubPreviews{tracks: []deezer.Track{{ID: 1, Title: "Teardrop", Preview: "https://cdn.deezer.com/1.mp3", Artist: "Massive Attack", Album: "Mezzanine", Cover: "https://cdn.deezer.com/c.jpg"}}},
			c, time.Hour, logger,
		)
	}

	if cfg.opts.SiteURL == "" {
		cfg.opts.SiteURL = testSiteURL
	}
	srv, err := NewServer(services, cfg.opts, logger)
	require.NoError(t, err)

	t.Cleanup(func() {
		srv.Close()
		_ = genreSvc.Shutdown(context.Background())
		_ = index.Close()
		_ = st.Close()
	})

	return &testServer{
		Server: srv,
		api:    humatest.Wrap(t, srv.API()),
		store:  st,
		gen:    gen,
	}
}

// seedGenre stores a genre directly.
func (ts *testServer) seedGenre(t *testing.T, name, slug string) *domain.Genre {
	t.Helper()
	g := &domain.Genre{ID: "genre-" + slug, Name: name, Slug: slug, CreatedAt: time.Now().UTC()}
	require.NoError(t, ts.store.CreateGenre(context.Background(), g))
	return g
}

// get serves a plain request through the full router.
func (ts *testServer) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	return rec
}

// envelope decodes a response body into an envelope whose data lands in dst.
func decodeEnvelope(t *testing.T, body []byte, dst any) APIEnvelope {
	t.Helper()

	var raw struct {
		APIEnvelope
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &raw))
	if dst != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, dst))
	}
	return raw.APIEnvelope
}
