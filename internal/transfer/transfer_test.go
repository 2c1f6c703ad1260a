package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musicgenreator/genreator/internal/store/sqlite"
)

func setupStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "genres.db"), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestImport_CountsOutcomes(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	input := `[
		{"slug": "dream-pop", "genre": "dream pop"},
		{"slug": " Hard-Bop ", "genre": "hard bop"},
		{"slug": "", "genre": "post- rock jazz"},
		{"slug": "dream-pop", "genre": "dream pop again"},
		{"slug": "bad slug!", "genre": "bad"},
		{"slug": "no-name", "genre": "  "}
	]`

	stats, err := Import(ctx, s, strings.NewReader(input), Options{})
	require.NoError(t, err)

	assert.Equal(t, &Stats{Imported: 3, Duplicates: 1, Invalid: 2, Total: 6}, stats)

	g, err := s.GetGenreBySlug(ctx, "hard-bop")
	require.NoError(t, err)
	assert.Equal(t, "hard bop", g.Name)
	assert.Contains(t, g.ID, "genre-")

	g, err = s.GetGenreBySlug(ctx, "postrock-jazz")
	require.NoError(t, err, "missing slug derived from the phrase")
	assert.Equal(t, "post- rock jazz", g.Name)

	g, err = s.GetGenreBySlug(ctx, "dream-pop")
	require.NoError(t, err)
	assert.Equal(t, "dream pop", g.Name, "first record wins")
}

func TestImport_ReportsProgress(t *testing.T) {
	s := setupStore(t)

	records := make([]Record, 250)
	for i := range records {
		records[i] = Record{Slug: fmt.Sprintf("genre-%d", i), Genre: fmt.Sprintf("genre %d", i)}
	}
	data, err := json.Marshal(records)
	require.NoError(t, err)

	var reports []int
	stats, err := Import(context.Background(), s, bytes.NewReader(data), Options{
		Progress: func(done, total int) {
			assert.Equal(t, 250, total)
			reports = append(reports, done)
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 250, stats.Imported)
	assert.Equal(t, []int{100, 200, 250}, reports)
}

func TestImport_RejectsMalformedInput(t *testing.T) {
	_, err := Import(context.Background(), setupStore(t), strings.NewReader(`{"slug": "dub"}`), Options{})
	assert.Error(t, err)
}

func TestImport_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := Import(ctx, setupStore(t), strings.NewReader(`[{"slug":"dub","genre":"dub"}]`), Options{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, stats.Imported)
}

func TestExportImport_RoundTrip(t *testing.T) {
	src := setupStore(t)
	ctx := context.Background()

	input := `[{"slug":"dub","genre":"dub"},{"slug":"dark-ambient","genre":"Dark Ambient"}]`
	_, err := Import(ctx, src, strings.NewReader(input), Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := Export(ctx, src, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var exported []Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &exported))
	assert.ElementsMatch(t, []Record{{Slug: "dub", Genre: "dub"}, {Slug: "dark-ambient", Genre: "Dark Ambient"}}, exported)

	dst := setupStore(t)
	stats, err := Import(ctx, dst, &buf, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Imported)
}

func TestExport_Empty(t *testing.T) {
	var buf bytes.Buffer
	n, err := Export(context.Background(), setupStore(t), &buf)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, "[]\n", buf.String())
}
