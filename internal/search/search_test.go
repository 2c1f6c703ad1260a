package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musicgenreator/genreator/internal/domain"
)

// setupTestIndex creates an in-memory search index for testing.
func setupTestIndex(t *testing.T) *Index {
	t.Helper()

	index, err := Open(Options{DataPath: MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	return index
}

func genreAt(name, slug string, minutes int) *domain.Genre {
	return &domain.Genre{
		ID:        "genre-" + slug,
		Name:      name,
		Slug:      slug,
		CreatedAt: time.Date(2024, 1, 1, 0, minutes, 0, 0, time.UTC),
	}
}

func seed(t *testing.T, index *Index) {
	t.Helper()
	require.NoError(t, index.IndexGenres([]*domain.Genre{
		genreAt("dream pop", "dream-pop", 1),
		genreAt("swedish death metal", "swedish-death-metal", 2),
		genreAt("post-rock", "postrock", 3),
		genreAt("doom jazz", "doom-jazz", 4),
	}))
}

func TestOpen_Memory(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndex_IndexGenre(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexGenre(genreAt("dream pop", "dream-pop", 0)))
	// Re-indexing the same slug replaces the document.
	require.NoError(t, index.IndexGenre(genreAt("dream pop", "dream-pop", 5)))

	count, err := index.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestIndex_Search(t *testing.T) {
	index := setupTestIndex(t)
	seed(t, index)
	ctx := context.Background()

	tests := []struct {
		name  string
		query string
		first string
	}{
		{"exact word", "metal", "swedish-death-metal"},
		{"stemmed", "dreaming", "dream-pop"},
		{"typo", "jaz", "doom-jazz"},
		{"prefix", "swed", "swedish-death-metal"},
		{"slug", "postrock", "postrock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := index.Search(ctx, tt.query, 10, 0)
			require.NoError(t, err)
			require.NotEmpty(t, res.Hits)
			assert.Equal(t, tt.first, res.Hits[0].Slug)
		})
	}
}

func TestIndex_Search_EmptyQueryIsNewestFirst(t *testing.T) {
	index := setupTestIndex(t)
	seed(t, index)

	res, err := index.Search(context.Background(), "", 2, 0)
	require.NoError(t, err)

	assert.Equal(t, uint64(4), res.Total)
	assert.Equal(t, []string{"doom-jazz", "postrock"}, res.Slugs())

	page2, err := index.Search(context.Background(), "  ", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"swedish-death-metal", "dream-pop"}, page2.Slugs())
}

func TestIndex_Search_NoMatch(t *testing.T) {
	index := setupTestIndex(t)
	seed(t, index)

	res, err := index.Search(context.Background(), "zydeco", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
	assert.Equal(t, uint64(0), res.Total)
}

func TestIndex_DeleteGenre(t *testing.T) {
	index := setupTestIndex(t)
	seed(t, index)

	require.NoError(t, index.DeleteGenre("doom-jazz"))

	count, err := index.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestIndex_Rebuild(t *testing.T) {
	index := setupTestIndex(t)
	seed(t, index)

	require.NoError(t, index.Rebuild())

	count, err := index.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestOpen_Disk(t *testing.T) {
	dir := t.TempDir()

	index, err := Open(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, index.IndexGenre(genreAt("dream pop", "dream-pop", 0)))
	require.NoError(t, index.Close())

	index, err = Open(Options{DataPath: dir})
	require.NoError(t, err)
	defer index.Close() //nolint:errcheck // Test cleanup

	count, err := index.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestNewGenreDocument(t *testing.T) {
	g := genreAt("dream pop", "dream-pop", 0)
	doc := NewGenreDocument(g)

	assert.Equal(t, "dream-pop", doc.Slug)
	assert.Equal(t, "dream pop", doc.Name)
	assert.Equal(t, g.CreatedAt.UnixMilli(), doc.ToMap()["created_at"])
}
