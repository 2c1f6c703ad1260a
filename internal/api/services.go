package api

import (
	"github.com/musicgenreator/genreator/internal/service"
	"github.com/musicgenreator/genreator/internal/share"
	"github.com/musicgenreator/genreator/internal/store"
)

// IndexCounter reports the size of the search index.
type IndexCounter interface {
	Count() (uint64, error)
}

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Genre *service.GenreService
	Music *service.MusicService
	Share *share.Builder

	// Health check targets. Index may be nil.
	Store store.GenreStore
	Index IndexCounter
}
