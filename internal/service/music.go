package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/musicgenreator/genreator/internal/cache"
	domainerrors "github.com/musicgenreator/genreator/internal/errors"
	"github.com/musicgenreator/genreator/internal/music"
	"github.com/musicgenreator/genreator/internal/music/deezer"
)

// TopTracksTTL is how long Last.fm top tracks are cached.
const TopTracksTTL = 24 * time.Hour

// TrackSource looks up popular tracks for a genre tag.
type TrackSource interface {
	TopTracks(ctx context.Context, tag string) ([]music.Track, error)
}

// PreviewSource searches for playable track previews.
type PreviewSource interface {
	Search(ctx context.Context, query string) ([]deezer.Track, error)
}

// MusicService finds real music to go with a genre.
type MusicService struct {
	tracks     TrackSource
	previews   PreviewSource
	cache      *cache.Cache
	previewTTL time.Duration
	logger     *slog.Logger
}

// NewMusicService creates a new music service. The cache may be nil.
func NewMusicService(tracks TrackSource, previews PreviewSource, c *cache.Cache, previewTTL time.Duration, logger *slog.Logger) *MusicService {
	return &MusicService{
		tracks:     tracks,
		previews:   previews,
		cache:      c,
		previewTTL: previewTTL,
		logger:     logger,
	}
}

// Listen returns listening links for a genre name. Lookup failures degrade
// to genre search links.
func (s *MusicService) Listen(ctx context.Context, genreName string) music.Links {
	key := "lastfm:toptracks:" + strings.ToLower(genreName)

	tracks, err := cache.Fetch(s.cache, key, TopTracksTTL, func() ([]music.Track, error) {
		return s.tracks.TopTracks(ctx, genreName)
	})
	if err != nil {
		s.logger.Warn("top tracks lookup failed", "genre", genreName, "error", err)
		tracks = nil
	}

	return music.BuildLinks(genreName, tracks)
}

// Preview searches Deezer for tracks matching query.
func (s *MusicService) Preview(ctx context.Context, query string) ([]deezer.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"q": "is required"})
	}

	key := "deezer:search:" + strings.ToLower(query)
	tracks, err := cache.Fetch(s.cache, key, s.previewTTL, func() ([]deezer.Track, error) {
		return s.previews.Search(ctx, query)
	})
	if err != nil {
		return nil, domainerrors.Upstream("deezer search failed", err)
	}
	return tracks, nil
}
