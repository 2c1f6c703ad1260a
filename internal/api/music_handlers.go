package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/musicgenreator/genreator/internal/errors"
	"github.com/musicgenreator/genreator/internal/music"
	"github.com/musicgenreator/genreator/internal/music/deezer"
)

func (s *Server) registerMusicRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getGenreMusic",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres/{slug}/music",
		Summary:     "Get genre music",
		Description: "Returns popular Last.fm tracks for a genre with Spotify and Apple Music search links",
		Tags:        []string{"Music"},
	}, s.handleGetGenreMusic)

	// The preview player reads Deezer's own {data:[...]} shape, so successes skip the envelope.
	huma.Register(s.api, huma.Operation{
		OperationID: "deezerSearch",
		Method:      http.MethodGet,
		Path:        "/api/deezer/search",
		Summary:     "Search Deezer",
		Description: "Proxies a Deezer track search for the preview player. The success body is not enveloped.",
		Tags:        []string{"Music"},
		Metadata:    map[string]any{metaRawBody: true},
	}, s.handleDeezerSearch)
}

// === DTOs ===

// GenreMusicResponse contains the listening links for a genre.
type GenreMusicResponse struct {
	Genre string `json:"genre" doc:"Genre name"`
	Slug  string `json:"slug" doc:"Genre slug"`
	music.Links
}

// GenreMusicOutput wraps the genre music response.
type GenreMusicOutput struct {
	Body GenreMusicResponse
}

// DeezerSearchInput contains the Deezer query.
type DeezerSearchInput struct {
	Q string `query:"q" maxLength:"200" doc:"Deezer search query, e.g. artist:\"x\" track:\"y\""`
}

// DeezerArtist mirrors Deezer's artist object.
type DeezerArtist struct {
	Name string `json:"name"`
}

// DeezerAlbum mirrors Deezer's album object.
type DeezerAlbum struct {
	Title       string `json:"title"`
	CoverMedium string `json:"cover_medium"`
}

// DeezerTrack mirrors the track fields the preview player reads.
type DeezerTrack struct {
	ID      int64        `json:"id"`
	Title   string       `json:"title"`
	Preview string       `json:"preview"`
	Artist  DeezerArtist `json:"artist"`
	Album   DeezerAlbum  `json:"album"`
}

// DeezerSearchResponse mirrors Deezer's search response.
type DeezerSearchResponse struct {
	Data []DeezerTrack `json:"data"`
}

// DeezerSearchOutput wraps the Deezer search response.
type DeezerSearchOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         DeezerSearchResponse
}

// === Handlers ===

func (s *Server) handleGetGenreMusic(ctx context.Context, input *GenreSlugInput) (*GenreMusicOutput, error) {
	g, err := s.services.Genre.GetBySlug(ctx, input.Slug)
	if err != nil {
		return nil, toAPIError(err)
	}

	links := music.BuildLinks(g.Name, nil)
	if s.services.Music != nil {
		links = s.services.Music.Listen(ctx, g.Name)
	}

	return &GenreMusicOutput{
		Body: GenreMusicResponse{Genre: g.Name, Slug: g.Slug, Links: links},
	}, nil
}

func (s *Server) handleDeezerSearch(ctx context.Context, input *DeezerSearchInput) (*DeezerSearchOutput, error) {
	if s.services.Music == nil {
		return nil, toAPIError(domainerrors.Unavailable("music previews are not available"))
	}

	tracks, err := s.services.Music.Preview(ctx, input.Q)
	if err != nil {
		return nil, toAPIError(err)
	}

	return &DeezerSearchOutput{
		CacheControl: CacheOneHour,
		Body:         DeezerSearchResponse{Data: deezerTracks(tracks)},
	}, nil
}

func deezerTracks(tracks []deezer.Track) []DeezerTrack {
	out := make([]DeezerTrack, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, DeezerTrack{
			ID:      t.ID,
			Title:   t.Title,
			Preview: t.Preview,
			Artist:  DeezerArtist{Name: t.Artist},
			Album:   DeezerAlbum{Title: t.Album, CoverMedium: t.Cover},
		})
	}
	return out
}
