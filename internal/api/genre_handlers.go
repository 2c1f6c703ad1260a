package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/musicgenreator/genreator/internal/domain"
	"github.com/musicgenreator/genreator/internal/genre"
	"github.com/musicgenreator/genreator/internal/share"
)

func (s *Server) registerGenreRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "generateGenre",
		Method:        http.MethodPost,
		Path:          "/api/v1/genres",
		Summary:       "Generate genre",
		Description:   "Generates a new genre and stores it under its slug. Returns 201 when the slug is new and 200 when it was already stored.",
		Tags:          []string{"Genres"},
		DefaultStatus: http.StatusCreated,
	}, s.handleGenerateGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres",
		Summary:     "List genres",
		Description: "Returns stored genres, newest first",
		Tags:        []string{"Genres"},
	}, s.handleListGenres)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres/search",
		Summary:     "Search genres",
		Description: "Full-text search over stored genre names",
		Tags:        []string{"Genres"},
	}, s.handleSearchGenres)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGenre",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres/{slug}",
		Summary:     "Get genre",
		Description: "Returns a stored genre with its page URL and share links",
		Tags:        []string{"Genres"},
	}, s.handleGetGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "slugify",
		Method:      http.MethodGet,
		Path:        "/api/v1/slug",
		Summary:     "Slugify phrase",
		Description: "Normalizes a phrase into the slug a genre with that name would be stored under",
		Tags:        []string{"Genres"},
	}, s.handleSlugify)
}

// === DTOs ===

// GenreResponse contains genre data in API responses.
type GenreResponse struct {
	ID        string      `json:"id" doc:"Genre ID"`
	Genre     string      `json:"genre" doc:"Genre name as generated"`
	Slug      string      `json:"slug" doc:"URL slug"`
	URL       string      `json:"url" doc:"Public page URL"`
	ImageURL  string      `json:"imageUrl,omitempty" doc:"Social card screenshot URL"`
	Share     share.Links `json:"share" doc:"Share links per network"`
	CreatedAt time.Time   `json:"createdAt" doc:"Creation time"`
}

// GenerateGenreOutput wraps the generate genre response.
type GenerateGenreOutput struct {
	Status int
	Body   GenerateGenreResponse
}

// GenerateGenreResponse is the body of a generate genre response.
type GenerateGenreResponse struct {
	GenreResponse
	Created bool `json:"created" doc:"True when the slug was stored for the first time"`
}

// ListGenresInput contains parameters for listing genres.
type ListGenresInput struct {
	Limit  int `query:"limit" minimum:"0" maximum:"100" default:"20" doc:"Page size"`
	Offset int `query:"offset" minimum:"0" default:"0" doc:"Number of genres to skip"`
}

// ListGenresResponse contains a page of genres.
type ListGenresResponse struct {
	Genres []GenreResponse `json:"genres" doc:"Genres, newest first"`
	Total  int             `json:"total" doc:"Total stored genres"`
	Limit  int             `json:"limit" doc:"Page size"`
	Offset int             `json:"offset" doc:"Offset of this page"`
}

// ListGenresOutput wraps the list genres response.
type ListGenresOutput struct {
	Body ListGenresResponse
}

// SearchGenresInput contains parameters for searching genres.
type SearchGenresInput struct {
	Q      string `query:"q" maxLength:"200" doc:"Search query; empty lists the newest genres"`
	Limit  int    `query:"limit" minimum:"0" maximum:"100" default:"20" doc:"Page size"`
	Offset int    `query:"offset" minimum:"0" default:"0" doc:"Number of hits to skip"`
}

// SearchGenresResponse contains search results.
type SearchGenresResponse struct {
	Query  string          `json:"query" doc:"Query as received"`
	Total  uint64          `json:"total" doc:"Total matching genres"`
	Genres []GenreResponse `json:"genres" doc:"Matching genres, best first"`
}

// SearchGenresOutput wraps the search genres response.
type SearchGenresOutput struct {
	Body SearchGenresResponse
}

// GenreSlugInput identifies a genre by slug.
type GenreSlugInput struct {
	Slug string `path:"slug" maxLength:"500" doc:"Genre slug"`
}

// GenreOutput wraps a single genre response.
type GenreOutput struct {
	Body GenreResponse
}

// SlugifyInput contains the phrase to normalize.
type SlugifyInput struct {
	Phrase string `query:"phrase" required:"true" maxLength:"500" doc:"Phrase to normalize"`
}

// SlugifyResponse contains a normalized slug.
type SlugifyResponse struct {
	Phrase string `json:"phrase" doc:"Phrase as received"`
	Slug   string `json:"slug" doc:"Normalized slug, may be empty"`
}

// SlugifyOutput wraps the slugify response.
type SlugifyOutput struct {
	Body SlugifyResponse
}

// === Handlers ===

func (s *Server) handleGenerateGenre(ctx context.Context, _ *struct{}) (*GenerateGenreOutput, error) {
	result, err := s.services.Genre.Generate(ctx)
	if err != nil {
		return nil, toAPIError(err)
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}

	return &GenerateGenreOutput{
		Status: status,
		Body: GenerateGenreResponse{
			GenreResponse: s.genreResponse(result.Genre),
			Created:       result.Created,
		},
	}, nil
}

func (s *Server) handleListGenres(ctx context.Context, input *ListGenresInput) (*ListGenresOutput, error) {
	genres, total, err := s.services.Genre.List(ctx, input.Limit, input.Offset)
	if err != nil {
		return nil, toAPIError(err)
	}

	limit := input.Limit
	if limit == 0 {
		limit = len(genres)
	}

	return &ListGenresOutput{
		Body: ListGenresResponse{
			Genres: s.genreResponses(genres),
			Total:  total,
			Limit:  limit,
			Offset: input.Offset,
		},
	}, nil
}

func (s *Server) handleSearchGenres(ctx context.Context, input *SearchGenresInput) (*SearchGenresOutput, error) {
	result, err := s.services.Genre.Search(ctx, input.Q, input.Limit, input.Offset)
	if err != nil {
		return nil, toAPIError(err)
	}

	return &SearchGenresOutput{
		Body: SearchGenresResponse{
			Query:  input.Q,
			Total:  result.Total,
			Genres: s.genreResponses(result.Genres),
		},
	}, nil
}

func (s *Server) handleGetGenre(ctx context.Context, input *GenreSlugInput) (*GenreOutput, error) {
	g, err := s.services.Genre.GetBySlug(ctx, input.Slug)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &GenreOutput{Body: s.genreResponse(g)}, nil
}

func (s *Server) handleSlugify(_ context.Context, input *SlugifyInput) (*SlugifyOutput, error) {
	return &SlugifyOutput{
		Body: SlugifyResponse{
			Phrase: input.Phrase,
			Slug:   genre.ToSlug(input.Phrase),
		},
	}, nil
}

// === Helpers ===

func (s *Server) genreResponse(g *domain.Genre) GenreResponse {
	resp := GenreResponse{
		ID:        g.ID,
		Genre:     g.Name,
		Slug:      g.Slug,
		URL:       s.opts.SiteURL + g.Path(),
		ImageURL:  s.services.Genre.ImageURL(g.Slug),
		CreatedAt: g.CreatedAt,
	}
	if s.services.Share != nil {
		resp.URL = s.services.Share.PageURL(g.Slug)
		resp.Share = s.services.Share.Links(g.Name, g.Slug)
	}
	return resp
}

func (s *Server) genreResponses(genres []*domain.Genre) []GenreResponse {
	out := make([]GenreResponse, 0, len(genres))
	for _, g := range genres {
		out = append(out, s.genreResponse(g))
	}
	return out
}
