// Package deezer searches the Deezer catalogue for playable track previews.
package deezer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public Deezer API host.
const DefaultBaseURL = "https://api.deezer.com"

// Track is a Deezer track with a 30 second preview.
type Track struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Preview string `json:"preview"`
	Artist  string `json:"artist"`
	Album   string `json:"album"`
	Cover   string `json:"cover"`
}

// APIError is the error object Deezer returns in place of results.
type APIError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("deezer %s (%d): %s", e.Type, e.Code, e.Message)
}

// Client provides access to the Deezer search API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// NewClient creates a new Deezer client.
// Deezer allows 50 requests per 5 seconds; we stay well under that.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(5), 10),
		logger:      logger,
	}
}

// Search returns the tracks matching query, best match first.
func (c *Client) Search(ctx context.Context, query string) ([]Track, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	searchURL := c.baseURL + "/search?q=" + url.QueryEscape(query)
	c.logger.Debug("searching Deezer", "query", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if body.Error != nil {
		return nil, body.Error
	}

	tracks := make([]Track, 0, len(body.Data))
	for _, r := range body.Data {
		tracks = append(tracks, Track{
			ID:      r.ID,
			Title:   r.Title,
			Preview: r.Preview,
			Artist:  r.Artist.Name,
			Album:   r.Album.Title,
			Cover:   r.Album.CoverMedium,
		})
	}

	c.logger.Debug("Deezer search results", "query", query, "count", len(tracks))
	return tracks, nil
}

type searchResponse struct {
	Data  []searchResult `json:"data"`
	Total int            `json:"total"`
	Error *APIError      `json:"error"`
}

type searchResult struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Preview string `json:"preview"`
	Artist  struct {
		Name string `json:"name"`
	} `json:"artist"`
	Album struct {
		Title       string `json:"title"`
		CoverMedium string `json:"cover_medium"`
	} `json:"album"`
}
