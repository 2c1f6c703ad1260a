// Package lastfm reads top tracks per tag from the Last.fm API.
package lastfm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/musicgenreator/genreator/internal/music"
)

const (
	// DefaultBaseURL is the public Last.fm API host.
	DefaultBaseURL = "https://ws.audioscrobbler.com"

	topTracksLimit = 10
)

// APIError is an error payload returned by Last.fm with a 200 or 4xx status.
type APIError struct {
	Code    int    `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("last.fm error %d: %s", e.Code, e.Message)
}

// Client provides access to the Last.fm tag API.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// NewClient creates a new Last.fm client.
// Rate limited to 5 requests per second as asked by the Last.fm terms.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(5), 5),
		logger:      logger,
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// TopTracks returns the most played tracks tagged with the genre.
// Without an API key it returns no tracks and no error.
func (c *Client) TopTracks(ctx context.Context, tag string) ([]music.Track, error) {
	if !c.Configured() {
		c.logger.Warn("LASTFM_API_KEY not configured")
		return []music.Track{}, nil
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("method", "tag.gettoptracks")
	params.Set("tag", strings.ToLower(tag))
	params.Set("limit", strconv.Itoa(topTracksLimit))
	params.Set("api_key", c.apiKey)
	params.Set("format", "json")

	c.logger.Debug("fetching top tracks from Last.fm", "tag", tag)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/2.0/?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("top tracks request: %w", err)
	}
	defer resp.Body.Close()

	var body topTracksResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("last.fm API error: status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if body.Error != 0 {
		return nil, &APIError{Code: body.Error, Message: body.Message}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("last.fm API error: status %d", resp.StatusCode)
	}

	raw, err := body.Tracks.Track.list()
	if err != nil {
		return nil, fmt.Errorf("parse tracks: %w", err)
	}

	tracks := make([]music.Track, 0, len(raw))
	for _, t := range raw {
		tracks = append(tracks, music.Track{
			Name:      t.Name,
			Artist:    t.Artist.Name,
			URL:       t.URL,
			Listeners: atoi(t.Listeners),
			Playcount: atoi(t.Playcount),
		})
	}

	c.logger.Debug("Last.fm top tracks", "tag", tag, "count", len(tracks))
	return tracks, nil
}

type topTracksResponse struct {
	Tracks struct {
		Track trackList `json:"track"`
	} `json:"tracks"`
	Error   int    `json:"error"`
	Message string `json:"message"`
}

type track struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Listeners count  `json:"listeners"`
	Playcount count  `json:"playcount"`
	Artist    struct {
		Name string `json:"name"`
	} `json:"artist"`
}

// trackList holds the "track" field, which Last.fm sends as an object
// instead of an array when a tag has a single track.
type trackList json.RawMessage

func (l *trackList) UnmarshalJSON(data []byte) error {
	*l = append((*l)[:0], data...)
	return nil
}

func (l trackList) list() ([]track, error) {
	data := bytes.TrimSpace(l)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	if data[0] == '{' {
		var t track
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, err
		}
		return []track{t}, nil
	}
	var tracks []track
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// count is a numeric field that Last.fm sends as a string.
type count string

func (c *count) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = count(s)
		return nil
	}
	*c = count(data)
	return nil
}

// atoi parses a leading integer, treating anything unparseable as zero.
func atoi(n count) int {
	s := strings.TrimSpace(string(n))
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && s[end] == '-') {
		end++
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return v
}
