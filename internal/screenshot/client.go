// Package screenshot requests social card captures from an external screenshot service
// and checks whether a capture already exists in S3.
package screenshot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Config holds the screenshot service settings.
type Config struct {
	ServiceURL  string // e.g. https://shots.example.com
	APIKey      string
	PageBaseURL string // Page rendered for the capture; the slug is appended
	AppName     string // Storage key prefix
	S3Bucket    string
	S3Region    string
	Width       int
	Height      int
	Format      string
	Timeout     time.Duration
}

// Client talks to the screenshot service and the S3 bucket it writes to.
type Client struct {
	cfg         Config
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger

	// imageURL is overridable in tests.
	imageURL func(slug string) string
}

// NewClient creates a new screenshot client.
// Outbound calls are limited to 2 per second with a burst of 5.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Format == "" {
		cfg.Format = "png"
	}
	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout + 5*time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(2), 5),
		logger:      logger,
	}
	c.imageURL = c.s3URL
	return c
}

// Enabled reports whether the client has what it needs to request captures.
func (c *Client) Enabled() bool {
	return c.cfg.ServiceURL != "" && c.cfg.APIKey != "" && c.cfg.S3Bucket != ""
}

// StorageKey returns the object key a capture for slug is stored under.
func (c *Client) StorageKey(slug string) string {
	return fmt.Sprintf("%s/%s.%s", c.cfg.AppName, slug, c.cfg.Format)
}

// ImageURL returns the public URL of the capture for slug.
func (c *Client) ImageURL(slug string) string {
	return c.imageURL(slug)
}

func (c *Client) s3URL(slug string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.cfg.S3Bucket, c.cfg.S3Region, c.StorageKey(slug))
}

// wait blocks until rate limiter allows a request.
func (c *Client) wait(ctx context.Context) error {
	return c.rateLimiter.Wait(ctx)
}
