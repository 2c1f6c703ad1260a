package screenshot

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

// ErrNotConfigured is returned when the service URL, API key or bucket is missing.
var ErrNotConfigured = errors.New("screenshot service not configured")

// Capture asks the service to render the page for slug and store it in S3.
// The service works asynchronously; the result only carries the job ID.
func (c *Client) Capture(ctx context.Context, slug string) (*CaptureResult, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	body := captureRequest{
		URL: c.cfg.PageBaseURL + slug,
		Storage: storageOptions{
			Provider: "s3",
			Bucket:   c.cfg.S3Bucket,
			Region:   c.cfg.S3Region,
			Key:      c.StorageKey(slug),
		},
		Viewport: viewport{Width: c.cfg.Width, Height: c.cfg.Height},
		Format:   c.cfg.Format,
		Options: captureOptions{
			WaitUntil: "networkidle0",
			Timeout:   c.cfg.Timeout.Milliseconds(),
		},
		Metadata: captureMetadata{
			App:          c.cfg.AppName,
			ResourceID:   slug,
			ResourceType: "genre",
			RequestID:    uuid.NewString(),
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ServiceURL+"/v1/screenshot", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	c.logger.Debug("requesting screenshot",
		"slug", slug,
		"url", body.URL,
		"request_id", body.Metadata.RequestID,
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("screenshot request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &apiErr) == nil {
			if msg := cmp.Or(apiErr.Message, apiErr.Error); msg != "" {
				return nil, fmt.Errorf("screenshot service: status %d: %s", resp.StatusCode, msg)
			}
		}
		return nil, fmt.Errorf("screenshot service: status %d", resp.StatusCode)
	}

	var result CaptureResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	c.logger.Info("screenshot requested",
		"slug", slug,
		"job_id", result.JobID,
		"status", result.Status,
	)

	return &result, nil
}

// Exists checks with a HEAD request whether the capture for slug is already stored.
// Any 4xx answer means missing; every other status counts as present.
func (c *Client) Exists(ctx context.Context, slug string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.ImageURL(slug), nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("check screenshot: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return false, nil
	}
	return true, nil
}
