package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musicgenreator/genreator/internal/ratelimit"
)

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.New(0.01, 1)
	t.Cleanup(limiter.Stop)

	handler := RateLimitMiddleware(limiter, slog.New(slog.DiscardHandler))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	request := func(path, remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, request("/", "10.0.0.1:1234").Code)

	rec := request("/", "10.0.0.1:5678")
	require.Equal(t, http.StatusTooManyRequests, rec.Code, "same IP, different port")
	retryAfter, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Positive(t, retryAfter)
	env := decodeEnvelope(t, rec.Body.Bytes(), nil)
	assert.Equal(t, "RATE_LIMITED", env.Code)

	assert.Equal(t, http.StatusOK, request("/", "10.0.0.2:1234").Code, "other IPs unaffected")
	assert.Equal(t, http.StatusOK, request("/images/card.png", "10.0.0.1:1234").Code, "static assets exempt")
}

func TestServer_RateLimitsRequests(t *testing.T) {
	ts := setupTestServer(t, testServerConfig{opts: Options{RateLimitRPS: 0.01, RateLimitBurst: 1}})

	assert.Equal(t, http.StatusOK, ts.get("/robots.txt").Code)
	assert.Equal(t, http.StatusTooManyRequests, ts.get("/robots.txt").Code)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		remoteAddr string
		want       string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"192.0.2.1", "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.remoteAddr, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	handler := requestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/dream-pop", nil))
	assert.Contains(t, buf.String(), `"path":"/dream-pop"`)
	assert.Contains(t, buf.String(), `"status":418`)

	buf.Reset()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/styles/main.css", nil))
	assert.Empty(t, buf.String(), "static assets log at debug")
}
