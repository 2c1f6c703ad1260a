// Package config loads application configuration from command-line flags, environment variables and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MemoryPath selects an in-memory backend for paths that accept it.
const MemoryPath = "memory"

// Config holds the application configuration.
type Config struct {
	App        AppConfig
	Logger     LoggerConfig
	Server     ServerConfig
	Database   DatabaseConfig
	Generator  GeneratorConfig
	Screenshot ScreenshotConfig
	LastFM     LastFMConfig
	Deezer     DeezerConfig
	Share      ShareConfig
	Search     SearchConfig
	Cache      CacheConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
	Name        string // Used as the screenshot storage prefix
	SiteURL     string // Public base URL, no trailing slash
	DataPath    string // Base directory for local state
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string        // Server port (default: 3000)
	ReadTimeout    time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout   time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout    time.Duration // HTTP idle timeout (default: 60s)
	AllowedOrigins []string      // CORS origins (default: *)
	PublicDir      string        // Static files served under /public
	RateLimitRPS   float64       // Per-IP requests per second (default: 5)
	RateLimitBurst int           // Per-IP burst (default: 20)
}

// DatabaseConfig selects and configures the genre store.
type DatabaseConfig struct {
	Driver   string // sqlite or postgres
	Path     string // SQLite file (default: {data}/genres.db)
	URL      string // Postgres connection string
	MaxConns int
}

// GeneratorConfig selects the word-count sampler.
type GeneratorConfig struct {
	Sampler          string // cdf or legacy
	LegacyResolution int
}

// ScreenshotConfig configures the external screenshot service.
type ScreenshotConfig struct {
	ServiceURL string
	APIKey     string
	S3Bucket   string
	S3Region   string
	Width      int
	Height     int
	Format     string
	Timeout    time.Duration
}

// Enabled reports whether enough is configured to request screenshots.
func (c ScreenshotConfig) Enabled() bool {
	return c.ServiceURL != "" && c.APIKey != "" && c.S3Bucket != ""
}

// LastFMConfig configures the Last.fm client.
type LastFMConfig struct {
	APIKey  string
	BaseURL string
}

// DeezerConfig configures the Deezer client.
type DeezerConfig struct {
	BaseURL  string
	CacheTTL time.Duration
}

// ShareConfig holds social sharing parameters.
type ShareConfig struct {
	TwitterVia    string
	Hashtags      string
	FacebookAppID string
}

// SearchConfig configures the genre search index.
type SearchConfig struct {
	IndexPath string // Directory, or "memory"
}

// CacheConfig configures the lookup cache.
type CacheConfig struct {
	Path string // Directory, or "memory"
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("genreator", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	siteURL := fs.String("site-url", "", "Public site URL (default: http://localhost:3000)")
	dataPath := fs.String("data-path", "", "Base path for local state (default: ~/.genreator)")
	port := fs.String("port", "", "Server port (default: 3000)")
	dbDriver := fs.String("database-driver", "", "Genre store driver: sqlite or postgres")
	dbPath := fs.String("database-path", "", "SQLite database file")
	dbURL := fs.String("database-url", "", "Postgres connection string")
	sampler := fs.String("sampler", "", "Word-count sampler: cdf or legacy")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists. Existing environment variables win.
	_ = godotenv.Load(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
			Name:        getConfigValue("", "APP_NAME", "music-genre-ator"),
			SiteURL:     strings.TrimRight(getConfigValue(*siteURL, "SITE_URL", "http://localhost:3000"), "/"),
			DataPath:    getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*port, "PORT", "3000"),
			AllowedOrigins: splitList(getConfigValue("", "CORS_ALLOWED_ORIGINS", "*")),
			PublicDir:      getConfigValue("", "PUBLIC_DIR", "public"),
			RateLimitRPS:   getFloatConfigValue("", "RATE_LIMIT_RPS", 5),
			RateLimitBurst: getIntConfigValue("", "RATE_LIMIT_BURST", 20),
		},
		Database: DatabaseConfig{
			Driver:   getConfigValue(*dbDriver, "DATABASE_DRIVER", "sqlite"),
			Path:     getConfigValue(*dbPath, "DATABASE_PATH", ""),
			URL:      getConfigValue(*dbURL, "DATABASE_URL", ""),
			MaxConns: getIntConfigValue("", "DATABASE_MAX_CONNS", 10),
		},
		Generator: GeneratorConfig{
			Sampler:          getConfigValue(*sampler, "GENERATOR_SAMPLER", "cdf"),
			LegacyResolution: getIntConfigValue("", "GENERATOR_LEGACY_RESOLUTION", 10),
		},
		Screenshot: ScreenshotConfig{
			ServiceURL: strings.TrimRight(getConfigValue("", "SCREENSHOT_SERVICE_URL", ""), "/"),
			APIKey:     getConfigValue("", "SCREENSHOT_SERVICE_API_KEY", ""),
			S3Bucket:   getConfigValue("", "SAVE_S3_BUCKET", ""),
			S3Region:   getConfigValue("", "SAVE_S3_REGION", "us-east-1"),
			Width:      getIntConfigValue("", "SCREENSHOT_WIDTH", 1200),
			Height:     getIntConfigValue("", "SCREENSHOT_HEIGHT", 630),
			Format:     getConfigValue("", "SCREENSHOT_FORMAT", "png"),
		},
		LastFM: LastFMConfig{
			APIKey:  getConfigValue("", "LASTFM_API_KEY", ""),
			BaseURL: getConfigValue("", "LASTFM_BASE_URL", "https://ws.audioscrobbler.com"),
		},
		Deezer: DeezerConfig{
			BaseURL: getConfigValue("", "DEEZER_BASE_URL", "https://api.deezer.com"),
		},
		Share: ShareConfig{
			TwitterVia:    getConfigValue("", "SHARE_TWITTER_VIA", "alex_tea"),
			Hashtags:      getConfigValue("", "SHARE_HASHTAGS", "musicgenreator"),
			FacebookAppID: getConfigValue("", "SHARE_FACEBOOK_APP_ID", "2640283582660316"),
		},
		Search: SearchConfig{
			IndexPath: getConfigValue("", "SEARCH_INDEX_PATH", ""),
		},
		Cache: CacheConfig{
			Path: getConfigValue("", "CACHE_PATH", ""),
		},
	}

	durations := []struct {
		target *time.Duration
		envKey string
		def    string
	}{
		{&cfg.Server.ReadTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, "SERVER_WRITE_TIMEOUT", "15s"},
		{&cfg.Server.IdleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
		{&cfg.Screenshot.Timeout, "SCREENSHOT_TIMEOUT", "30s"},
		{&cfg.Deezer.CacheTTL, "DEEZER_CACHE_TTL", "168h"},
	}
	for _, d := range durations {
		value, err := getDurationConfigValue("", d.envKey, d.def)
		if err != nil {
			return nil, err
		}
		*d.target = value
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.App.SiteURL == "" {
		return errors.New("SITE_URL cannot be empty")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("DATABASE_URL is required for postgres")
		}
	default:
		return fmt.Errorf("invalid database driver: %q (must be sqlite or postgres)", c.Database.Driver)
	}

	switch c.Generator.Sampler {
	case "cdf", "legacy":
	default:
		return fmt.Errorf("invalid sampler: %q (must be cdf or legacy)", c.Generator.Sampler)
	}
	if c.Generator.LegacyResolution <= 0 {
		return errors.New("legacy resolution must be positive")
	}

	switch c.Screenshot.Format {
	case "png", "jpeg", "webp":
	default:
		return fmt.Errorf("invalid screenshot format: %q (must be png, jpeg, or webp)", c.Screenshot.Format)
	}
	if c.Screenshot.Width <= 0 || c.Screenshot.Height <= 0 {
		return errors.New("screenshot viewport must be positive")
	}

	if c.Server.RateLimitRPS <= 0 || c.Server.RateLimitBurst <= 0 {
		return errors.New("rate limit must be positive")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}
	if path == MemoryPath {
		return path, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandPaths resolves the data path and the paths derived from it.
func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	if c.App.DataPath, err = expandPath(c.App.DataPath, filepath.Join(homeDir, ".genreator")); err != nil {
		return err
	}
	if c.Database.Path, err = expandPath(c.Database.Path, filepath.Join(c.App.DataPath, "genres.db")); err != nil {
		return err
	}
	if c.Search.IndexPath, err = expandPath(c.Search.IndexPath, filepath.Join(c.App.DataPath, "search")); err != nil {
		return err
	}
	if c.Cache.Path, err = expandPath(c.Cache.Path, filepath.Join(c.App.DataPath, "cache")); err != nil {
		return err
	}
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float64 from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		return defaultValue
	}
	return result
}

// getDurationConfigValue parses a duration from flag, env var, or default.
func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return d, nil
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
