// Package api provides the HTTP server: the HTML pages and the JSON API for generated genres.
package api

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/musicgenreator/genreator/internal/http/response"
	"github.com/musicgenreator/genreator/internal/ratelimit"
)

// Options configures the HTTP surface.
type Options struct {
	AppName        string
	SiteURL        string
	Environment    string
	PublicDir      string   // Static assets; empty disables static routes
	AllowedOrigins []string // CORS origins for the JSON API
	RateLimitRPS   float64  // Per-IP requests per second; zero disables limiting
	RateLimitBurst int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services *Services
	opts     Options
	router   *chi.Mux
	api      huma.API
	pages    map[string]*template.Template
	limiter  *ratelimit.KeyedRateLimiter
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, opts Options, logger *slog.Logger) (*Server, error) {
	if services == nil || services.Genre == nil {
		return nil, errors.New("api: genre service is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.AppName == "" {
		opts.AppName = "Music Genre-ator"
	}
	opts.SiteURL = strings.TrimRight(opts.SiteURL, "/")

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	s := &Server{
		services: services,
		opts:     opts,
		router:   chi.NewRouter(),
		pages:    pages,
		logger:   logger,
	}
	if opts.RateLimitRPS > 0 {
		s.limiter = ratelimit.New(opts.RateLimitRPS, max(opts.RateLimitBurst, 1))
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig(opts.AppName+" API", "1.0.0")
	humaConfig.Info.Description = "Generate, look up and share made-up music genres"
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, mainly for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases the rate limiter's background goroutine.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(s.opts.AllowedOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Retry-After", "X-Request-ID"},
		MaxAge:         300,
	}))
	if s.limiter != nil {
		s.router.Use(RateLimitMiddleware(s.limiter, s.logger))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerGenreRoutes()
	s.registerMusicRoutes()

	s.router.Get("/robots.txt", s.handleRobots)
	s.router.Get("/favicon.ico", http.NotFound)

	if s.opts.PublicDir != "" {
		for _, prefix := range staticPrefixes {
			dir := http.Dir(filepath.Join(s.opts.PublicDir, strings.TrimPrefix(prefix, "/")))
			if prefix == "/public" {
				dir = http.Dir(s.opts.PublicDir)
			}
			s.router.Handle(prefix+"/*", http.StripPrefix(prefix, staticFiles(dir)))
		}
	}

	s.router.Get("/", s.handleIndexPage)
	s.router.Get("/screenshot/{slug}", s.handleScreenshotPage)
	s.router.Get("/listen/{slug}", s.handleListenPage)
	s.router.Get("/{slug}", s.handleGenrePage)

	s.router.NotFound(s.handleNotFound)
}

// handleNotFound answers API paths with a JSON envelope and everything else with the error page.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		response.NotFound(w, "route not found", s.logger)
		return
	}
	s.renderError(w, http.StatusNotFound, "Genre not found")
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// staticFiles serves a directory without listings and with a day of caching.
func staticFiles(dir http.FileSystem) http.Handler {
	fs := http.FileServer(dir)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", CacheOneDay)
		fs.ServeHTTP(w, r)
	})
}
