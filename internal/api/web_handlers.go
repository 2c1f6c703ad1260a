package api

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/musicgenreator/genreator/internal/domain"
	domainerrors "github.com/musicgenreator/genreator/internal/errors"
	"github.com/musicgenreator/genreator/internal/http/response"
	"github.com/musicgenreator/genreator/internal/music"
)

//go:embed templates/*.html
var templates embed.FS

// Pages rendered inside layout.html. screenshot.html stands alone.
var layoutPages = []string{"index.html", "listen.html", "error.html"}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(layoutPages)+1)
	for _, name := range layoutPages {
		tmpl, err := template.ParseFS(templates, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	tmpl, err := template.ParseFS(templates, "templates/screenshot.html")
	if err != nil {
		return nil, fmt.Errorf("parse template screenshot.html: %w", err)
	}
	pages["screenshot.html"] = tmpl
	return pages, nil
}

// genrePageData contains data for the genre page templates.
type genrePageData struct {
	AppName         string
	SiteURL         string
	Title           string
	Genre           string
	Slug            string
	PageURL         string
	Description     string
	SocialMediaCard string
	ShareContent    string
	TwitterLink     string
	FacebookLink    string
	BlueskyLink     string
}

// listenPageData contains data for the listen page template.
type listenPageData struct {
	genrePageData
	Links music.Links
}

// errorPageData contains data for the error page template.
type errorPageData struct {
	AppName     string
	SiteURL     string
	Title       string
	Description string
}

// handleIndexPage generates a genre and renders it.
// GET /
func (s *Server) handleIndexPage(w http.ResponseWriter, r *http.Request) {
	result, err := s.services.Genre.Generate(r.Context())
	if err != nil {
		s.renderServiceError(w, err)
		return
	}

	data := s.genrePage(result.Genre)
	// A fresh genre on every load.
	w.Header().Set("Cache-Control", CacheGenerated)
	s.render(w, http.StatusOK, "index.html", data)
}

// handleGenrePage renders a stored genre.
// GET /{slug}
func (s *Server) handleGenrePage(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookupGenre(w, r)
	if !ok {
		return
	}

	s.services.Genre.EnsureScreenshot(g.Slug)

	data := s.genrePage(g)
	if image := s.services.Genre.ImageURL(g.Slug); image != "" {
		data.SocialMediaCard = image
	}
	s.render(w, http.StatusOK, "index.html", data)
}

// handleScreenshotPage renders the layout the screenshot service captures.
// GET /screenshot/{slug}
func (s *Server) handleScreenshotPage(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookupGenre(w, r)
	if !ok {
		return
	}
	s.render(w, http.StatusOK, "screenshot.html", s.genrePage(g))
}

// handleListenPage renders popular tracks for a stored genre.
// GET /listen/{slug}
func (s *Server) handleListenPage(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookupGenre(w, r)
	if !ok {
		return
	}

	links := music.BuildLinks(g.Name, nil)
	if s.services.Music != nil {
		links = s.services.Music.Listen(r.Context(), g.Name)
	}

	data := listenPageData{genrePageData: s.genrePage(g), Links: links}
	data.Title = "Listen to " + g.Name
	s.render(w, http.StatusOK, "listen.html", data)
}

// handleRobots allows all crawlers.
// GET /robots.txt
func (s *Server) handleRobots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", CacheOneDay)
	_, _ = w.Write([]byte("User-agent: *\nAllow: /\n"))
}

// lookupGenre loads the genre named by the slug URL parameter, rendering the error page when it cannot.
func (s *Server) lookupGenre(w http.ResponseWriter, r *http.Request) (*domain.Genre, bool) {
	g, err := s.services.Genre.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.renderServiceError(w, err)
		return nil, false
	}
	return g, true
}

func (s *Server) genrePage(g *domain.Genre) genrePageData {
	data := genrePageData{
		AppName: s.opts.AppName,
		SiteURL: s.opts.SiteURL,
		Title:   g.Name,
		Genre:   g.Name,
		Slug:    g.Slug,
		PageURL: s.opts.SiteURL + g.Path(),
	}

	if b := s.services.Share; b != nil {
		links := b.Links(g.Name, g.Slug)
		data.PageURL = b.PageURL(g.Slug)
		data.Description = b.Description(g.Name)
		data.ShareContent = b.Content(g.Name, g.Slug)
		data.SocialMediaCard = b.SocialCard()
		data.TwitterLink = links.Twitter
		data.FacebookLink = links.Facebook
		data.BlueskyLink = links.Bluesky
	}
	return data
}

func (s *Server) renderServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrNotFound), errors.Is(err, domainerrors.ErrValidation):
		s.renderError(w, http.StatusNotFound, "Genre not found")
	default:
		s.logger.Error("Page request failed", "error", err)
		s.renderError(w, response.StatusFor(err), "Something went wrong")
	}
}

func (s *Server) renderError(w http.ResponseWriter, status int, description string) {
	s.render(w, status, "error.html", errorPageData{
		AppName:     s.opts.AppName,
		SiteURL:     s.opts.SiteURL,
		Title:       fmt.Sprintf("%d error", status),
		Description: description,
	})
}

// render executes into a buffer so a template failure can still produce a clean 500.
func (s *Server) render(w http.ResponseWriter, status int, page string, data any) {
	tmpl, ok := s.pages[page]
	if !ok {
		s.logger.Error("Unknown page template", "page", page)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, templateEntry(page), data); err != nil {
		s.logger.Error("Failed to render template", "page", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug("Failed to write page", "page", page, "error", err)
	}
}

func templateEntry(page string) string {
	if page == "screenshot.html" {
		return page
	}
	return "layout.html"
}
