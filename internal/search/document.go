// Package search provides full-text search over generated genres using Bleve.
package search

import (
	"github.com/musicgenreator/genreator/internal/domain"
)

// GenreDocument is the indexed form of a genre. The slug is the document ID.
type GenreDocument struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"` // Unix milliseconds
}

// NewGenreDocument converts a genre into its index document.
func NewGenreDocument(g *domain.Genre) *GenreDocument {
	return &GenreDocument{
		Slug:      g.Slug,
		Name:      g.Name,
		CreatedAt: g.CreatedAt.UnixMilli(),
	}
}

// ToMap converts the document to the field layout used by the mapping.
func (d *GenreDocument) ToMap() map[string]any {
	return map[string]any{
		"slug":       d.Slug,
		"name":       d.Name,
		"created_at": d.CreatedAt,
	}
}
