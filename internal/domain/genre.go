// Package domain contains the core types shared across the server.
package domain

import "time"

// Genre is a generated genre name stored under its slug.
type Genre struct {
	ID        string    `json:"id"`
	Name      string    `json:"genre"` // Phrase as generated: "post-rock jazz"
	Slug      string    `json:"slug"`  // URL key: "postrock-jazz"
	CreatedAt time.Time `json:"created_at"`
}

// Path returns the page path for the genre.
func (g *Genre) Path() string {
	return "/" + g.Slug
}
