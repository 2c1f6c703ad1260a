package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// DefaultLimit is the page size when none is given.
const DefaultLimit = 20

// Result is one page of search hits, best match first.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit is a single matching genre.
type Hit struct {
	Slug      string  `json:"slug"`
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	Highlight string  `json:"highlight,omitempty"`
}

// Slugs returns the hit slugs in rank order.
func (r *Result) Slugs() []string {
	slugs := make([]string, len(r.Hits))
	for i, h := range r.Hits {
		slugs[i] = h.Slug
	}
	return slugs
}

// Search finds genres whose names match q. An empty query matches every
// genre, newest first.
func (s *Index) Search(ctx context.Context, q string, limit, offset int) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultLimit
	}
	q = strings.TrimSpace(q)

	req := bleve.NewSearchRequestOptions(buildQuery(q), limit, offset, false)
	if q == "" {
		req.SortBy([]string{"-created_at"})
	} else {
		req.SortBy([]string{"-_score", "-created_at"})
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("name")
	}
	req.Fields = []string{"slug", "name"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  q,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		hit := Hit{Slug: h.ID, Score: h.Score}
		if n, ok := h.Fields["name"].(string); ok {
			hit.Name = n
		}
		if frags := h.Fragments["name"]; len(frags) > 0 {
			hit.Highlight = frags[0]
		}
		result.Hits = append(result.Hits, hit)
	}
	return result, nil
}

// buildQuery matches the name, with fuzzy and prefix fallbacks for typos
// and search-as-you-type, plus an exact slug match.
func buildQuery(q string) query.Query {
	if q == "" {
		return bleve.NewMatchAllQuery()
	}

	nameMatch := bleve.NewMatchQuery(q)
	nameMatch.SetField("name")
	nameMatch.SetBoost(3.0)

	slugMatch := bleve.NewTermQuery(strings.ToLower(q))
	slugMatch.SetField("slug")
	slugMatch.SetBoost(5.0)

	fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
	fuzzy.SetFuzziness(1)
	fuzzy.SetField("name")
	fuzzy.SetBoost(0.8)

	queries := []query.Query{nameMatch, slugMatch, fuzzy}

	// Prefix on the last word for autocomplete (minimum 2 chars)
	words := strings.Fields(strings.ToLower(q))
	if last := words[len(words)-1]; len(last) >= 2 {
		prefix := bleve.NewPrefixQuery(last)
		prefix.SetField("name")
		prefix.SetBoost(0.5)
		queries = append(queries, prefix)
	}

	return bleve.NewDisjunctionQuery(queries...)
}
