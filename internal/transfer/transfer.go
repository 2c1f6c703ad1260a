// Package transfer imports and exports genres as a JSON array of {slug, genre} records.
package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/musicgenreator/genreator/internal/domain"
	"github.com/musicgenreator/genreator/internal/genre"
	"github.com/musicgenreator/genreator/internal/id"
	"github.com/musicgenreator/genreator/internal/store"
	"github.com/musicgenreator/genreator/internal/validation"
)

// ProgressInterval is how many records pass between progress reports.
const ProgressInterval = 100

const exportPageSize = 100

// Record is one exported genre.
type Record struct {
	Slug  string `json:"slug" validate:"required,slug,max=500"`
	Genre string `json:"genre" validate:"required,max=500"`
}

// Stats summarizes an import.
type Stats struct {
	Imported   int `json:"imported"`
	Duplicates int `json:"duplicates"`
	Invalid    int `json:"invalid"`
	Total      int `json:"total"`
}

// ProgressFunc is called every ProgressInterval records and once at the end.
type ProgressFunc func(done, total int)

// Options configures an import.
type Options struct {
	Progress ProgressFunc
	Logger   *slog.Logger
}

// Import reads records from r and stores the ones not already present.
// Invalid records and duplicate slugs are counted, not fatal.
func Import(ctx context.Context, s store.GenreStore, r io.Reader, opts Options) (*Stats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	v := validation.New()
	stats := &Stats{Total: len(records)}
	now := time.Now().UTC()

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		rec = normalize(rec)
		if err := v.Validate(rec); err != nil {
			logger.Debug("skipping invalid record", "index", i, "slug", rec.Slug, "error", err)
			stats.Invalid++
		} else if err := create(ctx, s, rec, now); err != nil {
			if !errors.Is(err, store.ErrAlreadyExists) {
				return stats, fmt.Errorf("import %q: %w", rec.Slug, err)
			}
			stats.Duplicates++
		} else {
			stats.Imported++
		}

		if opts.Progress != nil && (i+1)%ProgressInterval == 0 {
			opts.Progress(i+1, stats.Total)
		}
	}

	if opts.Progress != nil && stats.Total%ProgressInterval != 0 {
		opts.Progress(stats.Total, stats.Total)
	}

	logger.Info("import complete",
		"imported", stats.Imported,
		"duplicates", stats.Duplicates,
		"invalid", stats.Invalid,
		"total", stats.Total,
	)
	return stats, nil
}

// normalize trims and lowercases the slug. A record without a slug gets
// the one its phrase would generate.
func normalize(rec Record) Record {
	rec.Genre = strings.TrimSpace(rec.Genre)
	rec.Slug = strings.ToLower(strings.TrimSpace(rec.Slug))
	if rec.Slug == "" {
		rec.Slug = genre.ToSlug(rec.Genre)
	}
	return rec
}

func create(ctx context.Context, s store.GenreStore, rec Record, createdAt time.Time) error {
	genreID, err := id.NewGenreID()
	if err != nil {
		return err
	}
	return s.CreateGenre(ctx, &domain.Genre{
		ID:        genreID,
		Name:      rec.Genre,
		Slug:      rec.Slug,
		CreatedAt: createdAt,
	})
}

// Export writes every stored genre to w, newest first, and returns the count.
func Export(ctx context.Context, s store.GenreStore, w io.Writer) (int, error) {
	records := make([]Record, 0, exportPageSize)
	for offset := 0; ; offset += exportPageSize {
		genres, err := s.ListGenres(ctx, exportPageSize, offset)
		if err != nil {
			return 0, fmt.Errorf("list genres: %w", err)
		}
		for _, g := range genres {
			records = append(records, Record{Slug: g.Slug, Genre: g.Name})
		}
		if len(genres) < exportPageSize {
			break
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return 0, fmt.Errorf("encode records: %w", err)
	}
	return len(records), nil
}
