package providers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/musicgenreator/genreator/internal/config"
	"github.com/musicgenreator/genreator/internal/logger"
	"github.com/musicgenreator/genreator/internal/store"
	"github.com/musicgenreator/genreator/internal/store/postgres"
	"github.com/musicgenreator/genreator/internal/store/sqlite"
)

// StoreHandle wraps the genre store with shutdown capability.
type StoreHandle struct {
	store.GenreStore
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the genre store for the configured driver.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s, err := OpenStore(ctx, cfg.Database, log.Logger)
	if err != nil {
		return nil, err
	}

	return &StoreHandle{GenreStore: s}, nil
}

// OpenStore opens the store selected by cfg.Driver.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (store.GenreStore, error) {
	switch cfg.Driver {
	case "postgres":
		s, err := postgres.Open(ctx, cfg.URL, int32(cfg.MaxConns), log) //nolint:gosec // validated small positive value
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		log.Info("Database initialized", "driver", cfg.Driver)
		return s, nil
	case "", "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		s, err := sqlite.Open(cfg.Path, log)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		log.Info("Database initialized", "driver", "sqlite", "path", cfg.Path)
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
