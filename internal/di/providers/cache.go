package providers

import (
	"github.com/samber/do/v2"

	"github.com/musicgenreator/genreator/internal/cache"
	"github.com/musicgenreator/genreator/internal/config"
	"github.com/musicgenreator/genreator/internal/logger"
)

// CacheHandle wraps the lookup cache with shutdown capability.
type CacheHandle struct {
	*cache.Cache
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	return h.Close()
}

// ProvideCache provides the Badger lookup cache.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	c, err := cache.Open(cfg.Cache.Path, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Lookup cache initialized", "path", cfg.Cache.Path)
	return &CacheHandle{Cache: c}, nil
}
