// Package di provides dependency injection configuration for the genreator server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/musicgenreator/genreator/internal/config"
	"github.com/musicgenreator/genreator/internal/di/providers"
	"github.com/musicgenreator/genreator/internal/genre"
	"github.com/musicgenreator/genreator/internal/logger"
	"github.com/musicgenreator/genreator/internal/music/deezer"
	"github.com/musicgenreator/genreator/internal/music/lastfm"
	"github.com/musicgenreator/genreator/internal/screenshot"
	"github.com/musicgenreator/genreator/internal/service"
	"github.com/musicgenreator/genreator/internal/share"
)

// NewContainer creates and configures the DI container with all providers.
// Configuration is loaded from the process arguments.
func NewContainer() *do.RootScope {
	injector := do.New()
	do.Provide(injector, providers.ProvideConfig)
	register(injector)
	return injector
}

// NewContainerWithConfig is NewContainer with configuration already loaded.
// The CLI uses it after parsing its own flags.
func NewContainerWithConfig(cfg *config.Config) *do.RootScope {
	injector := do.New()
	do.ProvideValue(injector, cfg)
	register(injector)
	return injector
}

func register(injector do.Injector) {
	// Core infrastructure
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideCache)

	// Outbound clients
	do.Provide(injector, providers.ProvideScreenshotClient)
	do.Provide(injector, providers.ProvideLastFMClient)
	do.Provide(injector, providers.ProvideDeezerClient)

	// Business services
	do.Provide(injector, providers.ProvideGenerator)
	do.Provide(injector, providers.ProvideGenreService)
	do.Provide(injector, providers.ProvideMusicService)
	do.Provide(injector, providers.ProvideShareBuilder)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)
}

// Bootstrap initializes all services and starts the HTTP server.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	for _, invoke := range []func() error{
		invokeErr[*providers.StoreHandle](injector),
		invokeErr[*providers.SearchIndexHandle](injector),
		invokeErr[*providers.CacheHandle](injector),
		invokeErr[*screenshot.Client](injector),
		invokeErr[*lastfm.Client](injector),
		invokeErr[*deezer.Client](injector),
		invokeErr[*genre.Generator](injector),
		invokeErr[*service.GenreService](injector),
		invokeErr[*service.MusicService](injector),
		invokeErr[*share.Builder](injector),
		invokeErr[*providers.HTTPServerHandle](injector),
	} {
		if err := invoke(); err != nil {
			return err
		}
	}

	// Trigger search reindex if needed
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}

func invokeErr[T any](injector do.Injector) func() error {
	return func() error {
		_, err := do.Invoke[T](injector)
		return err
	}
}
