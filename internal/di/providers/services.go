package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/musicgenreator/genreator/internal/config"
	"github.com/musicgenreator/genreator/internal/genre"
	"github.com/musicgenreator/genreator/internal/logger"
	"github.com/musicgenreator/genreator/internal/music/deezer"
	"github.com/musicgenreator/genreator/internal/music/lastfm"
	"github.com/musicgenreator/genreator/internal/screenshot"
	"github.com/musicgenreator/genreator/internal/service"
	"github.com/musicgenreator/genreator/internal/share"
)

// ProvideGenerator provides the genre phrase generator with the configured sampler.
func ProvideGenerator(i do.Injector) (*genre.Generator, error) {
	cfg := do.MustInvoke[*config.Config](i)

	vocab, err := genre.DefaultVocabulary()
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}

	sampler, err := genre.SamplerByName(cfg.Generator.Sampler, cfg.Generator.LegacyResolution)
	if err != nil {
		return nil, err
	}

	return genre.NewGenerator(vocab, genre.WithSampler(sampler))
}

// ProvideGenreService provides the genre service. It implements do's
// context shutdowner, so in-flight screenshot requests are awaited on shutdown.
func ProvideGenreService(i do.Injector) (*service.GenreService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	generator := do.MustInvoke[*genre.Generator](i)
	shots := do.MustInvoke[*screenshot.Client](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewGenreService(storeHandle, generator, indexHandle.Index, shots, log.WithField("component", "genres").Logger), nil
}

// ProvideMusicService provides the Last.fm and Deezer lookup service.
func ProvideMusicService(i do.Injector) (*service.MusicService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	lastfmClient := do.MustInvoke[*lastfm.Client](i)
	deezerClient := do.MustInvoke[*deezer.Client](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMusicService(lastfmClient, deezerClient, cacheHandle.Cache, cfg.Deezer.CacheTTL, log.WithField("component", "music").Logger), nil
}

// ProvideShareBuilder provides the share link builder.
func ProvideShareBuilder(i do.Injector) (*share.Builder, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return share.NewBuilder(share.Config{
		SiteURL:       cfg.App.SiteURL,
		TwitterVia:    cfg.Share.TwitterVia,
		Hashtags:      cfg.Share.Hashtags,
		FacebookAppID: cfg.Share.FacebookAppID,
	}, genre.GlobalSource()), nil
}
