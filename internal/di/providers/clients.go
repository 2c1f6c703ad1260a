package providers

import (
	"github.com/samber/do/v2"

	"github.com/musicgenreator/genreator/internal/config"
	"github.com/musicgenreator/genreator/internal/logger"
	"github.com/musicgenreator/genreator/internal/music/deezer"
	"github.com/musicgenreator/genreator/internal/music/lastfm"
	"github.com/musicgenreator/genreator/internal/screenshot"
)

// ProvideScreenshotClient provides the screenshot service client.
func ProvideScreenshotClient(i do.Injector) (*screenshot.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := screenshot.NewClient(screenshot.Config{
		ServiceURL:  cfg.Screenshot.ServiceURL,
		APIKey:      cfg.Screenshot.APIKey,
		PageBaseURL: cfg.App.SiteURL + "/screenshot/",
		AppName:     cfg.App.Name,
		S3Bucket:    cfg.Screenshot.S3Bucket,
		S3Region:    cfg.Screenshot.S3Region,
		Width:       cfg.Screenshot.Width,
		Height:      cfg.Screenshot.Height,
		Format:      cfg.Screenshot.Format,
		Timeout:     cfg.Screenshot.Timeout,
	}, log.WithField("component", "screenshot").Logger)

	if !client.Enabled() {
		log.Info("Screenshot service not configured, social cards use stock images")
	}
	return client, nil
}

// ProvideLastFMClient provides the Last.fm client.
func ProvideLastFMClient(i do.Injector) (*lastfm.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := lastfm.NewClient(cfg.LastFM.BaseURL, cfg.LastFM.APIKey, log.WithField("component", "lastfm").Logger)
	if !client.Configured() {
		log.Warn("LASTFM_API_KEY not set, listen pages fall back to search links")
	}
	return client, nil
}

// ProvideDeezerClient provides the Deezer client.
func ProvideDeezerClient(i do.Injector) (*deezer.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return deezer.NewClient(cfg.Deezer.BaseURL, log.WithField("component", "deezer").Logger), nil
}
