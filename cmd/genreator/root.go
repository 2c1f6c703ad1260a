package main

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/musicgenreator/genreator/internal/config"
	"github.com/musicgenreator/genreator/internal/di"
	"github.com/musicgenreator/genreator/internal/di/providers"
	"github.com/musicgenreator/genreator/internal/logger"
	"github.com/musicgenreator/genreator/internal/service"
)

// storeFlags are the persistent flags forwarded to config.LoadConfig.
type storeFlags struct {
	envFile  string
	logLevel string
	driver   string
	path     string
	url      string
}

func (f *storeFlags) args() []string {
	args := []string{"-env-file", f.envFile}
	for _, kv := range [][2]string{
		{"-log-level", f.logLevel},
		{"-database-driver", f.driver},
		{"-database-path", f.path},
		{"-database-url", f.url},
	} {
		if kv[1] != "" {
			args = append(args, kv[0], kv[1])
		}
	}
	return args
}

func newRootCmd() *cobra.Command {
	flags := &storeFlags{}

	root := &cobra.Command{
		Use:   "genreator",
		Short: "Generate made-up music genres",
		Long: `genreator generates music genre names from a weighted word list and
manages the store the web server reads them from.

Store commands read the same environment and .env file as the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.envFile, "env-file", ".env", "path to .env file")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&flags.driver, "database-driver", "", "genre store driver: sqlite or postgres")
	pf.StringVar(&flags.path, "database-path", "", "SQLite database file")
	pf.StringVar(&flags.url, "database-url", "", "Postgres connection string")

	root.AddCommand(
		newGenerateCmd(),
		newSlugCmd(),
		newImportCmd(flags),
		newExportCmd(flags),
		newSeedCmd(flags),
	)
	return root
}

// app is the slice of the container the store commands need.
type app struct {
	injector *do.RootScope
	store    *providers.StoreHandle
	log      *logger.Logger
}

func openApp(flags *storeFlags) (*app, error) {
	cfg, err := config.LoadConfig(flags.args())
	if err != nil {
		return nil, err
	}

	injector := di.NewContainerWithConfig(cfg)
	s, err := do.Invoke[*providers.StoreHandle](injector)
	if err != nil {
		_ = injector.Shutdown()
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &app{
		injector: injector,
		store:    s,
		log:      do.MustInvoke[*logger.Logger](injector),
	}, nil
}

// genreService resolves the genre service, which also opens the search index.
func (a *app) genreService() (*service.GenreService, error) {
	return do.Invoke[*service.GenreService](a.injector)
}

// reindex brings the search index in line with the store after bulk writes.
func (a *app) reindex(ctx context.Context) error {
	svc, err := a.genreService()
	if err != nil {
		return err
	}
	n, err := svc.Reindex(ctx)
	if err != nil {
		return fmt.Errorf("reindex: %w", err)
	}
	a.log.Debug("search index rebuilt", "genres", n)
	return nil
}

func (a *app) close() {
	_ = a.injector.Shutdown()
}
