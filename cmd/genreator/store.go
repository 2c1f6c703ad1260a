package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/musicgenreator/genreator/internal/transfer"
)

func newImportCmd(flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "import <file.json>",
		Short:   "Import [{slug, genre}] records into the store",
		Example: `  genreator import genres_export.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			out := cmd.OutOrStdout()
			stats, err := transfer.Import(cmd.Context(), a.store, f, transfer.Options{
				Logger: a.log.Logger,
				Progress: func(done, total int) {
					fmt.Fprintf(out, "Progress: %d/%d\n", done, total)
				},
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "\nImport complete!\nImported: %d\nDuplicates: %d\nInvalid: %d\nTotal: %d\n",
				stats.Imported, stats.Duplicates, stats.Invalid, stats.Total)

			if stats.Imported > 0 {
				return a.reindex(cmd.Context())
			}
			return nil
		},
	}
}

func newExportCmd(flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file.json]",
		Short: "Export the store as [{slug, genre}] records",
		Long:  "Writes to the named file, or to stdout when no file is given.",
		Example: `  genreator export genres_export.json
  genreator export > genres.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			var w io.Writer = cmd.OutOrStdout()
			if len(args) == 1 {
				f, err := os.Create(args[0])
				if err != nil {
					return err
				}
				defer func() { err = errors.Join(err, f.Close()) }()
				w = f
			}

			n, err := transfer.Export(cmd.Context(), a.store, w)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d genres to %s\n", n, args[0])
			}
			return nil
		},
	}
}

func newSeedCmd(flags *storeFlags) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:     "seed",
		Short:   "Generate genres into the store",
		Example: `  genreator seed -n 500`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return errors.New("-n must be at least 1")
			}

			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			svc, err := a.genreService()
			if err != nil {
				return err
			}

			created := 0
			for i := range count {
				result, err := svc.Generate(cmd.Context())
				if err != nil {
					return err
				}
				if result.Created {
					created++
				}
				if (i+1)%transfer.ProgressInterval == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Progress: %d/%d\n", i+1, count)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d new genres (%d already stored)\n", created, count-created)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 100, "number of genres to generate")
	return cmd
}
