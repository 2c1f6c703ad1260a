package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/spf13/cobra"

	"github.com/musicgenreator/genreator/internal/genre"
)

func newGenerateCmd() *cobra.Command {
	var (
		count      int
		seed       uint64
		sampler    string
		resolution int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print generated genres as phrase<TAB>slug lines",
		Example: `  genreator generate
  genreator generate -n 20
  genreator generate -n 5 --seed 42 --sampler legacy`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return errors.New("-n must be at least 1")
			}

			s, err := genre.SamplerByName(sampler, resolution)
			if err != nil {
				return err
			}

			vocab, err := genre.DefaultVocabulary()
			if err != nil {
				return err
			}

			opts := []genre.Option{genre.WithSampler(s)}
			if cmd.Flags().Changed("seed") {
				opts = append(opts, genre.WithSource(rand.New(rand.NewPCG(seed, seed))))
			}

			gen, err := genre.NewGenerator(vocab, opts...)
			if err != nil {
				return err
			}

			var out strings.Builder
			for range count {
				phrase, err := gen.Generate()
				if err != nil {
					return err
				}
				fmt.Fprintf(&out, "%s\t%s\n", phrase, genre.ToSlug(phrase))
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out.String())
			return err
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of genres to generate")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for reproducible output")
	cmd.Flags().StringVar(&sampler, "sampler", "cdf", "word-count sampler: cdf or legacy")
	cmd.Flags().IntVar(&resolution, "resolution", genre.DefaultResolution, "legacy sampler resolution")
	return cmd
}

func newSlugCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "slug <phrase...>",
		Short:   "Print the slug a phrase is stored under",
		Example: `  genreator slug "post- rock jazz"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), genre.ToSlug(strings.Join(args, " ")))
			return err
		},
	}
}
