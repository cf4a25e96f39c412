package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fractal-lba/rhymer/internal/app"
	"github.com/fractal-lba/rhymer/internal/config"
	"github.com/fractal-lba/rhymer/internal/dictionary"
	"github.com/fractal-lba/rhymer/internal/logging"
	"github.com/fractal-lba/rhymer/pkg/phonetic"
)

// importer is implemented by database-backed sources.
type importer interface {
	Import(ctx context.Context, m *dictionary.Memory) (int64, error)
	Count(ctx context.Context) (int64, error)
}

func dictCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Manage and query the pronunciation dictionary",
	}

	cmd.AddCommand(dictImportCmd(g))
	cmd.AddCommand(dictLookupCmd(g))
	cmd.AddCommand(dictInfoCmd(g))

	return cmd
}

func dictImportCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <cmudict[.xz]>",
		Short: "Import a CMUdict file into the sqlite or postgres backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Dictionary.Backend == config.BackendMemory {
				return fmt.Errorf("import needs the sqlite or postgres backend (got memory)")
			}

			m, err := dictionary.Open(args[0])
			if err != nil {
				return err
			}

			// Import writes to the database directly, bypassing any Redis cache.
			src, err := app.OpenSource(ctx, cfg.Dictionary, config.RedisConfig{}, logging.New(cfg.Log))
			if err != nil {
				return err
			}
			defer src.Close()

			db, ok := src.(importer)
			if !ok {
				return fmt.Errorf("backend %s does not support import", cfg.Dictionary.Backend)
			}

			inserted, err := db.Import(ctx, m)
			if err != nil {
				return err
			}
			total, err := db.Count(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d transcriptions for %d words from %s\n", inserted, m.Len(), args[0])
			fmt.Fprintf(out, "Fingerprint: %s\n", m.Fingerprint())
			fmt.Fprintf(out, "Words in %s backend: %d\n", cfg.Dictionary.Backend, total)
			return nil
		},
	}
}

func dictLookupCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <word>...",
		Short: "Print transcriptions and rhyme keys for words",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			src, err := app.OpenSource(ctx, cfg.Dictionary, cfg.Cache.Redis, logging.New(cfg.Log))
			if err != nil {
				return err
			}
			defer src.Close()

			out := cmd.OutOrStdout()
			for _, arg := range args {
				word := strings.ToLower(arg)
				variants, err := src.Lookup(ctx, word)
				if err != nil {
					return fmt.Errorf("lookup %q: %w", word, err)
				}
				if len(variants) == 0 {
					fmt.Fprintf(out, "%s\t(not found)\n", word)
					continue
				}
				for i, v := range variants {
					key, ok := phonetic.ParsePhones(v).RhymeKey()
					if !ok {
						key = "-"
					}
					fmt.Fprintf(out, "%s\t%d\t%s\t%s\n", word, i+1, v, key)
				}
			}
			return nil
		},
	}
}

func dictInfoCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show dictionary size and fingerprint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			src, err := app.OpenSource(ctx, cfg.Dictionary, config.RedisConfig{}, logging.New(cfg.Log))
			if err != nil {
				return err
			}
			defer src.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backend: %s\n", cfg.Dictionary.Backend)
			switch s := src.(type) {
			case *dictionary.Memory:
				fmt.Fprintf(out, "Words: %d\n", s.Len())
				fmt.Fprintf(out, "Fingerprint: %s\n", s.Fingerprint())
			case importer:
				n, err := s.Count(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Words: %d\n", n)
			}
			return nil
		},
	}
}
