package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fractal-lba/rhymer/internal/app"
	"github.com/fractal-lba/rhymer/internal/config"
	"github.com/fractal-lba/rhymer/internal/logging"
)

// globalFlags override values from the config file and environment.
type globalFlags struct {
	configFile string
	backend    string
	dictPath   string
	dsn        string
	theme      string
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	rootCmd := &cobra.Command{
		Use:   "rhymer",
		Short: "Highlight rhyming words in text",
		Long: `Groups words that rhyme (by CMU pronouncing dictionary transcription)
and paints every occurrence of each group in its own color.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&g.configFile, "config", "c", "", "Config file (YAML); defaults to $"+config.PathEnv+" or ./rhymer.yaml")
	pf.StringVar(&g.backend, "backend", "", "Dictionary backend: memory, sqlite or postgres")
	pf.StringVar(&g.dictPath, "dict", "", "Dictionary file (memory) or database file (sqlite)")
	pf.StringVar(&g.dsn, "dsn", "", "Postgres connection string")
	pf.StringVar(&g.theme, "theme", "", "Terminal theme: light or dark")
	pf.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(highlightCmd(&g))
	rootCmd.AddCommand(watchCmd(&g))
	rootCmd.AddCommand(dictCmd(&g))

	return rootCmd
}

// loadConfig reads configuration, applies command-line overrides, then
// validates the result once.
func (g *globalFlags) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.configFile != "" {
		cfg, err = config.ReadFile(g.configFile, true)
	} else {
		cfg, err = config.Read()
	}
	if err != nil {
		return nil, err
	}

	if g.backend != "" {
		cfg.Dictionary.Backend = g.backend
	}
	if g.dictPath != "" {
		cfg.Dictionary.Path = g.dictPath
	}
	if g.dsn != "" {
		cfg.Dictionary.DSN = g.dsn
	}
	if g.theme != "" {
		cfg.Render.Theme = g.theme
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// openApp loads configuration and builds the engine.
func (g *globalFlags) openApp(ctx context.Context) (*app.App, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, logging.New(cfg.Log))
}
