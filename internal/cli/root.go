// Package cli implements the latex-speech command line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"latex-speech/internal/cache"
	"latex-speech/internal/config"
	"latex-speech/internal/logger"
	"latex-speech/internal/pattern"
	"latex-speech/internal/store"
)

var (
	cfg *config.Config

	configPath string
	verbose    bool

	rootCmd = &cobra.Command{
		Use:   "latex-speech",
		Short: "Convert LaTeX math expressions into natural-language speech text",
		Long: `latex-speech validates LaTeX math expressions and rewrites them into
speech text through prioritized, domain-aware pronunciation patterns.

Examples:
  latex-speech check '\frac{1}{2} + x'
  latex-speech speak '\int_{0}^{1} x^2' --audience graduate
  latex-speech patterns list
  latex-speech patterns lint ./patterns`,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging to stderr")

	rootCmd.AddCommand(speakCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(patternsCmd)
}

func initConfig() {
	level := logger.LevelWarn
	if verbose {
		level = logger.LevelDebug
	}
	if err := logger.Init(&logger.Config{Level: level, EnableConsole: true}); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}

	manager, err := config.NewManager(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := manager.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg = manager.Get()
}

// openStore returns the configured pattern store: Postgres when a database
// URL is set, otherwise pattern files loaded into memory. The returned
// closer is non-nil only for stores holding external connections.
func openStore(ctx context.Context) (pattern.Store, func(), error) {
	if cfg.DatabaseURL != "" {
		pg, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	}

	loaded, err := pattern.LoadDir(cfg.PatternDir)
	if err != nil {
		return nil, nil, err
	}
	mem := pattern.NewMemoryStore()
	mem.Add(loaded...)
	return mem, func() {}, nil
}

// openCache returns the configured result cache: Redis when a URL is set,
// otherwise an in-process cache that lives for this invocation only.
func openCache(ctx context.Context) (cache.Cache, func(), error) {
	if cfg.RedisURL != "" {
		client, err := cache.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		rc := cache.NewRedisCache(client, cache.DefaultTTL)
		return rc, func() { rc.Close() }, nil
	}
	return cache.NewMemoryCache(cache.DefaultTTL), func() {}, nil
}
