package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/config"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/fetch"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/pagecache"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/pagecache/sqlite"
)

var (
	loader  config.Loader
	verbose bool
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "appint",
	Short: "appint extracts, normalizes and analyzes the integrations of app store listings.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
	SilenceUsage: true,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&loader.AliasesPath, "aliases", "", "alias vocabulary YAML (default: built-in)")
	f.StringVar(&loader.DenylistPath, "denylist", "", "deny-list YAML (default: built-in)")
	f.StringVar(&loader.ExtractorPath, "extractor", "", "extractor YAML (default: built-in)")
	f.StringVar(&loader.CategoriesPath, "categories", "", "category rules YAML (default: built-in)")
	f.StringVar(&loader.SettingsPath, "settings", "", "thresholds and fetcher settings YAML (default: built-in)")
	f.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func loadComponents() (*config.Components, error) {
	comp, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return comp, nil
}

// fetchFlags are shared by the commands that reach the app store.
type fetchFlags struct {
	enabled bool
	cache   string
}

func (f *fetchFlags) register(cmd *cobra.Command, optional bool) {
	if optional {
		cmd.Flags().BoolVar(&f.enabled, "fetch", false, "fetch listing pages for apps without a description")
	}
	cmd.Flags().StringVar(&f.cache, "cache", "", "SQLite page cache path (default: no cache)")
}

// fetcher builds the HTTP fetcher, wrapped in the page cache when one is
// configured. The returned close func is never nil.
func (f *fetchFlags) fetcher(ctx context.Context, s config.FetchSettings) (fetch.Fetcher, func(), error) {
	var base fetch.Fetcher = fetch.NewHTTPFetcher(fetch.Options{
		MinDelay:      s.MinDelay,
		MaxDelay:      s.MaxDelay,
		MaxRetries:    s.MaxRetries,
		MaxTotalDelay: s.MaxTotalDelay,
		Timeout:       s.Timeout,
		Logger:        logger,
	})
	if f.cache == "" {
		return base, func() {}, nil
	}

	cache, err := sqlite.Open(ctx, f.cache)
	if err != nil {
		return nil, nil, fmt.Errorf("open page cache: %w", err)
	}
	return &fetch.Caching{Fetcher: base, Cache: cache, Logger: logger}, closeCache(cache), nil
}

func closeCache(c pagecache.Cache) func() {
	return func() {
		if err := c.Close(); err != nil {
			logger.Warn("close page cache", "err", err)
		}
	}
}

// engine builds the pipeline, with a fetcher when ff asks for one.
func engine(ctx context.Context, comp *config.Components, ff *fetchFlags) (*appint.Engine, func(), error) {
	if ff == nil || !ff.enabled {
		return appint.FromComponents(comp, nil, logger), func() {}, nil
	}
	f, closeFn, err := ff.fetcher(ctx, comp.Settings.Fetch)
	if err != nil {
		return nil, nil, err
	}
	return appint.FromComponents(comp, f, logger), closeFn, nil
}
