package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justestif/moodmatch/internal/catalog"
	"github.com/justestif/moodmatch/internal/config"
	"github.com/justestif/moodmatch/internal/content"
	"github.com/justestif/moodmatch/internal/db"
	"github.com/justestif/moodmatch/internal/logging"
)

// app carries the global flags and the configuration resolved from them.
type app struct {
	configPath string
	catalog    string
	logLevel   string
	logFormat  string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "moodmatch",
		Short: "Match emotion percentages to mood archetypes",
		Long: "moodmatch maps a vector of emotion percentages to the best fitting mood archetype\n" +
			"from a catalog, along with a quote and music suggestions for that mood.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		Version: version,
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "TOML config file")
	f.StringVar(&a.catalog, "catalog", "", "catalog file (.csv or .yaml); the embedded catalog when empty")
	f.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringVar(&a.logFormat, "log-format", "", "log format: text or json")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newMatchCmd(a))
	root.AddCommand(newCatalogCmd(a))
	return root
}

// setup loads configuration, applies flag overrides and configures logging.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("catalog") {
		cfg.CatalogPath = a.catalog
		if cfg.CatalogFormat == config.FormatPostgres {
			cfg.CatalogFormat = ""
		}
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logging.Init(level, cfg.LogFormat, cmd.ErrOrStderr())

	a.cfg = cfg
	return nil
}

func (a *app) catalogOptions() []catalog.Option {
	return []catalog.Option{
		catalog.WithFallbackLabel(a.cfg.FallbackLabel),
		catalog.WithLogger(logging.New("catalog")),
	}
}

// loader returns the catalog loader for the configured source and a cleanup
// function that releases any database connection.
func (a *app) loader(ctx context.Context) (catalog.Loader, func(), error) {
	opts := a.catalogOptions()

	switch {
	case a.cfg.UsesDatabase():
		database, err := db.New(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		return catalog.RowsLoader(database.Profiles(), opts...), database.Close, nil
	case a.cfg.CatalogPath != "":
		return catalog.FileLoader(a.cfg.CatalogPath, a.cfg.CatalogFormat, opts...), func() {}, nil
	default:
		return catalog.DefaultLoader(opts...), func() {}, nil
	}
}

// loadCatalog loads the configured catalog once. Unlike openRepository, a
// failed load is returned to the caller.
func (a *app) loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	load, cleanup, err := a.loader(ctx)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	c, err := load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	return c, nil
}

// openRepository builds a repository over the configured source and attempts the
// first load. A failed load is logged by the repository and is not fatal: the
// repository keeps serving the fallback-only catalog until a later reload succeeds.
func (a *app) openRepository(ctx context.Context) (*catalog.Repository, func(), error) {
	load, cleanup, err := a.loader(ctx)
	if err != nil {
		return nil, nil, err
	}

	repo := catalog.NewRepository(load, a.catalogOptions()...)
	_, _ = repo.Reload(ctx)
	return repo, cleanup, nil
}

// selector picks quotes randomly when a seed is configured, otherwise by hashing the vector.
func (a *app) selector(seed uint64) content.Selector {
	if seed == 0 {
		seed = a.cfg.QuoteSeed
	}
	if seed == 0 {
		return content.HashSelector{}
	}
	return content.NewRandomSelector(seed)
}
