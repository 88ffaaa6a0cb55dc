// Package config loads moodmatch settings from defaults, a TOML file and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/justestif/moodmatch/internal/logging"
)

var (
	// ErrInvalidLogFormat is returned when the log format is not "text" or "json".
	ErrInvalidLogFormat = errors.New("invalid log format")
	// ErrInvalidCatalogFormat is returned for catalog formats other than csv, tsv, yaml and postgres.
	ErrInvalidCatalogFormat = errors.New("invalid catalog format")
	// ErrMissingDatabaseURL is returned when the postgres catalog format is used without DATABASE_URL.
	ErrMissingDatabaseURL = errors.New("missing DATABASE_URL environment variable")
)

// Catalog formats.
const (
	FormatCSV      = "csv"
	FormatTSV      = "tsv"
	FormatYAML     = "yaml"
	FormatPostgres = "postgres"
)

// Environment variables read by Load.
const (
	EnvAddr          = "MOODMATCH_ADDR"
	EnvCatalog       = "MOODMATCH_CATALOG"
	EnvCatalogFormat = "MOODMATCH_CATALOG_FORMAT"
	EnvFallbackLabel = "MOODMATCH_FALLBACK_LABEL"
	EnvDatabaseURL   = "DATABASE_URL"
	EnvLogLevel      = "MOODMATCH_LOG_LEVEL"
	EnvLogFormat     = "MOODMATCH_LOG_FORMAT"
	EnvQuoteSeed     = "MOODMATCH_QUOTE_SEED"
)

// Config holds moodmatch settings.
// Note: fields must be public for the toml package to unmarshal them.
type Config struct {
	Addr          string `toml:"addr"`
	CatalogPath   string `toml:"catalog"`        // empty means the embedded catalog
	CatalogFormat string `toml:"catalog_format"` // csv, tsv, yaml or postgres; detected from the path when empty
	FallbackLabel string `toml:"fallback_label"`
	DatabaseURL   string `toml:"database_url"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	QuoteSeed     uint64 `toml:"quote_seed"` // zero selects quotes by hashing the vector
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Addr:          ":8080",
		FallbackLabel: "Neutral Balance",
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// Load reads configuration. Defaults are applied first, then the TOML file at
// path when path is not empty, then environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := parseFile(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseFile(data []byte, cfg *Config) error {
	d := toml.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()
	return d.Decode(cfg)
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		EnvAddr:          &cfg.Addr,
		EnvCatalog:       &cfg.CatalogPath,
		EnvCatalogFormat: &cfg.CatalogFormat,
		EnvFallbackLabel: &cfg.FallbackLabel,
		EnvDatabaseURL:   &cfg.DatabaseURL,
		EnvLogLevel:      &cfg.LogLevel,
		EnvLogFormat:     &cfg.LogFormat,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	if v := os.Getenv(EnvQuoteSeed); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvQuoteSeed, err)
		}
		cfg.QuoteSeed = seed
	}
	return nil
}

// Validate normalizes enumerated fields and checks that they are consistent.
func (c *Config) Validate() error {
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.LogFormat)
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("validating log level: %w", err)
	}

	c.CatalogFormat = strings.ToLower(strings.TrimSpace(c.CatalogFormat))
	switch c.CatalogFormat {
	case "", FormatCSV, FormatTSV, FormatYAML:
	case FormatPostgres:
		if c.DatabaseURL == "" {
			return ErrMissingDatabaseURL
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCatalogFormat, c.CatalogFormat)
	}

	if strings.TrimSpace(c.FallbackLabel) == "" {
		c.FallbackLabel = Default().FallbackLabel
	}
	return nil
}

// UsesDatabase reports whether the catalog is read from Postgres.
func (c *Config) UsesDatabase() bool {
	return c.CatalogFormat == FormatPostgres
}
