package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// clearEnv unsets every variable Load reads, restoring them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvAddr, EnvCatalog, EnvCatalogFormat, EnvFallbackLabel,
		EnvDatabaseURL, EnvLogLevel, EnvLogFormat, EnvQuoteSeed,
	} {
		// t.Setenv registers the restore; the value is then removed.
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "moodmatch.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
addr = ":9000"
catalog = "profiles.csv"
log_level = "debug"
log_format = "JSON"
quote_seed = 7
`)
	t.Setenv(EnvAddr, ":9100")
	t.Setenv(EnvFallbackLabel, "Calm Focus")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := &Config{
		Addr:          ":9100",
		CatalogPath:   "profiles.csv",
		FallbackLabel: "Calm Focus",
		LogLevel:      "debug",
		LogFormat:     "json",
		QuoteSeed:     7,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		wantErr error
	}{
		{
			name:    "invalid log format",
			env:     map[string]string{EnvLogFormat: "xml"},
			wantErr: ErrInvalidLogFormat,
		},
		{
			name:    "invalid catalog format",
			env:     map[string]string{EnvCatalogFormat: "ini"},
			wantErr: ErrInvalidCatalogFormat,
		},
		{
			name:    "postgres without database url",
			env:     map[string]string{EnvCatalogFormat: "postgres"},
			wantErr: ErrMissingDatabaseURL,
		},
		{
			name: "unknown file field",
			file: `colour = "blue"`,
		},
		{
			name: "bad quote seed",
			env:  map[string]string{EnvQuoteSeed: "-1"},
		},
		{
			name: "bad log level",
			env:  map[string]string{EnvLogLevel: "loud"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeFile(t, tt.file)
			}

			cfg, err := Load(path)
			if err == nil {
				t.Fatalf("Load() = %+v, want error", cfg)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want os.ErrNotExist", err)
	}
}

func TestLoad_Postgres(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvCatalogFormat, "Postgres")
	t.Setenv(EnvDatabaseURL, "postgres://localhost/moodmatch")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.UsesDatabase() {
		t.Error("UsesDatabase() = false, want true")
	}
}

func TestValidate_RestoresEmptyFallbackLabel(t *testing.T) {
	cfg := Default()
	cfg.FallbackLabel = "  "
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.FallbackLabel != "Neutral Balance" {
		t.Errorf("FallbackLabel = %q, want Neutral Balance", cfg.FallbackLabel)
	}
}

func TestValidate_CatalogFormats(t *testing.T) {
	for _, format := range []string{"", FormatCSV, FormatTSV, FormatYAML} {
		cfg := Default()
		cfg.CatalogFormat = format
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() with format %q error = %v", format, err)
		}
	}
}
