package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Loader produces a fresh catalog from some source.
type Loader func(ctx context.Context) (*Catalog, error)

// FileLoader loads a catalog file on every call.
func FileLoader(path, format string, opts ...Option) Loader {
	return func(context.Context) (*Catalog, error) {
		return LoadFile(path, format, opts...)
	}
}

// DefaultLoader loads the embedded catalog.
func DefaultLoader(opts ...Option) Loader {
	return func(context.Context) (*Catalog, error) {
		return Default(opts...)
	}
}

// RowsLoader loads rows from src and parses them.
func RowsLoader(src RowSource, opts ...Option) Loader {
	return func(ctx context.Context) (*Catalog, error) {
		rows, err := src.Rows(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching rows: %w", err)
		}
		if len(rows) == 0 {
			return nil, ErrEmptySource
		}
		return FromRows(rows, opts...)
	}
}

// Repository holds the current catalog and replaces it wholesale on reload.
// Until the first successful load it serves a catalog with only the fallback profile.
type Repository struct {
	current atomic.Pointer[Catalog]
	load    Loader
	logger  *slog.Logger
	mu      sync.Mutex // serializes reloads
}

// NewRepository creates a repository around a loader. It does not load yet.
func NewRepository(load Loader, opts ...Option) *Repository {
	o := buildOptions(opts)
	r := &Repository{
		load:   load,
		logger: o.logger,
	}
	r.current.Store(Empty(opts...))
	return r
}

// Current returns the catalog snapshot in use. It never returns nil.
func (r *Repository) Current() *Catalog {
	return r.current.Load()
}

// Reload runs the loader and swaps in the result. On failure the previous catalog stays in place.
func (r *Repository) Reload(ctx context.Context) (*Catalog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.load(ctx)
	if err != nil {
		r.logger.Error("catalog load failed, keeping previous catalog",
			"error", err, "version", r.Current().Version())
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	r.current.Store(c)
	r.logger.Info("catalog loaded",
		"profiles", c.Len(), "version", c.Version(), "fallback", c.Fallback().Label,
		"fallback_synthesized", c.FallbackSynthesized())
	return c, nil
}
