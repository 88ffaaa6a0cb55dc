// Package catalog owns the parsed, immutable set of mood profiles.
package catalog

import (
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/moodmatch/internal/logging"
	"github.com/justestif/moodmatch/internal/profile"
)

// DefaultFallbackLabel names the neutral profile returned when nothing matches.
const DefaultFallbackLabel = "Neutral Balance"

// Catalog is an immutable, ordered set of profiles plus the fallback profile.
// It is safe for concurrent use.
type Catalog struct {
	version     uuid.UUID
	loadedAt    time.Time
	profiles    []profile.Profile
	fallback    profile.Profile
	fallbackPos int // -1 when synthesized
	synthesized bool
}

type options struct {
	fallbackLabel string
	logger        *slog.Logger
}

// Option configures catalog construction.
type Option func(*options)

// WithFallbackLabel sets the label of the profile used as fallback.
func WithFallbackLabel(label string) Option {
	return func(o *options) {
		if label = strings.TrimSpace(label); label != "" {
			o.fallbackLabel = label
		}
	}
}

// WithLogger sets the logger used for data-quality warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{fallbackLabel: DefaultFallbackLabel}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.New("catalog")
	}
	return o
}

// NeutralProfile returns the profile synthesized when a catalog has no fallback row.
func NeutralProfile(label string) profile.Profile {
	return profile.New(
		label,
		"No single emotion stands out. You are in a neutral, adaptable state.",
		nil,
		nil,
		profile.PatternBalanced.String(),
		[]string{profile.DefaultQuote},
	)
}

// FromRows parses tabular rows into a catalog, preserving row order.
// Any row that is too short fails the whole load; no partial catalog is returned.
func FromRows(rows [][]string, opts ...Option) (*Catalog, error) {
	profiles := make([]profile.Profile, 0, len(rows))
	for i, row := range rows {
		p, err := profile.ParseRow(row)
		if err != nil {
			return nil, profile.AtRow(err, i+1)
		}
		profiles = append(profiles, p)
	}
	return New(profiles, opts...), nil
}

// FromRecords converts structured records into a catalog, preserving order.
func FromRecords(records []profile.Record, opts ...Option) (*Catalog, error) {
	profiles := make([]profile.Profile, 0, len(records))
	for i, r := range records {
		p, err := r.Profile()
		if err != nil {
			return nil, profile.AtRow(err, i+1)
		}
		profiles = append(profiles, p)
	}
	return New(profiles, opts...), nil
}

// Empty returns a catalog holding only the synthesized fallback profile.
func Empty(opts ...Option) *Catalog {
	return New(nil, opts...)
}

// New builds a catalog from already parsed profiles. The slice is copied.
func New(profiles []profile.Profile, opts ...Option) *Catalog {
	o := buildOptions(opts)

	c := &Catalog{
		version:  uuid.New(),
		loadedAt: time.Now(),
		profiles: make([]profile.Profile, len(profiles)),
	}
	copy(c.profiles, profiles)

	seen := make(map[string]int, len(profiles))
	found := false
	for i, p := range c.profiles {
		key := strings.ToLower(p.Label)
		if first, dup := seen[key]; dup {
			o.logger.Warn("duplicate profile label", "label", p.Label, "row", i+1, "first_row", first)
		} else {
			seen[key] = i + 1
		}

		isFallback := strings.EqualFold(p.Label, o.fallbackLabel)
		if isFallback && !found {
			c.fallback = p
			c.fallbackPos = i
			found = true
		}
		if !p.HasConditions() && !isFallback {
			o.logger.Warn("profile has no usable conditions and can never match", "label", p.Label, "row", i+1)
		}
	}

	if !found {
		c.fallback = NeutralProfile(o.fallbackLabel)
		c.fallbackPos = -1
		c.synthesized = true
		if len(c.profiles) > 0 {
			o.logger.Warn("fallback profile missing from source, synthesizing", "label", o.fallbackLabel)
		}
	}

	return c
}

// Version identifies this catalog snapshot; every load gets a new one.
func (c *Catalog) Version() uuid.UUID {
	return c.version
}

// LoadedAt returns when the catalog was built.
func (c *Catalog) LoadedAt() time.Time {
	return c.loadedAt
}

// Len returns the number of source profiles, excluding a synthesized fallback.
func (c *Catalog) Len() int {
	return len(c.profiles)
}

// All iterates profiles in source order with their zero-based position.
func (c *Catalog) All() iter.Seq2[int, profile.Profile] {
	return func(yield func(int, profile.Profile) bool) {
		for i, p := range c.profiles {
			if !yield(i, p) {
				return
			}
		}
	}
}

// Profiles returns the profiles in source order. The returned slice is a copy;
// the profiles themselves must be treated as read-only.
func (c *Catalog) Profiles() []profile.Profile {
	out := make([]profile.Profile, len(c.profiles))
	copy(out, c.profiles)
	return out
}

// Fallback returns the profile used when no candidate qualifies. It always exists.
func (c *Catalog) Fallback() profile.Profile {
	return c.fallback
}

// FallbackPosition returns the zero-based source position of the fallback
// profile, or -1 when it was synthesized.
func (c *Catalog) FallbackPosition() int {
	return c.fallbackPos
}

// FallbackSynthesized reports whether the fallback came from code rather than source data.
func (c *Catalog) FallbackSynthesized() bool {
	return c.synthesized
}

// Lookup returns the first profile whose label matches, ignoring case.
// The fallback profile is also found when it was synthesized.
func (c *Catalog) Lookup(label string) (profile.Profile, bool) {
	label = strings.TrimSpace(label)
	for _, p := range c.profiles {
		if strings.EqualFold(p.Label, label) {
			return p, true
		}
	}
	if c.synthesized && strings.EqualFold(c.fallback.Label, label) {
		return c.fallback, true
	}
	return profile.Profile{}, false
}
