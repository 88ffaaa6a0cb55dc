// Package batch matches many emotion vectors concurrently.
package batch

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/justestif/moodmatch/internal/content"
	"github.com/justestif/moodmatch/internal/matching"
	"github.com/justestif/moodmatch/internal/profile"
)

// Default concurrency for batch processing.
const DefaultConcurrency = 5

// Explainer abstracts the matching engine for testing.
type Explainer interface {
	Explain(v map[string]float64) matching.Result
}

// Outcome holds the match for one input vector.
type Outcome struct {
	Index          int
	Profile        profile.Profile
	Quote          string
	Fallback       bool
	CatalogVersion uuid.UUID
}

// Matcher runs vectors through an Explainer with bounded concurrency.
type Matcher struct {
	engine      Explainer
	selector    content.Selector
	concurrency int
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithConcurrency sets the number of vectors matched at once.
func WithConcurrency(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.concurrency = n
		}
	}
}

// WithSelector sets the quote selector. The default is content.HashSelector.
func WithSelector(s content.Selector) Option {
	return func(m *Matcher) {
		if s != nil {
			m.selector = s
		}
	}
}

// NewMatcher creates a new batch matcher.
func NewMatcher(engine Explainer, opts ...Option) *Matcher {
	m := &Matcher{
		engine:      engine,
		selector:    content.HashSelector{},
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MatchAll matches every vector concurrently.
// Results are returned in the same order as the input vectors.
// Cancelling ctx stops work that has not started and returns ctx.Err().
func (m *Matcher) MatchAll(ctx context.Context, vectors []map[string]float64) ([]Outcome, error) {
	if len(vectors) == 0 {
		return []Outcome{}, nil
	}

	results := make([]Outcome, len(vectors))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)

	for i, v := range vectors {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := m.engine.Explain(v)
			results[i] = Outcome{
				Index:          i,
				Profile:        res.Profile,
				Quote:          m.selector.Select(res.Profile, v),
				Fallback:       res.Fallback,
				CatalogVersion: res.CatalogVersion,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("matching batch: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("matching batch: %w", err)
	}
	return results, nil
}
