package matching

import (
	"cmp"
	"slices"

	"github.com/google/uuid"

	"github.com/justestif/moodmatch/internal/catalog"
	"github.com/justestif/moodmatch/internal/profile"
)

// CatalogProvider supplies the catalog snapshot to match against.
// *catalog.Repository implements it.
type CatalogProvider interface {
	Current() *catalog.Catalog
}

type staticProvider struct {
	c *catalog.Catalog
}

func (s staticProvider) Current() *catalog.Catalog { return s.c }

// Static wraps a fixed catalog as a CatalogProvider.
func Static(c *catalog.Catalog) CatalogProvider {
	return staticProvider{c: c}
}

// Candidate is a profile whose conditions are all satisfied by a vector.
type Candidate struct {
	Profile  profile.Profile
	Position int // zero-based source position, used for tie-breaks
	Score    float64
}

// Result describes one match in detail.
type Result struct {
	Profile        profile.Profile
	Candidates     []Candidate // ranked, best first; empty when the fallback was used
	Fallback       bool
	CatalogVersion uuid.UUID
}

// Engine matches emotion vectors to profiles. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	catalogs CatalogProvider
}

// NewEngine creates an engine that reads the current catalog on every call.
func NewEngine(catalogs CatalogProvider) *Engine {
	return &Engine{catalogs: catalogs}
}

func (e *Engine) snapshot() *catalog.Catalog {
	if c := e.catalogs.Current(); c != nil {
		return c
	}
	return catalog.Empty()
}

// Match returns the best profile for v. It never fails: when no profile qualifies the
// catalog's fallback profile is returned. Among candidates the highest margin score
// wins, and equal scores go to the profile listed first in the source.
func (e *Engine) Match(v map[string]float64) profile.Profile {
	c := e.snapshot()
	v = Normalize(v)

	var (
		best      profile.Profile
		bestScore float64
		found     bool
	)
	for _, p := range c.All() {
		score, ok := Evaluate(p, v)
		if !ok {
			continue
		}
		if !found || score > bestScore {
			best, bestScore, found = p, score, true
		}
	}
	if !found {
		return c.Fallback()
	}
	return best
}

// Explain matches v and reports the ranked candidates alongside the winner.
func (e *Engine) Explain(v map[string]float64) Result {
	c := e.snapshot()
	candidates := rank(c, Normalize(v))

	res := Result{
		Candidates:     candidates,
		CatalogVersion: c.Version(),
	}
	if len(candidates) == 0 {
		res.Profile = c.Fallback()
		res.Fallback = true
		return res
	}
	res.Profile = candidates[0].Profile
	return res
}

func rank(c *catalog.Catalog, v map[string]float64) []Candidate {
	var candidates []Candidate
	for i, p := range c.All() {
		if score, ok := Evaluate(p, v); ok {
			candidates = append(candidates, Candidate{Profile: p, Position: i, Score: score})
		}
	}
	// stable sort keeps source order among equal scores
	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return candidates
}
