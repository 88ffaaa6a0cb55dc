// Package content picks the quote shown alongside a matched profile.
package content

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/justestif/moodmatch/internal/profile"
)

// Selector picks one quote from a profile. Implementations always return one of
// p.Quotes, or profile.DefaultQuote when the profile has none.
type Selector interface {
	Select(p profile.Profile, v map[string]float64) string
}

// HashSelector picks a quote from a hash of the emotion vector, so the same
// vector always gets the same quote.
type HashSelector struct{}

// Select implements Selector.
func (HashSelector) Select(p profile.Profile, v map[string]float64) string {
	if len(p.Quotes) == 0 {
		return profile.DefaultQuote
	}
	idx := xxhash.Sum64String(canonical(v)) % uint64(len(p.Quotes))
	return p.Quotes[idx]
}

// canonical renders v as sorted key=value pairs.
func canonical(v map[string]float64) string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(strconv.FormatFloat(v[k], 'g', -1, 64))
		sb.WriteByte(';')
	}
	return sb.String()
}

// RandomSelector picks quotes at random. It is the only nondeterministic step in
// matching; seed it for reproducible output.
type RandomSelector struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomSelector returns a selector seeded with seed.
func NewRandomSelector(seed uint64) *RandomSelector {
	return &RandomSelector{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Select implements Selector.
func (s *RandomSelector) Select(p profile.Profile, _ map[string]float64) string {
	if len(p.Quotes) == 0 {
		return profile.DefaultQuote
	}
	s.mu.Lock()
	idx := s.rnd.IntN(len(p.Quotes))
	s.mu.Unlock()
	return p.Quotes[idx]
}

// FixedSelector always picks the quote at the given index, wrapping around.
type FixedSelector int

// Select implements Selector.
func (f FixedSelector) Select(p profile.Profile, _ map[string]float64) string {
	n := len(p.Quotes)
	if n == 0 {
		return profile.DefaultQuote
	}
	idx := int(f) % n
	if idx < 0 {
		idx += n
	}
	return p.Quotes[idx]
}

var (
	_ Selector = HashSelector{}
	_ Selector = (*RandomSelector)(nil)
	_ Selector = FixedSelector(0)
)
