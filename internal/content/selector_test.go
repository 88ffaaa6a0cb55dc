package content

import (
	"slices"
	"sync"
	"testing"

	"github.com/justestif/moodmatch/internal/profile"
)

var threeQuotes = profile.Profile{Label: "Q", Quotes: []string{"one", "two", "three"}}

func TestHashSelector_Deterministic(t *testing.T) {
	v := map[string]float64{"happy": 90, "joy": 65}
	var s HashSelector

	first := s.Select(threeQuotes, v)
	for i := 0; i < 20; i++ {
		// a fresh map with the same content must hash the same
		again := map[string]float64{"joy": 65, "happy": 90}
		if got := s.Select(threeQuotes, again); got != first {
			t.Fatalf("Select() = %q, want %q", got, first)
		}
	}
	if !slices.Contains(threeQuotes.Quotes, first) {
		t.Errorf("Select() = %q, not one of the quotes", first)
	}
}

func TestHashSelector_Spread(t *testing.T) {
	var s HashSelector
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		seen[s.Select(threeQuotes, map[string]float64{"happy": float64(i)})] = true
	}
	if len(seen) != 3 {
		t.Errorf("expected all quotes to be reachable, saw %v", seen)
	}
}

func TestCanonical(t *testing.T) {
	got := canonical(map[string]float64{"sad": 21.5, "angry": 3})
	if got != "angry=3;sad=21.5;" {
		t.Errorf("canonical() = %q", got)
	}
	if canonical(nil) != "" {
		t.Error("canonical(nil) should be empty")
	}
}

func TestRandomSelector_Seeded(t *testing.T) {
	a := NewRandomSelector(42)
	b := NewRandomSelector(42)

	for i := 0; i < 50; i++ {
		qa := a.Select(threeQuotes, nil)
		qb := b.Select(threeQuotes, nil)
		if qa != qb {
			t.Fatalf("draw %d: %q != %q for the same seed", i, qa, qb)
		}
		if !slices.Contains(threeQuotes.Quotes, qa) {
			t.Fatalf("Select() = %q, not one of the quotes", qa)
		}
	}
}

func TestRandomSelector_Concurrent(t *testing.T) {
	s := NewRandomSelector(7)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Select(threeQuotes, nil)
			}
		}()
	}
	wg.Wait()
}

func TestFixedSelector(t *testing.T) {
	tests := []struct {
		idx  FixedSelector
		want string
	}{
		{0, "one"},
		{2, "three"},
		{4, "two"},
		{-1, "three"},
	}
	for _, tt := range tests {
		if got := tt.idx.Select(threeQuotes, nil); got != tt.want {
			t.Errorf("FixedSelector(%d).Select() = %q, want %q", tt.idx, got, tt.want)
		}
	}
}

func TestSelectors_NoQuotes(t *testing.T) {
	empty := profile.Profile{Label: "E"}
	selectors := map[string]Selector{
		"hash":   HashSelector{},
		"random": NewRandomSelector(1),
		"fixed":  FixedSelector(3),
	}
	for name, s := range selectors {
		if got := s.Select(empty, nil); got != profile.DefaultQuote {
			t.Errorf("%s: Select() = %q, want default quote", name, got)
		}
	}
}
