package profile

import (
	"fmt"
	"slices"
	"strings"
)

// PatternType is the closed set of archetype patterns that drive derived content.
type PatternType int

const (
	PatternUnknown PatternType = iota
	PatternUplifting
	PatternMelancholic
	PatternAnxious
	PatternFiery
	PatternSerene
	PatternAstonished
	PatternAversive
	PatternBittersweet
	PatternVolatile
	PatternBalanced
)

// PatternContent is the presentation content derived from a pattern type.
type PatternContent struct {
	MusicTags      []string
	SuggestionNote string
}

var patternNames = map[PatternType]string{
	PatternUnknown:     "unknown",
	PatternUplifting:   "uplifting",
	PatternMelancholic: "melancholic",
	PatternAnxious:     "anxious",
	PatternFiery:       "fiery",
	PatternSerene:      "serene",
	PatternAstonished:  "astonished",
	PatternAversive:    "aversive",
	PatternBittersweet: "bittersweet",
	PatternVolatile:    "volatile",
	PatternBalanced:    "balanced",
}

var patternsByName = func() map[string]PatternType {
	m := make(map[string]PatternType, len(patternNames))
	for p, name := range patternNames {
		m[name] = p
	}
	return m
}()

// defaultContent covers PatternUnknown and any pattern string that is not recognized.
var defaultContent = PatternContent{
	MusicTags:      []string{"chill", "indie", "acoustic"},
	SuggestionNote: "Take a slow breath and notice what you are feeling right now.",
}

var patternContent = map[PatternType]PatternContent{
	PatternUplifting: {
		MusicTags:      []string{"happy", "pop", "dance", "feel good"},
		SuggestionNote: "Ride the good energy: share it with someone or start that thing you've been putting off.",
	},
	PatternMelancholic: {
		MusicTags:      []string{"sad", "mellow", "piano", "singer-songwriter"},
		SuggestionNote: "Be gentle with yourself today. A short walk or a message to a friend can help.",
	},
	PatternAnxious: {
		MusicTags:      []string{"ambient", "calm", "lo-fi", "meditation"},
		SuggestionNote: "Try box breathing: in for four, hold for four, out for four, hold for four.",
	},
	PatternFiery: {
		MusicTags:      []string{"rock", "metal", "punk", "workout"},
		SuggestionNote: "Channel the heat into movement before you make any big decisions.",
	},
	PatternSerene: {
		MusicTags:      []string{"chillout", "jazz", "acoustic", "nature"},
		SuggestionNote: "Protect this calm. It's a good moment for reflection or creative work.",
	},
	PatternAstonished: {
		MusicTags:      []string{"electronic", "experimental", "psychedelic"},
		SuggestionNote: "Something caught you off guard. Give yourself a minute to take it in.",
	},
	PatternAversive: {
		MusicTags:      []string{"grunge", "alternative", "industrial"},
		SuggestionNote: "Step away from whatever is bothering you and reset your surroundings.",
	},
	PatternBittersweet: {
		MusicTags:      []string{"indie folk", "dream pop", "nostalgic"},
		SuggestionNote: "Mixed feelings are normal. Writing a few lines about them can bring clarity.",
	},
	PatternVolatile: {
		MusicTags:      []string{"drum and bass", "trip-hop", "alternative rock"},
		SuggestionNote: "Your emotions are shifting fast. Pause before reacting and ground yourself.",
	},
	PatternBalanced: {
		MusicTags:      []string{"indie pop", "soft rock", "easy listening"},
		SuggestionNote: "You're in a steady place. A good time to plan, learn or connect.",
	},
}

// ParsePatternType maps a free-form pattern string to a PatternType, ignoring case and
// surrounding whitespace. Unrecognized strings map to PatternUnknown.
func ParsePatternType(s string) PatternType {
	if p, ok := patternsByName[strings.ToLower(strings.TrimSpace(s))]; ok {
		return p
	}
	return PatternUnknown
}

// PatternTypes returns every named pattern type, excluding PatternUnknown.
func PatternTypes() []PatternType {
	types := make([]PatternType, 0, len(patternContent))
	for p := range patternContent {
		types = append(types, p)
	}
	slices.Sort(types)
	return types
}

func (p PatternType) String() string {
	if name, ok := patternNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PatternType(%d)", int(p))
}

// Content returns the derived content for the pattern. The returned slice is a copy.
func (p PatternType) Content() PatternContent {
	c, ok := patternContent[p]
	if !ok {
		c = defaultContent
	}
	return PatternContent{
		MusicTags:      slices.Clone(c.MusicTags),
		SuggestionNote: c.SuggestionNote,
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p PatternType) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names decode to PatternUnknown.
func (p *PatternType) UnmarshalText(text []byte) error {
	*p = ParsePatternType(string(text))
	return nil
}
