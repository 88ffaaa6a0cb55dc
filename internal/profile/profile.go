// Package profile defines mood archetypes and parses them from their source forms.
package profile

import (
	"slices"
	"strings"
)

// DefaultQuote is used when a profile has no usable quotes.
const DefaultQuote = "Stay strong, emotions are temporary."

// Profile is one mood archetype. Profiles are built once at load time and
// must not be mutated afterwards; callers that need to change one should Clone it.
type Profile struct {
	Label             string             `json:"label"`
	Description       string             `json:"description"`
	EmotionTriggers   []string           `json:"emotionTriggers"`
	PercentConditions map[string]float64 `json:"percentConditions"` // emotion (lowercase) -> minimum percentage
	PatternType       string             `json:"patternType"`
	Quotes            []string           `json:"quotes"`
	MusicTags         []string           `json:"musicTags"`
	SuggestionNote    string             `json:"suggestionNote"`
}

// New builds a Profile, normalizing conditions and deriving content from the pattern type.
// Conditions with an empty emotion name are dropped. Duplicate emotions keep the highest threshold.
func New(label, description string, triggers []string, conditions []Condition, patternType string, quotes []string) Profile {
	conds := make(map[string]float64, len(conditions))
	for _, c := range conditions {
		addCondition(conds, c.Emotion, c.Above)
	}

	var cleanQuotes []string
	for _, q := range quotes {
		if q = strings.TrimSpace(q); q != "" {
			cleanQuotes = append(cleanQuotes, q)
		}
	}
	if len(cleanQuotes) == 0 {
		cleanQuotes = []string{DefaultQuote}
	}

	var cleanTriggers []string
	for _, t := range triggers {
		if t = strings.TrimSpace(t); t != "" {
			cleanTriggers = append(cleanTriggers, t)
		}
	}

	patternType = strings.TrimSpace(patternType)
	content := ParsePatternType(patternType).Content()

	return Profile{
		Label:             strings.TrimSpace(label),
		Description:       strings.TrimSpace(description),
		EmotionTriggers:   cleanTriggers,
		PercentConditions: conds,
		PatternType:       patternType,
		Quotes:            cleanQuotes,
		MusicTags:         content.MusicTags,
		SuggestionNote:    content.SuggestionNote,
	}
}

// addCondition records a threshold, keeping an existing one unless the new value is strictly greater.
func addCondition(conds map[string]float64, emotion string, above float64) {
	key := strings.ToLower(strings.TrimSpace(emotion))
	if key == "" {
		return
	}
	if existing, ok := conds[key]; ok && above <= existing {
		return
	}
	conds[key] = above
}

// Pattern returns the parsed pattern type.
func (p Profile) Pattern() PatternType {
	return ParsePatternType(p.PatternType)
}

// HasConditions reports whether the profile can ever qualify as a match candidate.
func (p Profile) HasConditions() bool {
	return len(p.PercentConditions) > 0
}

// Emotions returns the condition emotion names in sorted order.
func (p Profile) Emotions() []string {
	names := make([]string, 0, len(p.PercentConditions))
	for name := range p.PercentConditions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Clone returns a deep copy of the profile.
func (p Profile) Clone() Profile {
	c := p
	c.EmotionTriggers = slices.Clone(p.EmotionTriggers)
	c.Quotes = slices.Clone(p.Quotes)
	c.MusicTags = slices.Clone(p.MusicTags)
	c.PercentConditions = make(map[string]float64, len(p.PercentConditions))
	for k, v := range p.PercentConditions {
		c.PercentConditions[k] = v
	}
	return c
}
