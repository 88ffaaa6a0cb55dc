package profile

import "strings"

// Condition is one threshold clause: the emotion score must be strictly above Above.
type Condition struct {
	Emotion string  `yaml:"emotion" json:"emotion"`
	Above   float64 `yaml:"above" json:"above"`
}

// Record is the structured source form of a profile.
type Record struct {
	Label       string      `yaml:"label" json:"label"`
	Description string      `yaml:"description" json:"description"`
	Triggers    []string    `yaml:"triggers" json:"triggers"`
	Conditions  []Condition `yaml:"conditions" json:"conditions"`
	Pattern     string      `yaml:"pattern" json:"pattern"`
	Quotes      []string    `yaml:"quotes" json:"quotes"`
}

// Profile validates the record and converts it. A record without a label returns a *FormatError.
func (r Record) Profile() (Profile, error) {
	if strings.TrimSpace(r.Label) == "" {
		return Profile{}, &FormatError{Reason: "missing label"}
	}
	return New(r.Label, r.Description, r.Triggers, r.Conditions, r.Pattern, r.Quotes), nil
}

// Record converts the profile back to its structured source form.
func (p Profile) Record() Record {
	conds := make([]Condition, 0, len(p.PercentConditions))
	for _, emotion := range p.Emotions() {
		conds = append(conds, Condition{Emotion: emotion, Above: p.PercentConditions[emotion]})
	}
	var quotes []string
	if !(len(p.Quotes) == 1 && p.Quotes[0] == DefaultQuote) {
		quotes = append(quotes, p.Quotes...)
	}
	return Record{
		Label:       p.Label,
		Description: p.Description,
		Triggers:    append([]string(nil), p.EmotionTriggers...),
		Conditions:  conds,
		Pattern:     p.PatternType,
		Quotes:      quotes,
	}
}
