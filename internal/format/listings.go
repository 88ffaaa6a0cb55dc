package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/justestif/moodmatch/internal/clustering"
	"github.com/justestif/moodmatch/internal/matching"
	"github.com/justestif/moodmatch/internal/profile"
)

const descriptionWidth = 48

// Profiles renders a catalog listing: one row per profile in source order.
// The row at fallbackPos is marked as the fallback; pass -1 for none.
func Profiles(m Mode, profiles []profile.Profile, fallbackPos int) string {
	tb := NewTable(m)
	tb.Header("#", "Label", "Conditions", "Pattern", "Description", "Quotes", "Fallback")
	tb.Columns(
		ColumnConfig{Number: 1, Align: AlignRight},
		ColumnConfig{Number: 6, Align: AlignRight},
	)
	for i, p := range profiles {
		tb.Row(
			i+1,
			p.Label,
			Conditions(p),
			p.Pattern().String(),
			Truncate(p.Description, descriptionWidth),
			len(p.Quotes),
			BoolMark(i == fallbackPos),
		)
	}
	return tb.String()
}

// Candidates renders ranked match candidates, best first.
func Candidates(m Mode, candidates []matching.Candidate) string {
	tb := NewTable(m)
	tb.Header("Rank", "Label", "Score", "Row")
	tb.Columns(
		ColumnConfig{Number: 1, Align: AlignRight},
		ColumnConfig{Number: 3, Align: AlignRight},
		ColumnConfig{Number: 4, Align: AlignRight},
	)
	for i, c := range candidates {
		tb.Row(i+1, c.Profile.Label, Score(c.Score), c.Position+1)
	}
	return tb.String()
}

// Groups renders archetype groups one per row with every member label.
// Profiles left out of any group share a final row with no emotions.
func Groups(m Mode, groups []clustering.Group, ungrouped []profile.Profile) string {
	tb := NewTable(m)
	tb.Header("Group", "Emotions", "Size", "Members")
	tb.Columns(
		ColumnConfig{Number: 3, Align: AlignRight},
		ColumnConfig{Number: 4, MaxWidth: descriptionWidth},
	)
	for i, g := range groups {
		tb.Row(i+1, strings.Join(g.TopEmotions, ", "), len(g.Profiles), labels(g.Profiles))
	}
	if len(ungrouped) > 0 {
		tb.Row("-", "(ungrouped)", len(ungrouped), labels(ungrouped))
	}
	return tb.String()
}

func labels(profiles []profile.Profile) string {
	out := make([]string, len(profiles))
	for i, p := range profiles {
		out[i] = p.Label
	}
	return strings.Join(out, ", ")
}

// Detail renders one profile as a two-column key/value table.
func Detail(m Mode, p profile.Profile, quote string) string {
	tb := NewTable(m)
	tb.Header("Field", "Value")
	tb.Columns(ColumnConfig{Number: 2, MaxWidth: descriptionWidth * 2})
	tb.Row("Label", p.Label)
	tb.Row("Description", p.Description)
	tb.Row("Pattern", p.Pattern().String())
	tb.Row("Conditions", Conditions(p))
	tb.Row("Music tags", strings.Join(p.MusicTags, ", "))
	tb.Row("Suggestion", p.SuggestionNote)
	tb.Row("Quote", quote)
	return tb.String()
}

// Conditions renders a profile's thresholds as "happy > 70, surprise > 30",
// or "(none)" for a profile with no conditions.
func Conditions(p profile.Profile) string {
	if !p.HasConditions() {
		return "(none)"
	}
	parts := make([]string, 0, len(p.PercentConditions))
	for _, emotion := range p.Emotions() {
		parts = append(parts, fmt.Sprintf("%s > %s", emotion, Score(p.PercentConditions[emotion])))
	}
	return strings.Join(parts, ", ")
}

// Score formats a percentage without trailing zeros.
func Score(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Truncate shortens s to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// BoolMark returns "✓" for true and "" for false.
func BoolMark(v bool) string {
	if v {
		return "✓"
	}
	return ""
}
