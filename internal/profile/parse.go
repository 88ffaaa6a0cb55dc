package profile

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Field positions of a tabular profile row.
const (
	FieldLabel = iota
	FieldTriggers
	FieldConditions
	FieldPattern
	FieldDescription
	FieldQuotes

	RowFields // number of required fields
)

const quoteSeparator = "', '"

// ParseRow builds a Profile from one tabular row of raw string fields.
// Extra trailing fields are ignored. A row with fewer than RowFields fields
// returns a *FormatError; malformed condition clauses and quote fragments are dropped.
func ParseRow(fields []string) (Profile, error) {
	if len(fields) < RowFields {
		return Profile{}, &FormatError{
			Reason: fmt.Sprintf("expected %d fields, got %d", RowFields, len(fields)),
		}
	}
	if strings.TrimSpace(fields[FieldLabel]) == "" {
		return Profile{}, &FormatError{Reason: "missing label"}
	}

	return New(
		fields[FieldLabel],
		fields[FieldDescription],
		strings.Split(fields[FieldTriggers], ","),
		parseConditions(fields[FieldConditions]),
		fields[FieldPattern],
		parseQuotes(fields[FieldQuotes]),
	), nil
}

// parseConditions parses clauses shaped like "Sad > 21%", comma separated.
// Clauses that do not have that shape are skipped.
func parseConditions(text string) []Condition {
	var conds []Condition
	for _, clause := range strings.Split(text, ",") {
		parts := strings.Split(clause, ">")
		if len(parts) != 2 {
			continue
		}
		emotion := strings.TrimSpace(parts[0])
		if emotion == "" {
			continue
		}
		num := strings.TrimSpace(strings.ReplaceAll(parts[1], "%", ""))
		above, err := strconv.ParseFloat(num, 64)
		if err != nil || math.IsNaN(above) || math.IsInf(above, 0) {
			continue
		}
		conds = append(conds, Condition{Emotion: emotion, Above: above})
	}
	return conds
}

// parseQuotes parses a bracketed pseudo-list such as ['Quote one', 'Quote two'].
func parseQuotes(text string) []string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "[")
	text = strings.TrimSuffix(text, "]")
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var quotes []string
	for _, part := range strings.Split(text, quoteSeparator) {
		q := strings.Trim(part, "'\" \t\r\n")
		if q != "" {
			quotes = append(quotes, q)
		}
	}
	return quotes
}

// Row formats the profile back into the tabular row layout accepted by ParseRow.
// Conditions are written in sorted emotion order. Profiles whose triggers, emotion
// names or quotes cannot survive the pseudo-list syntax return a *FormatError
// rather than a row that would parse back differently.
func (p Profile) Row() ([]string, error) {
	if err := p.checkTabular(); err != nil {
		return nil, err
	}

	row := make([]string, RowFields)
	row[FieldLabel] = p.Label
	row[FieldTriggers] = strings.Join(p.EmotionTriggers, ", ")

	clauses := make([]string, 0, len(p.PercentConditions))
	for _, emotion := range p.Emotions() {
		clauses = append(clauses, fmt.Sprintf("%s > %s%%", emotion, strconv.FormatFloat(p.PercentConditions[emotion], 'f', -1, 64)))
	}
	row[FieldConditions] = strings.Join(clauses, ", ")

	row[FieldPattern] = p.PatternType
	row[FieldDescription] = p.Description

	quoted := slices.Clone(p.Quotes)
	for i, q := range quoted {
		quoted[i] = "'" + q + "'"
	}
	row[FieldQuotes] = "[" + strings.Join(quoted, ", ") + "]"
	return row, nil
}

// checkTabular reports the first value the row syntax cannot carry.
func (p Profile) checkTabular() error {
	unrepresentable := func(format string, args ...any) error {
		return &FormatError{Reason: fmt.Sprintf("profile %q: ", p.Label) + fmt.Sprintf(format, args...)}
	}

	for _, t := range p.EmotionTriggers {
		if strings.Contains(t, ",") {
			return unrepresentable("trigger %q contains a comma", t)
		}
	}
	for emotion := range p.PercentConditions {
		if strings.ContainsAny(emotion, ",>") {
			return unrepresentable("emotion %q contains ',' or '>'", emotion)
		}
	}
	for _, q := range p.Quotes {
		if strings.Contains(q, quoteSeparator) {
			return unrepresentable("quote %q contains %q", q, quoteSeparator)
		}
		if strings.Trim(q, "'\" \t\r\n") != q {
			return unrepresentable("quote %q starts or ends with a quote mark", q)
		}
	}
	return nil
}
