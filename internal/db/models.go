package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/moodmatch/internal/profile"
)

// ProfileRow is one stored catalog row. Fields hold the raw tabular text so
// the catalog parser treats database and file rows the same way.
type ProfileRow struct {
	Position    int
	Label       string
	Triggers    string
	Conditions  string
	Pattern     string
	Description string
	Quotes      string
	ImportID    uuid.UUID // shared by every row written in one ReplaceAll
	UpdatedAt   time.Time
}

// RowFromFields builds a ProfileRow from a tabular row in catalog field order.
// Rows shorter than profile.RowFields are rejected.
func RowFromFields(position int, fields []string) (ProfileRow, error) {
	if len(fields) < profile.RowFields {
		return ProfileRow{}, &profile.FormatError{
			Row:    position + 1,
			Reason: fmt.Sprintf("expected %d fields, got %d", profile.RowFields, len(fields)),
		}
	}
	return ProfileRow{
		Position:    position,
		Label:       fields[profile.FieldLabel],
		Triggers:    fields[profile.FieldTriggers],
		Conditions:  fields[profile.FieldConditions],
		Pattern:     fields[profile.FieldPattern],
		Description: fields[profile.FieldDescription],
		Quotes:      fields[profile.FieldQuotes],
	}, nil
}

// Fields returns the row in catalog field order.
func (r ProfileRow) Fields() []string {
	fields := make([]string, profile.RowFields)
	fields[profile.FieldLabel] = r.Label
	fields[profile.FieldTriggers] = r.Triggers
	fields[profile.FieldConditions] = r.Conditions
	fields[profile.FieldPattern] = r.Pattern
	fields[profile.FieldDescription] = r.Description
	fields[profile.FieldQuotes] = r.Quotes
	return fields
}
