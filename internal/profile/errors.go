package profile

import (
	"errors"
	"fmt"
)

// ErrSourceFormat is matched by every FormatError.
var ErrSourceFormat = errors.New("source format error")

// FormatError reports a source row or record that is too incomplete to build a Profile.
type FormatError struct {
	Row    int // 1-based position in the source, 0 if unknown
	Reason string
}

func (e *FormatError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
	}
	return e.Reason
}

// Is reports whether target is ErrSourceFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrSourceFormat
}

// AtRow returns the error annotated with a source position.
func AtRow(err error, row int) error {
	var fe *FormatError
	if errors.As(err, &fe) {
		return &FormatError{Row: row, Reason: fe.Reason}
	}
	return fmt.Errorf("row %d: %w", row, err)
}
