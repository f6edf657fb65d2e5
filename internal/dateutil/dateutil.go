// Package dateutil formats and validates the YYYY-MM-DD date strings the
// exercise log is keyed on. The encoding sorts lexically in calendar order,
// which is what makes string range filters in the storage layer correct.
package dateutil

import (
	"fmt"
	"regexp"
	"time"

	pkgerrors "github.com/mlezhnin/exercise-tracker/pkg/errors"
)

const Layout = "2006-01-02"

var formatRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Format renders t as YYYY-MM-DD using its local calendar fields.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// ValidateCalendarDate checks that value is a real calendar date, not just a
// well-shaped string. Parsing and re-formatting must round-trip exactly, so
// overflowed values like "2025-40-40" are rejected instead of being rolled
// into a later month.
func ValidateCalendarDate(value string) error {
	t, err := time.ParseInLocation(Layout, value, time.Local)
	if err != nil {
		return fmt.Errorf("%w: %q", pkgerrors.ErrInvalidDate, value)
	}
	if Format(t) != value {
		return fmt.Errorf("%w: %q", pkgerrors.ErrInvalidDate, value)
	}
	return nil
}

// ValidateFormat validates a client-supplied date string for the named field.
// An empty value means "use today" and resolves via Format. The returned
// error message names the field so handlers can report it verbatim.
func ValidateFormat(value, field string) (string, error) {
	if value == "" {
		return Format(time.Now()), nil
	}
	if !formatRe.MatchString(value) {
		return "", fmt.Errorf("%s must be a valid YYYY-MM-DD date", field)
	}
	if err := ValidateCalendarDate(value); err != nil {
		return "", fmt.Errorf("%s must be a valid YYYY-MM-DD date", field)
	}
	return value, nil
}
