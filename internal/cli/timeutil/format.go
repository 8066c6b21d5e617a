// Package timeutil provides time formatting helpers for CLI output.
package timeutil

import "time"

// LocalTimeFormat is the format used for displaying local times in CLI output.
// Uses Go's reference time: Mon Jan 2 15:04:05 2006.
const LocalTimeFormat = "Mon Jan 2 15:04:05 2006"

// FormatLocal renders a timestamp in the local timezone for table display.
// The zero time renders as "-" so empty fields line up with the other
// placeholder columns.
func FormatLocal(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(LocalTimeFormat)
}
