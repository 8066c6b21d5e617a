package timeutil

import (
	"testing"
	"time"
)

func TestFormatLocal_ZeroTime(t *testing.T) {
	if got := FormatLocal(time.Time{}); got != "-" {
		t.Errorf("Expected -, got %s", got)
	}
}

func TestFormatLocal_RoundTrip(t *testing.T) {
	ts := time.Date(2026, time.March, 14, 9, 26, 53, 0, time.UTC)

	got := FormatLocal(ts)
	parsed, err := time.ParseInLocation(LocalTimeFormat, got, time.Local)
	if err != nil {
		t.Fatalf("FormatLocal output %q does not parse: %v", got, err)
	}
	if !parsed.Equal(ts) {
		t.Errorf("Expected %v, got %v", ts, parsed)
	}
}
