package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// frenchMonths maps French month names (the Moroccan source corpus
// publishes many dates in French) to their numeric value.
var frenchMonths = map[string]time.Month{
	"janvier":   time.January,
	"fevrier":   time.February, // diacritics already stripped by Text
	"mars":      time.March,
	"avril":     time.April,
	"mai":       time.May,
	"juin":      time.June,
	"juillet":   time.July,
	"aout":      time.August,
	"septembre": time.September,
	"octobre":   time.October,
	"novembre":  time.November,
	"decembre":  time.December,
}

// ErrAmbiguousDate is returned when a slash-separated date could plausibly
// be read as either DD/MM or MM/DD. The normalizer fails closed rather
// than guess.
var ErrAmbiguousDate = fmt.Errorf("ambiguous date ordering")

// Date parses a raw date string into a UTC, time-of-day-zeroed date.
// ISO 8601 ("2025-06-26") is tried first; then a short table of
// French-locale forms ("2 janvier 2025", "26/06/2025" when unambiguous).
// Slash-separated dates where both components are <= 12 are rejected as
// ambiguous, per ErrAmbiguousDate.
func Date(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return truncateToDate(t), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return truncateToDate(t), nil
	}

	if t, ok := parseFrenchLongForm(raw); ok {
		return truncateToDate(t), nil
	}

	if t, err := parseSlashForm(raw); err != nil {
		return time.Time{}, err
	} else if !t.IsZero() {
		return truncateToDate(t), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date format: %q", raw)
}

// truncateToDate zeroes the time-of-day and forces UTC, so the value
// survives a round trip through a DATE column without shifting across a
// timezone boundary.
func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// parseFrenchLongForm parses "2 janvier 2025" style dates. The month name
// is matched case-insensitively against frenchMonths after the same
// diacritic-stripping Text applies, so "février" and "fevrier" both match.
func parseFrenchLongForm(raw string) (time.Time, bool) {
	fields := strings.Fields(stripDiacritics(strings.ToLower(raw)))
	if len(fields) != 3 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(fields[0])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	month, ok := frenchMonths[fields[1]]
	if !ok {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(fields[2])
	if err != nil || year < 1000 {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

// parseSlashForm parses "DD/MM/YYYY" or "MM/DD/YYYY" when the ordering is
// unambiguous (one of the first two components is > 12). Returns a zero
// time and nil error when the input isn't slash-separated at all (so the
// caller can fall through to a final "unrecognized" error), and
// ErrAmbiguousDate when both components are <= 12.
func parseSlashForm(raw string) (time.Time, error) {
	parts := strings.Split(raw, "/")
	if len(parts) != 3 {
		return time.Time{}, nil
	}
	a, errA := strconv.Atoi(parts[0])
	b, errB := strconv.Atoi(parts[1])
	year, errY := strconv.Atoi(parts[2])
	if errA != nil || errB != nil || errY != nil {
		return time.Time{}, nil
	}
	if year < 100 {
		year += 2000
	}

	switch {
	case a > 12 && b <= 12:
		// unambiguous DD/MM
		return time.Date(year, time.Month(b), a, 0, 0, 0, 0, time.UTC), nil
	case b > 12 && a <= 12:
		// unambiguous MM/DD
		return time.Date(year, time.Month(a), b, 0, 0, 0, 0, time.UTC), nil
	case a <= 12 && b <= 12:
		return time.Time{}, ErrAmbiguousDate
	default:
		return time.Time{}, fmt.Errorf("invalid date components: %q", raw)
	}
}
