// Package timezone provides the zone helpers shared by the command line and
// the HTTP API.
//
// Every date phrase is resolved in a single configured zone. These helpers
// load that zone and parse explicit dates given on the wire.
package timezone

import (
	"fmt"
	"strings"
	"time"
)

// DefaultTimezone is used when nothing else is configured.
const DefaultTimezone = "America/Denver"

// DateLayout is the wire layout of bare dates.
const DateLayout = "2006-01-02"

// UTC is the coordinated universal time timezone
var UTC = time.UTC

// ParseTimezone parses an IANA timezone identifier (e.g., "America/Denver").
// An empty identifier means DefaultTimezone. If the timezone is invalid,
// returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		tz = DefaultTimezone
	}
	if tz == "UTC" {
		return UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// MustParseTimezone parses a timezone or panics if invalid.
// Use this for constants that are known to be valid at compile time.
func MustParseTimezone(tz string) *time.Location {
	loc, err := ParseTimezone(tz)
	if err != nil {
		panic(err)
	}
	return loc
}

// IsValidTimezone checks if a timezone identifier is valid.
func IsValidTimezone(tz string) bool {
	_, err := ParseTimezone(tz)
	return err == nil
}

// Resolve returns the first of candidates that loads, or fallback.
func Resolve(fallback *time.Location, candidates ...string) *time.Location {
	for _, tz := range candidates {
		if strings.TrimSpace(tz) == "" {
			continue
		}
		if loc, err := ParseTimezone(tz); err == nil {
			return loc
		}
	}
	if fallback == nil {
		return UTC
	}
	return fallback
}

// ParseDate parses a "2006-01-02" date as midnight in tz.
func ParseDate(s string, tz *time.Location) (time.Time, error) {
	if tz == nil {
		tz = UTC
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// StartOfDay returns the start of the day (00:00:00) in the given timezone.
func StartOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	y, m, d := t.In(tz).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, tz)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in the given timezone.
func EndOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	y, m, d := t.In(tz).Date()
	return time.Date(y, m, d, 23, 59, 59, 999999999, tz)
}

// NowInTimezone returns the current time in the given timezone.
func NowInTimezone(tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	return time.Now().In(tz)
}
