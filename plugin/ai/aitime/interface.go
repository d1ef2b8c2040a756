// Package aitime turns natural-language English date and time phrases into
// zone-aware instants and ranges.
package aitime

import (
	"context"
	"errors"
	"time"
)

// ErrParseFailure is returned when a phrase carries no usable date or time signal.
// Callers treat it as "could not parse", never as a fatal error.
var ErrParseFailure = errors.New("unable to parse time expression")

// TimeService defines the time parsing service interface.
type TimeService interface {
	// Normalize resolves a phrase against the current clock in the named zone.
	// Supports: "tomorrow at noon", "next friday 3pm", "2026-01-28", "15:00"
	Normalize(ctx context.Context, input string, timezone string) (time.Time, error)

	// Resolve resolves a phrase against an explicit reference instant.
	// The result is expressed in the reference's location.
	Resolve(ctx context.Context, phrase string, reference time.Time) (time.Time, error)

	// ParseNaturalTime parses range words ("today", "this weekend", "next week")
	// into a half-open range, falling back to a one-hour range at the resolved instant.
	ParseNaturalTime(ctx context.Context, input string, reference time.Time) (TimeRange, error)
}

// TimeRange represents a time range.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls in [Start, End).
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}
