package calendar

import (
	"context"
	"errors"
	"time"
)

// DefaultMaxResults is used when ListOptions.MaxResults is not positive.
const DefaultMaxResults = 250

// ErrBackendUnavailable is returned when a backend cannot be reached or is not configured.
var ErrBackendUnavailable = errors.New("calendar backend unavailable")

// ListOptions scopes a ListEvents call to [TimeMin, TimeMax).
type ListOptions struct {
	TimeMin time.Time
	// TimeMax zero means unbounded.
	TimeMax    time.Time
	MaxResults int
}

// Limit returns the effective result cap.
func (o ListOptions) Limit() int {
	if o.MaxResults <= 0 {
		return DefaultMaxResults
	}
	return o.MaxResults
}

// Matches reports whether e intersects the window.
func (o ListOptions) Matches(e *Event) bool {
	end := o.TimeMax
	if end.IsZero() {
		end = time.Unix(1<<40, 0)
	}
	return e.Overlaps(o.TimeMin, end)
}

// Backend is the calendar collaborator.
//
// ListEvents returns single instances (recurrences expanded) ordered by start.
// InsertEvent stores one event and returns it as stored.
type Backend interface {
	ListEvents(ctx context.Context, opts ListOptions) ([]*Event, error)
	InsertEvent(ctx context.Context, event *Event) (*Event, error)
}
