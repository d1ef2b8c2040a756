// Package calendar defines the calendar collaborator contract shared by the
// Google, ICS and SQL-store backends.
package calendar

import (
	"sort"
	"strings"
	"time"
)

// DateLayout is the wire layout of all-day dates.
const DateLayout = "2006-01-02"

// EventTime is either a zone-aware instant (timed events) or a bare
// calendar date (all-day events).
type EventTime struct {
	DateTime time.Time `json:"dateTime,omitzero"`
	Date     string    `json:"date,omitempty"`
	TimeZone string    `json:"timeZone,omitempty"`
}

// Timed returns an EventTime for t expressed in loc.
func Timed(t time.Time, loc *time.Location) EventTime {
	if loc == nil {
		loc = time.UTC
	}
	return EventTime{DateTime: t.In(loc), TimeZone: loc.String()}
}

// AllDay returns an EventTime for the calendar date of d.
func AllDay(d time.Time) EventTime {
	return EventTime{Date: d.Format(DateLayout)}
}

// IsAllDay reports whether t is a bare date.
func (t EventTime) IsAllDay() bool {
	return t.DateTime.IsZero() && t.Date != ""
}

// IsZero reports whether neither an instant nor a date is set.
func (t EventTime) IsZero() bool {
	return t.DateTime.IsZero() && t.Date == ""
}

// Instant returns the absolute instant of t. Bare dates carry no zone and are
// read as midnight UTC.
func (t EventTime) Instant() time.Time {
	if !t.DateTime.IsZero() {
		return t.DateTime
	}
	if d, err := time.Parse(DateLayout, t.Date); err == nil {
		return d
	}
	return time.Time{}
}

// In returns the instant of t in loc.
func (t EventTime) In(loc *time.Location) time.Time {
	return t.Instant().In(loc)
}

// Local returns t as wall time in loc. Bare dates are read as midnight in loc
// rather than converted from UTC, so an all-day event stays on its own date.
func (t EventTime) Local(loc *time.Location) time.Time {
	if !t.DateTime.IsZero() {
		return t.DateTime.In(loc)
	}
	if d, err := time.ParseInLocation(DateLayout, t.Date, loc); err == nil {
		return d
	}
	return time.Time{}
}

// Event is a calendar entry as exchanged with a Backend.
type Event struct {
	ID          string    `json:"id,omitempty"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       EventTime `json:"start"`
	End         EventTime `json:"end"`
}

// IsAllDay reports whether the event starts on a bare date.
func (e *Event) IsAllDay() bool {
	return e.Start.IsAllDay()
}

// Overlaps reports whether e intersects [start, end).
func (e *Event) Overlaps(start, end time.Time) bool {
	return e.Start.Instant().Before(end) && e.End.Instant().After(start)
}

// SortByStart sorts events ascending by start instant, keeping the order of ties.
func SortByStart(events []*Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Instant().Before(events[j].Start.Instant())
	})
}

// ContainsFold reports whether any of subs occurs in s, ignoring case.
func ContainsFold(s string, subs ...string) bool {
	s = strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(s, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
