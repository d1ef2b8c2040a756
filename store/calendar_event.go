package store

import (
	"context"
	"time"
)

// RowStatus is the status for a row.
type RowStatus string

const (
	// Normal is the status for a normal row.
	Normal RowStatus = "NORMAL"
	// Archived is the status for an archived row.
	Archived RowStatus = "ARCHIVED"
)

func (r RowStatus) String() string {
	return string(r)
}

// CalendarEvent is the object representing one event of the built-in calendar.
type CalendarEvent struct {
	ID        int32
	UID       string
	RowStatus RowStatus
	CreatedTs int64
	UpdatedTs int64

	Summary     string
	Description string
	Location    string
	StartTs     int64
	// EndTs is exclusive.
	EndTs  int64
	AllDay bool
	// Timezone is the IANA zone the event was created in; empty for all-day events.
	Timezone string
}

// FindCalendarEvent is the find condition for calendar events.
type FindCalendarEvent struct {
	ID  *int32
	UID *string

	// Window filters: events with StartTs < EndBefore and EndTs > StartAfter.
	StartAfter *int64
	EndBefore  *int64

	RowStatus *RowStatus

	// Pagination
	Limit *int
}

// CreateCalendarEvent creates a new calendar event.
func (s *Store) CreateCalendarEvent(ctx context.Context, create *CalendarEvent) (*CalendarEvent, error) {
	return s.driver.CreateCalendarEvent(ctx, create)
}

// ListCalendarEvents lists calendar events ordered by start time.
func (s *Store) ListCalendarEvents(ctx context.Context, find *FindCalendarEvent) ([]*CalendarEvent, error) {
	return s.driver.ListCalendarEvents(ctx, find)
}

// GetCalendarEvent gets the first event matching find.
func (s *Store) GetCalendarEvent(ctx context.Context, find *FindCalendarEvent) (*CalendarEvent, error) {
	list, err := s.driver.ListCalendarEvents(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// StartTime returns the event start.
func (e *CalendarEvent) StartTime() time.Time {
	return time.Unix(e.StartTs, 0)
}

// EndTime returns the exclusive event end.
func (e *CalendarEvent) EndTime() time.Time {
	return time.Unix(e.EndTs, 0)
}

// Overlaps reports whether the event intersects [startTs, endTs).
func (e *CalendarEvent) Overlaps(startTs, endTs int64) bool {
	return e.StartTs < endTs && startTs < e.EndTs
}
