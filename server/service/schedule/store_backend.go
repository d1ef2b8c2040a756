package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/Avaneesh16/Travel-Genie/plugin/calendar"
	"github.com/Avaneesh16/Travel-Genie/store"
)

// Store is the interface for store operations needed by StoreBackend.
type Store interface {
	CreateCalendarEvent(ctx context.Context, create *store.CalendarEvent) (*store.CalendarEvent, error)
	ListCalendarEvents(ctx context.Context, find *store.FindCalendarEvent) ([]*store.CalendarEvent, error)
}

// StoreBackend is a calendar.Backend over the built-in SQL store.
type StoreBackend struct {
	store Store
}

// NewStoreBackend creates a backend over st.
func NewStoreBackend(st Store) *StoreBackend {
	return &StoreBackend{store: st}
}

var _ calendar.Backend = (*StoreBackend)(nil)

// ListEvents lists normal events intersecting the window, ordered by start.
func (b *StoreBackend) ListEvents(ctx context.Context, opts calendar.ListOptions) ([]*calendar.Event, error) {
	normal := store.Normal
	limit := opts.Limit()
	find := &store.FindCalendarEvent{
		RowStatus: &normal,
		Limit:     &limit,
	}
	if !opts.TimeMin.IsZero() {
		startAfter := opts.TimeMin.Unix()
		find.StartAfter = &startAfter
	}
	if !opts.TimeMax.IsZero() {
		endBefore := opts.TimeMax.Unix()
		find.EndBefore = &endBefore
	}

	list, err := b.store.ListCalendarEvents(ctx, find)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}
	events := make([]*calendar.Event, 0, len(list))
	for _, e := range list {
		events = append(events, toEvent(e))
	}
	return events, nil
}

// InsertEvent stores event under a new UID.
func (b *StoreBackend) InsertEvent(ctx context.Context, event *calendar.Event) (*calendar.Event, error) {
	if event.Start.IsZero() || event.End.IsZero() {
		return nil, fmt.Errorf("event start and end are required")
	}
	start, end := event.Start.Instant(), event.End.Instant()
	if !end.After(start) {
		return nil, fmt.Errorf("event end must be after start")
	}

	create := &store.CalendarEvent{
		UID:         shortuuid.New(),
		Summary:     event.Summary,
		Description: event.Description,
		Location:    event.Location,
		StartTs:     start.Unix(),
		EndTs:       end.Unix(),
		AllDay:      event.IsAllDay(),
	}
	if !create.AllDay {
		create.Timezone = event.Start.TimeZone
	}

	created, err := b.store.CreateCalendarEvent(ctx, create)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar event: %w", err)
	}
	return toEvent(created), nil
}

func toEvent(e *store.CalendarEvent) *calendar.Event {
	event := &calendar.Event{
		ID:          e.UID,
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
	}
	if e.AllDay {
		event.Start = calendar.AllDay(e.StartTime().UTC())
		event.End = calendar.AllDay(e.EndTime().UTC())
		return event
	}
	loc := time.UTC
	if e.Timezone != "" {
		if l, err := time.LoadLocation(e.Timezone); err == nil {
			loc = l
		}
	}
	event.Start = calendar.Timed(e.StartTime(), loc)
	event.End = calendar.Timed(e.EndTime(), loc)
	return event
}
