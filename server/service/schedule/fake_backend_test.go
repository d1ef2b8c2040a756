package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Avaneesh16/Travel-Genie/plugin/calendar"
)

var errBackendDown = errors.New("backend down")

// fakeBackend is an in-memory calendar.Backend.
type fakeBackend struct {
	events    []*calendar.Event
	listErr   error
	insertErr error
	// failInsert selects which inserts fail with insertErr; nil fails all.
	failInsert func(*calendar.Event) bool

	listCalls []calendar.ListOptions
	inserted  []*calendar.Event
}

func (f *fakeBackend) ListEvents(_ context.Context, opts calendar.ListOptions) ([]*calendar.Event, error) {
	f.listCalls = append(f.listCalls, opts)
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*calendar.Event
	for _, e := range f.events {
		if opts.Matches(e) {
			out = append(out, e)
		}
	}
	calendar.SortByStart(out)
	if len(out) > opts.Limit() {
		out = out[:opts.Limit()]
	}
	return out, nil
}

func (f *fakeBackend) InsertEvent(_ context.Context, event *calendar.Event) (*calendar.Event, error) {
	if f.insertErr != nil && (f.failInsert == nil || f.failInsert(event)) {
		return nil, f.insertErr
	}
	stored := *event
	stored.ID = fmt.Sprintf("evt-%d", len(f.inserted)+1)
	f.inserted = append(f.inserted, &stored)
	f.events = append(f.events, &stored)
	return &stored, nil
}

func timedEvent(summary string, start time.Time, d time.Duration) *calendar.Event {
	return &calendar.Event{
		Summary: summary,
		Start:   calendar.Timed(start, start.Location()),
		End:     calendar.Timed(start.Add(d), start.Location()),
	}
}

func allDayEvent(summary string, day time.Time) *calendar.Event {
	return &calendar.Event{
		Summary: summary,
		Start:   calendar.AllDay(day),
		End:     calendar.AllDay(day.AddDate(0, 0, 1)),
	}
}
