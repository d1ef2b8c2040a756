// Package ics implements calendar.Backend over a local iCalendar file.
//
// Recurring VEVENTs are expanded with their RRULE and EXDATEs so that
// ListEvents only ever returns single instances. Inserted events are appended
// to the file, which is rewritten atomically.
package ics

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
	"github.com/teambition/rrule-go"

	"github.com/Avaneesh16/Travel-Genie/plugin/calendar"
)

// maxOccurrencesPerEvent caps RRULE expansion of a single VEVENT.
const maxOccurrencesPerEvent = 5000

// unboundedWindow is the expansion horizon used when TimeMax is zero.
const unboundedWindow = 365 * 24 * time.Hour

type entry struct {
	uid         string
	summary     string
	description string
	location    string
	start       time.Time
	end         time.Time
	allDay      bool
	rawRRule    string
	exDates     []time.Time
}

// Backend is a file-backed calendar.
type Backend struct {
	path string
	loc  *time.Location

	mu      sync.RWMutex
	cal     *ical.Calendar
	entries []entry
}

// Open loads path, creating an empty calendar when the file does not exist yet.
func Open(path string, loc *time.Location) (*Backend, error) {
	if loc == nil {
		loc = time.UTC
	}
	b := &Backend{path: path, loc: loc, cal: ical.NewCalendar()}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return b, nil
	}
	if err := b.Reload(); err != nil {
		return nil, err
	}
	return b, nil
}

// Reload re-reads the file. Malformed VEVENTs are logged and skipped.
func (b *Backend) Reload() error {
	raw, err := os.ReadFile(b.path)
	if err != nil {
		return errors.Wrap(err, "failed to read ics file")
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(raw))
	if err != nil {
		return errors.Wrap(err, "failed to parse ics file")
	}

	entries := make([]entry, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		e, err := parseVEvent(ve)
		if err != nil {
			slog.Warn("skipping ics event", "path", b.path, "error", err)
			continue
		}
		entries = append(entries, e)
	}

	b.mu.Lock()
	b.cal = cal
	b.entries = entries
	b.mu.Unlock()

	slog.Info("ics calendar loaded", "path", b.path, "event_count", len(entries))
	return nil
}

// ListEvents expands every VEVENT intersecting the window.
func (b *Backend) ListEvents(_ context.Context, opts calendar.ListOptions) ([]*calendar.Event, error) {
	rangeStart := opts.TimeMin
	rangeEnd := opts.TimeMax
	if rangeEnd.IsZero() {
		rangeEnd = rangeStart.Add(unboundedWindow)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	events := make([]*calendar.Event, 0)
	for _, e := range b.entries {
		for _, occ := range e.occurrences(rangeStart, rangeEnd) {
			events = append(events, e.toEvent(occ, b.loc))
		}
	}

	calendar.SortByStart(events)
	if limit := opts.Limit(); len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// InsertEvent appends a VEVENT and rewrites the file.
func (b *Backend) InsertEvent(_ context.Context, event *calendar.Event) (*calendar.Event, error) {
	if event.Start.IsZero() || event.End.IsZero() {
		return nil, errors.New("event start and end are required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	uid := shortuuid.New()
	ve := b.cal.AddEvent(uid)
	ve.SetDtStampTime(time.Now().UTC())
	ve.SetSummary(event.Summary)
	if event.Description != "" {
		ve.SetDescription(event.Description)
	}
	if event.Location != "" {
		ve.SetLocation(event.Location)
	}

	e := entry{
		uid:         uid,
		summary:     event.Summary,
		description: event.Description,
		location:    event.Location,
		start:       event.Start.Instant(),
		end:         event.End.Instant(),
		allDay:      event.IsAllDay(),
	}
	if e.allDay {
		ve.SetAllDayStartAt(e.start)
		ve.SetAllDayEndAt(e.end)
	} else {
		ve.SetStartAt(e.start)
		ve.SetEndAt(e.end)
	}

	if err := writeAtomic(b.path, []byte(b.cal.Serialize())); err != nil {
		return nil, err
	}
	b.entries = append(b.entries, e)

	created := *event
	created.ID = uid
	return &created, nil
}

// occurrences returns the start instants of e intersecting [from, to).
func (e entry) occurrences(from, to time.Time) []time.Time {
	duration := e.end.Sub(e.start)
	if e.rawRRule == "" {
		if e.start.Before(to) && e.end.After(from) {
			return []time.Time{e.start}
		}
		return nil
	}

	r, err := rrule.StrToRRule(e.rawRRule)
	if err != nil {
		slog.Warn("invalid RRULE", "uid", e.uid, "rrule", e.rawRRule, "error", err)
		return nil
	}
	r.DTStart(e.start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range e.exDates {
		set.ExDate(ex.In(e.start.Location()))
	}

	// Include instances that started before the window but are still running.
	occ := set.Between(from.Add(-duration).In(e.start.Location()), to.In(e.start.Location()), true)
	out := make([]time.Time, 0, len(occ))
	for _, start := range occ {
		if len(out) >= maxOccurrencesPerEvent {
			slog.Warn("RRULE expansion truncated", "uid", e.uid)
			break
		}
		if start.Before(to) && start.Add(duration).After(from) {
			out = append(out, start)
		}
	}
	return out
}

func (e entry) toEvent(start time.Time, loc *time.Location) *calendar.Event {
	end := start.Add(e.end.Sub(e.start))
	ev := &calendar.Event{
		ID:          e.uid,
		Summary:     e.summary,
		Description: e.description,
		Location:    e.location,
	}
	if e.allDay {
		ev.Start = calendar.AllDay(start)
		ev.End = calendar.AllDay(end)
	} else {
		ev.Start = calendar.Timed(start, loc)
		ev.End = calendar.Timed(end, loc)
	}
	if e.rawRRule != "" {
		ev.ID = e.uid + "_" + start.UTC().Format("20060102T150405Z")
	}
	return ev
}

func parseVEvent(ve *ical.VEvent) (entry, error) {
	var out entry
	out.uid = ve.Id()
	if out.uid == "" {
		return out, errors.New("missing UID")
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.location = p.Value
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, errors.Errorf("event %s has no DTSTART", out.uid)
	}
	out.allDay = isDateValue(dtStart)

	var err error
	if out.allDay {
		if out.start, err = ve.GetAllDayStartAt(); err != nil {
			return out, errors.Wrapf(err, "event %s: bad DTSTART", out.uid)
		}
		out.start = midnightUTC(out.start)
		if out.end, err = ve.GetAllDayEndAt(); err != nil {
			out.end = out.start.AddDate(0, 0, 1)
		}
		out.end = midnightUTC(out.end)
	} else {
		if out.start, err = ve.GetStartAt(); err != nil {
			return out, errors.Wrapf(err, "event %s: bad DTSTART", out.uid)
		}
		if out.end, err = ve.GetEndAt(); err != nil {
			out.end = out.start.Add(time.Hour)
		}
	}
	if !out.end.After(out.start) {
		return out, errors.Errorf("event %s ends before it starts", out.uid)
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.rawRRule = p.Value
	}
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			if t, err := parseICSTime(strings.TrimSpace(part), out.start.Location()); err == nil {
				out.exDates = append(out.exDates, t)
			}
		}
	}
	return out, nil
}

// isDateValue reports whether a DTSTART is a bare DATE.
func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	switch {
	case v == "":
		return time.Time{}, errors.New("empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// writeAtomic writes data to a temp file in the same directory and renames it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create calendar directory")
	}
	tmp, err := os.CreateTemp(dir, ".calendar-*.ics")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close temp file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), path), "failed to replace ics file")
}

var _ calendar.Backend = (*Backend)(nil)
