// Package schedule checks chat intents against the calendar backend and
// turns them into concrete events.
//
// Key features:
//   - Adjacent-pair overlap detection and per-day availability
//   - All-or-nothing expansion of recurring requests
//   - Trip planning on the first free day with an optional airport buffer
//
// Conflict checks and inserts are separate backend calls with no locking, so
// an event created between the two is not detected.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teambition/rrule-go"

	aischedule "github.com/Avaneesh16/Travel-Genie/plugin/ai/schedule"
	"github.com/Avaneesh16/Travel-Genie/plugin/ai/timeout"
	"github.com/Avaneesh16/Travel-Genie/plugin/calendar"
	"github.com/Avaneesh16/Travel-Genie/server/internal/observability"
	"github.com/Avaneesh16/Travel-Genie/server/service/preference"
)

var (
	// ErrBatchAborted is returned when a recurring request found conflicts and
	// nothing was created.
	ErrBatchAborted = errors.New("recurring batch aborted: conflicts found")

	// ErrTooManyInstances is returned when a recurring request expands past MaxInstances.
	ErrTooManyInstances = fmt.Errorf("recurring request expands to more than %d events", MaxInstances)
)

// Candidate is one event a recurring request would create.
type Candidate struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	AllDay bool      `json:"all_day"`
}

// Event returns the candidate as a backend event.
func (c Candidate) Event(summary string, loc *time.Location) *calendar.Event {
	e := &calendar.Event{Summary: summary}
	if c.AllDay {
		e.Start = calendar.AllDay(c.Start)
		e.End = calendar.AllDay(c.End)
	} else {
		e.Start = calendar.Timed(c.Start, loc)
		e.End = calendar.Timed(c.End, loc)
	}
	return e
}

// DayConflicts lists the existing events a candidate day collides with.
type DayConflicts struct {
	Date   time.Time         `json:"date"`
	Events []*calendar.Event `json:"events"`
}

// RecurringResult is the outcome of ExpandRecurring.
type RecurringResult struct {
	Summary    string            `json:"summary"`
	Candidates []Candidate       `json:"candidates"`
	Conflicts  []DayConflicts    `json:"conflicts,omitempty"`
	Created    []*calendar.Event `json:"created,omitempty"`
	Warnings   []string          `json:"warnings,omitempty"`
}

// Aborted reports whether conflicts stopped the batch.
func (r *RecurringResult) Aborted() bool {
	return len(r.Conflicts) > 0
}

// TripResult is the outcome of PlanTrip.
type TripResult struct {
	Destination string                       `json:"destination"`
	FreeDays    []time.Time                  `json:"free_days"`
	Anchor      time.Time                    `json:"anchor,omitzero"`
	TripEvent   *calendar.Event              `json:"trip_event,omitempty"`
	BufferEvent *calendar.Event              `json:"buffer_event,omitempty"`
	Preferences preference.TravelPreferences `json:"preferences"`
	Warnings    []string                     `json:"warnings,omitempty"`
}

// NoAvailability reports whether no day in the window was free.
func (r *TripResult) NoAvailability() bool {
	return len(r.FreeDays) == 0
}

// CreateResult is the outcome of CreateSingle.
type CreateResult struct {
	Event    *calendar.Event `json:"event"`
	Overlaps OverlapReport   `json:"overlaps,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

// Materializer runs intents against a calendar backend in one zone.
type Materializer struct {
	backend calendar.Backend
	loc     *time.Location
	now     func() time.Time
}

// NewMaterializer creates a materializer. A nil loc means UTC.
func NewMaterializer(backend calendar.Backend, loc *time.Location) *Materializer {
	return NewMaterializerWithClock(backend, loc, time.Now)
}

// NewMaterializerWithClock creates a materializer with a fixed clock for tests.
func NewMaterializerWithClock(backend calendar.Backend, loc *time.Location, now func() time.Time) *Materializer {
	if loc == nil {
		loc = time.UTC
	}
	return &Materializer{backend: backend, loc: loc, now: now}
}

// Location returns the zone every event is resolved in.
func (m *Materializer) Location() *time.Location {
	return m.loc
}

func (m *Materializer) listEvents(ctx context.Context, opts calendar.ListOptions) ([]*calendar.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout.CalendarCallTimeout)
	defer cancel()
	start := time.Now()
	events, err := m.backend.ListEvents(ctx, opts)
	observability.ObserveCalendarCall("list", start, err)
	return events, err
}

func (m *Materializer) insertEvent(ctx context.Context, event *calendar.Event) (*calendar.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout.CalendarCallTimeout)
	defer cancel()
	start := time.Now()
	created, err := m.backend.InsertEvent(ctx, event)
	observability.ObserveCalendarCall("insert", start, err)
	return created, err
}

// Upcoming lists the next UpcomingLimit events from now. A read failure
// yields no events and a warning.
func (m *Materializer) Upcoming(ctx context.Context) ([]*calendar.Event, []string) {
	events, err := m.listEvents(ctx, calendar.ListOptions{TimeMin: m.now(), MaxResults: UpcomingLimit})
	if err != nil {
		slog.Warn("failed to list upcoming events", "error", err)
		return nil, []string{fmt.Sprintf("Couldn't read your calendar: %v", err)}
	}
	return events, nil
}

// Availability checks day against the events of that day. A read failure is
// treated as an empty day with a warning.
func (m *Materializer) Availability(ctx context.Context, day time.Time) (Availability, []string) {
	start := StartOfDay(day, m.loc)
	events, err := m.listEvents(ctx, calendar.ListOptions{
		TimeMin: start,
		TimeMax: start.AddDate(0, 0, 1),
	})
	if err != nil {
		slog.Warn("failed to list events for availability", "date", start.Format(calendar.DateLayout), "error", err)
		return CheckAvailability(day, nil, m.loc), []string{fmt.Sprintf("Couldn't read your calendar: %v", err)}
	}
	return CheckAvailability(day, events, m.loc), nil
}

// CreateSingle inserts one event. Overlaps with existing events in the same
// window are reported as warnings; they do not stop the insert.
func (m *Materializer) CreateSingle(ctx context.Context, intent aischedule.CreateEvent) (*CreateResult, error) {
	candidate := m.createCandidate(intent)
	event := candidate.Event(intent.Summary, m.loc)
	event.Description = intent.Description
	event.Location = intent.Location

	result := &CreateResult{}
	existing, err := m.listEvents(ctx, calendar.ListOptions{TimeMin: candidate.Start, TimeMax: candidate.End})
	if err != nil {
		slog.Warn("failed to check overlaps", "summary", intent.Summary, "error", err)
		result.Warnings = append(result.Warnings, fmt.Sprintf("Couldn't check for overlaps: %v", err))
	} else {
		all := append(append([]*calendar.Event{}, existing...), event)
		result.Overlaps = FindOverlaps(all).Involves(event)
	}

	created, err := m.insertEvent(ctx, event)
	if err != nil {
		return result, fmt.Errorf("failed to create event %q: %w", intent.Summary, err)
	}
	result.Event = created
	return result, nil
}

func (m *Materializer) createCandidate(intent aischedule.CreateEvent) Candidate {
	start := intent.Start.In(m.loc)
	if intent.IsAllDay {
		day := StartOfDay(start, m.loc)
		end := day.AddDate(0, 0, 1)
		if !intent.End.IsZero() && intent.End.After(day) {
			end = StartOfDay(intent.End, m.loc)
			if !end.After(day) {
				end = day.AddDate(0, 0, 1)
			}
		}
		return Candidate{Start: day, End: end, AllDay: true}
	}
	end := intent.End
	if end.IsZero() || !end.After(start) {
		end = start.Add(DefaultEventDuration)
	}
	return Candidate{Start: start, End: end.In(m.loc)}
}

// ExpandCandidates walks from the start date to the end date inclusive,
// stepping IntervalDays, and returns one candidate per day: the whole day when
// all-day, otherwise one hour at the base time of day.
func ExpandCandidates(intent aischedule.RecurringEvent, loc *time.Location) ([]Candidate, error) {
	if loc == nil {
		loc = time.UTC
	}
	if intent.IntervalDays < 1 {
		return nil, fmt.Errorf("invalid interval of %d days", intent.IntervalDays)
	}
	first := StartOfDay(intent.StartDate, loc)
	last := StartOfDay(intent.EndDate, loc)
	if last.Before(first) {
		return nil, fmt.Errorf("end date %s is before start date %s",
			last.Format(calendar.DateLayout), first.Format(calendar.DateLayout))
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.DAILY,
		Interval: intent.IntervalDays,
		Dtstart:  first,
		Until:    last.Add(24*time.Hour - time.Second),
		Count:    MaxInstances + 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build recurrence rule: %w", err)
	}
	days := r.All()
	if len(days) > MaxInstances {
		return nil, ErrTooManyInstances
	}

	candidates := make([]Candidate, 0, len(days))
	for _, day := range days {
		if intent.IsAllDay {
			start := StartOfDay(day, loc)
			candidates = append(candidates, Candidate{Start: start, End: start.AddDate(0, 0, 1), AllDay: true})
			continue
		}
		start := intent.BaseTimeOfDay.On(day, loc)
		candidates = append(candidates, Candidate{Start: start, End: start.Add(DefaultEventDuration)})
	}
	return candidates, nil
}

// ExpandRecurring checks every candidate day for conflicts before creating
// anything. Any conflict aborts the whole batch with ErrBatchAborted and the
// conflicts grouped by date. A failed insert stops the batch; the result then
// holds the events created so far.
func (m *Materializer) ExpandRecurring(ctx context.Context, intent aischedule.RecurringEvent) (*RecurringResult, error) {
	candidates, err := ExpandCandidates(intent, m.loc)
	if err != nil {
		return nil, err
	}
	result := &RecurringResult{Summary: intent.Summary, Candidates: candidates}

	for _, c := range candidates {
		existing, err := m.listEvents(ctx, calendar.ListOptions{TimeMin: c.Start, TimeMax: c.End})
		if err != nil {
			slog.Warn("failed to check conflicts", "date", c.Start.Format(calendar.DateLayout), "error", err)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Couldn't check %s for conflicts: %v", c.Start.Format(calendar.DateLayout), err))
			continue
		}
		var clashing []*calendar.Event
		for _, e := range existing {
			if e.Overlaps(c.Start, c.End) {
				clashing = append(clashing, e)
			}
		}
		if len(clashing) > 0 {
			result.Conflicts = append(result.Conflicts, DayConflicts{Date: StartOfDay(c.Start, m.loc), Events: clashing})
		}
	}

	if result.Aborted() {
		slog.Info("recurring batch aborted", "summary", intent.Summary, "conflict_days", len(result.Conflicts))
		return result, ErrBatchAborted
	}

	for i, c := range candidates {
		created, err := m.insertEvent(ctx, c.Event(intent.Summary, m.loc))
		if err != nil {
			return result, fmt.Errorf("failed to create event %d of %d on %s: %w",
				i+1, len(candidates), c.Start.Format(calendar.DateLayout), err)
		}
		result.Created = append(result.Created, created)
	}
	slog.Info("recurring events created", "summary", intent.Summary, "count", len(result.Created))
	return result, nil
}

// PlanTrip looks for free days between the start and end dates and books an
// all-day trip on the first one. When flying, an airport buffer is added
// before the trip. Failures to create either event become warnings.
func (m *Materializer) PlanTrip(ctx context.Context, intent aischedule.TripPlanning, prefs preference.TravelPreferences) (*TripResult, error) {
	start := intent.StartDate.In(m.loc)
	end := intent.EndDate
	if end.IsZero() {
		end = start.Add(DefaultTripWindow)
	}
	end = end.In(m.loc)

	result := &TripResult{Destination: intent.Location, Preferences: prefs}

	windowStart := StartOfDay(start, m.loc)
	events, err := m.listEvents(ctx, calendar.ListOptions{
		TimeMin:    windowStart,
		TimeMax:    StartOfDay(end, m.loc).AddDate(0, 0, 1),
		MaxResults: calendar.DefaultMaxResults,
	})
	if err != nil {
		slog.Warn("failed to list events for trip", "destination", intent.Location, "error", err)
		result.Warnings = append(result.Warnings, fmt.Sprintf("Couldn't read your calendar: %v", err))
		events = nil
	}

	// Walk calendar days inclusive; free days keep the start's time of day.
	lastDay := StartOfDay(end, m.loc)
	for day := windowStart; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		if CheckAvailability(day, events, m.loc).IsAvailable {
			result.FreeDays = append(result.FreeDays, withClockOf(day, start))
		}
	}
	if result.NoAvailability() {
		return result, nil
	}
	result.Anchor = result.FreeDays[0]

	anchorDay := StartOfDay(result.Anchor, m.loc)
	trip := &calendar.Event{
		Summary:     TripSummary,
		Location:    intent.Location,
		Description: fmt.Sprintf("Travel Mode: %s\nBudget: $%d/night", prefs.Mode, prefs.AccommodationBudget),
		Start:       calendar.AllDay(anchorDay),
		End:         calendar.AllDay(anchorDay.AddDate(0, 0, 1)),
	}
	if created, err := m.insertEvent(ctx, trip); err != nil {
		slog.Warn("failed to create trip event", "destination", intent.Location, "error", err)
		result.Warnings = append(result.Warnings, fmt.Sprintf("Couldn't add to calendar: %v", err))
	} else {
		result.TripEvent = created
	}

	if prefs.Mode == preference.ModeFlying {
		bufferStart := result.Anchor.Add(-AirportBuffer)
		buffer := &calendar.Event{
			Summary: AirportBufferSummary,
			Start:   calendar.Timed(bufferStart, m.loc),
			End:     calendar.Timed(bufferStart.Add(DefaultEventDuration), m.loc),
		}
		if created, err := m.insertEvent(ctx, buffer); err != nil {
			slog.Warn("failed to create airport buffer", "destination", intent.Location, "error", err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("Couldn't add airport buffer: %v", err))
		} else {
			result.BufferEvent = created
		}
	}
	return result, nil
}

// withClockOf returns day at the wall-clock time of clock.
func withClockOf(day, clock time.Time) time.Time {
	y, mo, d := day.Date()
	return time.Date(y, mo, d, clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), day.Location())
}
