// Package schedule turns chat messages into calendar intents.
package schedule

import (
	"fmt"
	"time"
)

// IntentKind tags the Intent variants.
type IntentKind int

const (
	// IntentUnrecognized is for messages no matcher understood.
	IntentUnrecognized IntentKind = iota
	// IntentViewCalendar lists upcoming events.
	IntentViewCalendar
	// IntentCheckAvailability asks whether one day is free.
	IntentCheckAvailability
	// IntentCreateEvent creates one event.
	IntentCreateEvent
	// IntentRecurringEvent creates one event every N days over a date range.
	IntentRecurringEvent
	// IntentTripPlanning looks for a free day in a window and books a trip.
	IntentTripPlanning
)

// String returns the string representation of IntentKind.
func (k IntentKind) String() string {
	switch k {
	case IntentViewCalendar:
		return "view_calendar"
	case IntentCheckAvailability:
		return "check_availability"
	case IntentCreateEvent:
		return "create_event"
	case IntentRecurringEvent:
		return "recurring_event"
	case IntentTripPlanning:
		return "trip_planning"
	default:
		return "unrecognized"
	}
}

// MarshalText renders the kind by name.
func (k IntentKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name produced by MarshalText.
func (k *IntentKind) UnmarshalText(text []byte) error {
	for kind := IntentUnrecognized; kind <= IntentTripPlanning; kind++ {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown intent kind %q", text)
}

// Intent is what a message asks for. Values are immutable once classified.
type Intent interface {
	Kind() IntentKind
}

// ViewCalendar lists upcoming events.
type ViewCalendar struct{}

// CheckAvailability asks whether Date (midnight in the target zone) is free.
type CheckAvailability struct {
	Date time.Time `json:"date" yaml:"date"`
}

// CreateEvent creates a single event. A zero End means one hour after Start
// (or the next day when IsAllDay).
type CreateEvent struct {
	Summary     string    `json:"summary" yaml:"summary"`
	Start       time.Time `json:"start" yaml:"start"`
	End         time.Time `json:"end,omitzero" yaml:"end,omitempty"`
	IsAllDay    bool      `json:"is_all_day" yaml:"is_all_day"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Location    string    `json:"location,omitempty" yaml:"location,omitempty"`
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int `json:"hour" yaml:"hour"`
	Minute int `json:"minute" yaml:"minute"`
}

// String formats t as "15:04".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// On returns t on the calendar date of day in loc.
func (t TimeOfDay) On(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.In(loc).Date()
	return time.Date(y, m, d, t.Hour, t.Minute, 0, 0, loc)
}

// RecurringEvent repeats Summary every IntervalDays from StartDate to EndDate inclusive.
type RecurringEvent struct {
	Summary       string    `json:"summary" yaml:"summary"`
	StartDate     time.Time `json:"start_date" yaml:"start_date"`
	EndDate       time.Time `json:"end_date" yaml:"end_date"`
	IntervalDays  int       `json:"interval_days" yaml:"interval_days"`
	BaseTimeOfDay TimeOfDay `json:"base_time_of_day" yaml:"base_time_of_day"`
	IsAllDay      bool      `json:"is_all_day" yaml:"is_all_day"`
}

// TripPlanning books a trip to Location on the first free day in
// [StartDate, EndDate]. A zero EndDate means seven days after StartDate.
type TripPlanning struct {
	Location  string    `json:"location" yaml:"location"`
	StartDate time.Time `json:"start_date" yaml:"start_date"`
	EndDate   time.Time `json:"end_date,omitzero" yaml:"end_date,omitempty"`
}

// Unrecognized carries the original message for the conversational fallback.
type Unrecognized struct {
	Message string `json:"message" yaml:"message"`
}

func (ViewCalendar) Kind() IntentKind      { return IntentViewCalendar }
func (CheckAvailability) Kind() IntentKind { return IntentCheckAvailability }
func (CreateEvent) Kind() IntentKind       { return IntentCreateEvent }
func (RecurringEvent) Kind() IntentKind    { return IntentRecurringEvent }
func (TripPlanning) Kind() IntentKind      { return IntentTripPlanning }
func (Unrecognized) Kind() IntentKind      { return IntentUnrecognized }

// Tagged wraps an Intent with its kind for serialization.
type Tagged struct {
	Kind   IntentKind `json:"kind" yaml:"kind"`
	Intent Intent     `json:"intent" yaml:"intent"`
}

// Tag wraps intent for serialization.
func Tag(intent Intent) Tagged {
	return Tagged{Kind: intent.Kind(), Intent: intent}
}
