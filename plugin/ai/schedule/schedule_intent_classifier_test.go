package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avaneesh16/Travel-Genie/plugin/ai/aitime"
)

const stamp = "2006-01-02 15:04"

// newTestClassifier returns a classifier fixed at Tuesday 2026-01-27 10:00 in Denver.
func newTestClassifier(t *testing.T) (*IntentClassifier, time.Time) {
	t.Helper()
	loc, err := time.LoadLocation("America/Denver")
	require.NoError(t, err)
	now := time.Date(2026, 1, 27, 10, 0, 0, 0, loc)
	parser := aitime.NewParserWithClock(loc, func() time.Time { return now })
	return NewIntentClassifier(parser), now
}

func TestIntentClassifier_ViewCalendar(t *testing.T) {
	c, now := newTestClassifier(t)

	inputs := []string{
		"show my calendar",
		"What's on my calendar?",
		"what is on my calendar today",
		"what do I have scheduled this week",
		"tell me my schedule",
		"can you list events",
		"Check my agenda please",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			intent, name := c.ClassifyAt(input, now)
			assert.Equal(t, IntentViewCalendar, intent.Kind())
			assert.Equal(t, "view", name)
		})
	}
}

func TestIntentClassifier_CheckAvailability(t *testing.T) {
	c, now := newTestClassifier(t)

	tests := []struct {
		input    string
		wantDate string
	}{
		{"Am I free tomorrow?", "2026-01-28 00:00"},
		{"am i free", "2026-01-27 00:00"},
		{"are we available on friday", "2026-01-30 00:00"},
		{"am i busy today", "2026-01-27 00:00"},
		{"check my availability for next tuesday", "2026-02-03 00:00"},
		{"do I have anything scheduled on friday?", "2026-01-30 00:00"},
		{"do i have anything on june 5", "2026-06-05 00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			intent, name := c.ClassifyAt(tt.input, now)
			require.Equal(t, "availability", name)
			got, ok := intent.(CheckAvailability)
			require.True(t, ok)
			assert.Equal(t, tt.wantDate, got.Date.Format(stamp))
		})
	}
}

func TestIntentClassifier_CreateEvent(t *testing.T) {
	c, now := newTestClassifier(t)

	tests := []struct {
		input       string
		wantSummary string
		wantStart   string
		wantAllDay  bool
	}{
		{"add lunch with Sam at noon", "Lunch With Sam", "2026-01-27 12:00", false},
		{"add lunch with sam tomorrow at noon", "Lunch With Sam", "2026-01-28 12:00", false},
		{"schedule dentist appointment next friday at 3pm", "Dentist Appointment", "2026-01-30 15:00", false},
		{"add dinner for friday at 7pm", "Dinner", "2026-01-30 19:00", false},
		{"add a chat with bob at 3pm", "A Chat With Bob", "2026-01-27 15:00", false},
		{"create team offsite on friday all day", "Team Offsite", "2026-01-30 00:00", true},
		{"add standup at 9", "Standup", "2026-01-28 09:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			intent, name := c.ClassifyAt(tt.input, now)
			require.Equal(t, "create", name)
			got, ok := intent.(CreateEvent)
			require.True(t, ok)
			assert.Equal(t, tt.wantSummary, got.Summary)
			assert.Equal(t, tt.wantStart, got.Start.Format(stamp))
			assert.Equal(t, tt.wantAllDay, got.IsAllDay)
			assert.Equal(t, "America/Denver", got.Start.Location().String())
			assert.True(t, got.End.IsZero())
		})
	}
}

func TestIntentClassifier_TripPlanning(t *testing.T) {
	c, now := newTestClassifier(t)

	tests := []struct {
		input        string
		wantLocation string
		wantStart    string
		wantEnd      string
	}{
		{"plan a trip to Denver from next Friday to next Monday", "Denver", "2026-01-30 00:00", "2026-02-02 00:00"},
		{"plan a trip to new york from next friday to sunday", "New York", "2026-01-30 00:00", "2026-02-01 00:00"},
		{"add a trip to boulder on friday through june 5", "Boulder", "2026-01-30 00:00", "2026-06-05 00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			intent, name := c.ClassifyAt(tt.input, now)
			require.Equal(t, "trip", name)
			got, ok := intent.(TripPlanning)
			require.True(t, ok)
			assert.Equal(t, tt.wantLocation, got.Location)
			assert.Equal(t, tt.wantStart, got.StartDate.Format(stamp))
			assert.Equal(t, tt.wantEnd, got.EndDate.Format(stamp))
		})
	}
}

func TestIntentClassifier_TripEndDateOnly(t *testing.T) {
	c, now := newTestClassifier(t)

	tests := []struct {
		input     string
		wantStart string
		wantEnd   string
	}{
		{"plan a trip to denver from tomorrow to friday", "2026-01-28 10:00", "2026-01-30 00:00"},
		// The end names the start's own day, so it is not pushed a week out.
		{"plan a trip to denver from tomorrow to wednesday", "2026-01-28 10:00", "2026-01-28 00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			intent, name := c.ClassifyAt(tt.input, now)
			require.Equal(t, "trip", name)
			got := intent.(TripPlanning)
			assert.Equal(t, tt.wantStart, got.StartDate.Format(stamp))
			assert.Equal(t, tt.wantEnd, got.EndDate.Format(stamp))
		})
	}
}

func TestIntentClassifier_NamedDayIsToday(t *testing.T) {
	loc, err := time.LoadLocation("America/Denver")
	require.NoError(t, err)
	friday := time.Date(2026, 1, 30, 10, 0, 0, 0, loc)
	c := NewIntentClassifier(aitime.NewParserWithClock(loc, func() time.Time { return friday }))

	intent, name := c.ClassifyAt("add dinner for friday at 7pm", friday)
	require.Equal(t, "create", name)
	assert.Equal(t, "2026-01-30 19:00", intent.(CreateEvent).Start.Format(stamp))

	intent, name = c.ClassifyAt("create team offsite on friday all day", friday)
	require.Equal(t, "create", name)
	assert.Equal(t, "2026-01-30 00:00", intent.(CreateEvent).Start.Format(stamp))

	intent, name = c.ClassifyAt("plan a trip to new york from friday to sunday", friday)
	require.Equal(t, "trip", name)
	trip := intent.(TripPlanning)
	assert.Equal(t, "2026-01-30 10:00", trip.StartDate.Format(stamp))
	assert.Equal(t, "2026-02-01 00:00", trip.EndDate.Format(stamp))

	intent, name = c.ClassifyAt("am I free on friday", friday)
	require.Equal(t, "availability", name)
	assert.Equal(t, "2026-01-30 00:00", intent.(CheckAvailability).Date.Format(stamp))
}

func TestIntentClassifier_TripDefaults(t *testing.T) {
	c, now := newTestClassifier(t)

	// The start phrase never parses, so the start defaults to tomorrow and
	// the end to a week after it.
	intent, name := c.ClassifyAt("plan a trip to paris sometime to relax", now)
	require.Equal(t, "trip", name)
	got := intent.(TripPlanning)
	assert.Equal(t, "Paris", got.Location)
	assert.Equal(t, "2026-01-28 10:00", got.StartDate.Format(stamp))
	assert.Equal(t, "2026-02-04 10:00", got.EndDate.Format(stamp))
}

func TestIntentClassifier_Unrecognized(t *testing.T) {
	c, now := newTestClassifier(t)

	inputs := []string{
		"hello there",
		"what's the weather like in Denver",
		"add something",
		"I want to visit Paris",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			intent, name := c.ClassifyAt(input, now)
			assert.Equal(t, "", name)
			got, ok := intent.(Unrecognized)
			require.True(t, ok)
			assert.Equal(t, input, got.Message)
		})
	}
}

func TestIntentClassifier_FirstMatchWins(t *testing.T) {
	c, now := newTestClassifier(t)

	// Both the view and the create families match; view is evaluated first.
	intent, name := c.ClassifyAt("show my schedule and add lunch at noon", now)
	assert.Equal(t, "view", name)
	assert.Equal(t, IntentViewCalendar, intent.Kind())

	// Recurring phrases are not swallowed by the single-event matcher.
	intent, name = c.ClassifyAt("add yoga every day from tomorrow to friday at 7am", now)
	assert.Equal(t, "recurring", name)
	assert.Equal(t, IntentRecurringEvent, intent.Kind())
}

func TestIntentClassifier_CustomMatcherOrder(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 1, 27, 10, 0, 0, 0, loc)
	parser := aitime.NewParserWithClock(loc, func() time.Time { return now })

	c := NewIntentClassifierWithMatchers(parser, &createMatcher{parser: parser}, &viewMatcher{})
	_, name := c.ClassifyAt("show my schedule and add lunch at noon", now)
	assert.Equal(t, "create", name)
}

func TestIntentClassifier_Deterministic(t *testing.T) {
	c, now := newTestClassifier(t)

	inputs := []string{
		"add lunch with Sam at noon",
		"plan a trip to Denver from next Friday to next Monday",
		"add yoga every day for 2 weeks at 7am",
		"am i free friday",
	}
	for _, input := range inputs {
		first, _ := c.ClassifyAt(input, now)
		for i := 0; i < 3; i++ {
			again, _ := c.ClassifyAt(input, now)
			assert.Equal(t, first, again, input)
		}
	}
}

func TestIntentClassifier_ClassifyUsesParserClock(t *testing.T) {
	c, _ := newTestClassifier(t)

	got, ok := c.Classify("add lunch with Sam at noon").(CreateEvent)
	require.True(t, ok)
	assert.Equal(t, "2026-01-27 12:00", got.Start.Format(stamp))
}

func TestIntentKind_String(t *testing.T) {
	assert.Equal(t, "view_calendar", IntentViewCalendar.String())
	assert.Equal(t, "check_availability", IntentCheckAvailability.String())
	assert.Equal(t, "create_event", IntentCreateEvent.String())
	assert.Equal(t, "recurring_event", IntentRecurringEvent.String())
	assert.Equal(t, "trip_planning", IntentTripPlanning.String())
	assert.Equal(t, "unrecognized", IntentUnrecognized.String())
}

func TestIntentKind_TextRoundTrip(t *testing.T) {
	var k IntentKind
	require.NoError(t, k.UnmarshalText([]byte("trip_planning")))
	assert.Equal(t, IntentTripPlanning, k)
	assert.Error(t, k.UnmarshalText([]byte("teleport")))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Lunch With Sam", TitleCase("lunch with sam"))
	assert.Equal(t, "Sam's Party", TitleCase("  sam's party "))
}
