package render

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aischedule "github.com/Avaneesh16/Travel-Genie/plugin/ai/schedule"
	"github.com/Avaneesh16/Travel-Genie/plugin/calendar"
	"github.com/Avaneesh16/Travel-Genie/server/service/preference"
	"github.com/Avaneesh16/Travel-Genie/server/service/schedule"
)

func denver(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Denver")
	require.NoError(t, err)
	return loc
}

func timed(summary string, start time.Time, d time.Duration) *calendar.Event {
	return &calendar.Event{
		Summary: summary,
		Start:   calendar.Timed(start, start.Location()),
		End:     calendar.Timed(start.Add(d), start.Location()),
	}
}

func allDay(summary string, day time.Time) *calendar.Event {
	return &calendar.Event{
		Summary: summary,
		Start:   calendar.AllDay(day),
		End:     calendar.AllDay(day.AddDate(0, 0, 1)),
	}
}

func TestFormatEvent(t *testing.T) {
	loc := denver(t)

	// 16:00 UTC is 09:00 in Denver.
	meeting := timed("Meeting", time.Date(2026, 1, 27, 16, 0, 0, 0, time.UTC), time.Hour)
	assert.Equal(t, "🕒 **09:00 AM - 10:00 AM**\n**Meeting**\n_Tue, Jan 27 2026_", FormatEvent(meeting, loc))

	trip := allDay("Trip", time.Date(2026, 2, 1, 0, 0, 0, 0, loc))
	assert.Equal(t, "📅 **All Day**\nFeb 01, 2026\n**Trip**", FormatEvent(trip, loc))
}

func TestFormatAvailability(t *testing.T) {
	loc := denver(t)
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, loc)

	free := schedule.CheckAvailability(day, nil, loc)
	assert.Equal(t, "📅 You're completely free on Saturday, Jun 01 2024! Perfect time for a trip! 🎉", FormatAvailability(free))

	busy := schedule.CheckAvailability(day, []*calendar.Event{
		timed("Brunch", time.Date(2024, 6, 1, 10, 0, 0, 0, loc), 90*time.Minute),
		timed("Concert", time.Date(2024, 6, 1, 19, 0, 0, 0, loc), 2*time.Hour),
	}, loc)
	assert.Equal(t,
		"📅 On Saturday, Jun 01 2024, you have commitments during:\n"+
			"- 10:00 AM to 11:30 AM\n"+
			"- 07:00 PM to 09:00 PM\n\n"+
			"Free time available between these slots!",
		FormatAvailability(busy))
}

func TestFormatOverlaps(t *testing.T) {
	loc := denver(t)
	meeting := timed("Meeting", time.Date(2026, 1, 27, 10, 0, 0, 0, loc), time.Hour)
	call := timed("Call", time.Date(2026, 1, 27, 10, 30, 0, 0, loc), time.Hour)

	report := schedule.FindOverlaps([]*calendar.Event{meeting, call})
	assert.Equal(t, "⏳ **Meeting** (until 11:00 AM) clashes with **Call** (starts 10:30 AM)", FormatOverlaps(report, loc))
	assert.Equal(t, "", FormatOverlaps(nil, loc))
}

func TestFormatCalendarView(t *testing.T) {
	loc := denver(t)

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, ClearCalendar, FormatCalendarView(nil, loc))
	})

	t.Run("only placeholders", func(t *testing.T) {
		events := []*calendar.Event{timed("add lunch", time.Date(2026, 1, 27, 12, 0, 0, 0, loc), time.Hour)}
		assert.Equal(t, ClearCalendar, FormatCalendarView(events, loc))
	})

	t.Run("grouped by date", func(t *testing.T) {
		events := []*calendar.Event{
			timed("Dentist", time.Date(2026, 1, 29, 15, 0, 0, 0, loc), time.Hour),
			timed("Standup", time.Date(2026, 1, 28, 9, 0, 0, 0, loc), 15*time.Minute),
			timed("create event", time.Date(2026, 1, 30, 9, 0, 0, 0, loc), time.Hour),
			allDay("Trip", time.Date(2026, 1, 28, 0, 0, 0, 0, loc)),
		}
		want := "📅 Your Calendar\n" +
			"\n### Wednesday, January 28, 2026\n\n" +
			"- 🕒 09:00 AM - 09:15 AM **Standup**\n" +
			"- 📅 **Trip** (All day)\n" +
			"\n### Thursday, January 29, 2026\n\n" +
			"- 🕒 03:00 PM - 04:00 PM **Dentist**"
		assert.Equal(t, want, FormatCalendarView(events, loc))
	})
}

func TestFormatCreated(t *testing.T) {
	loc := denver(t)
	lunch := timed("Lunch With Sam", time.Date(2026, 1, 27, 12, 0, 0, 0, loc), time.Hour)
	standup := timed("Standup", time.Date(2026, 1, 27, 12, 30, 0, 0, loc), 30*time.Minute)

	plain := FormatCreated(&schedule.CreateResult{Event: lunch}, loc)
	assert.Equal(t, "✅ Added to your calendar!\n\n🕒 **12:00 PM - 01:00 PM**\n**Lunch With Sam**\n_Tue, Jan 27 2026_", plain)

	withOverlap := FormatCreated(&schedule.CreateResult{
		Event:    lunch,
		Overlaps: schedule.FindOverlaps([]*calendar.Event{lunch, standup}),
	}, loc)
	assert.Contains(t, withOverlap, "⚠️ Heads up, this overlaps:\n⏳ **Lunch With Sam** (until 01:00 PM) clashes with **Standup** (starts 12:30 PM)")
}

func TestFormatRecurringResult(t *testing.T) {
	loc := denver(t)
	candidates := []schedule.Candidate{
		{Start: time.Date(2026, 1, 28, 7, 0, 0, 0, loc)},
		{Start: time.Date(2026, 1, 29, 7, 0, 0, 0, loc)},
	}

	t.Run("created", func(t *testing.T) {
		result := &schedule.RecurringResult{
			Summary:    "Yoga",
			Candidates: candidates,
			Created:    []*calendar.Event{{}, {}},
		}
		assert.Equal(t, "✅ Added 2 events for Yoga from Wed, Jan 28 to Thu, Jan 29!", FormatRecurringResult(result, loc))

		result.Candidates = candidates[:1]
		result.Created = result.Created[:1]
		assert.Equal(t, "✅ Added 1 events for Yoga on Wed, Jan 28!", FormatRecurringResult(result, loc))
	})

	t.Run("conflicts", func(t *testing.T) {
		result := &schedule.RecurringResult{
			Summary:    "Yoga",
			Candidates: candidates,
			Conflicts: []schedule.DayConflicts{{
				Date:   time.Date(2026, 1, 29, 0, 0, 0, 0, loc),
				Events: []*calendar.Event{timed("Dentist", time.Date(2026, 1, 29, 7, 30, 0, 0, loc), time.Hour)},
			}},
		}
		want := "🚫 Conflicts found:\n" +
			"\n📅 2026-01-29:\n" +
			"- 🕒 **07:30 AM - 08:30 AM**\n**Dentist**\n_Thu, Jan 29 2026_" +
			"\n\nPlease resolve conflicts first!"
		assert.Equal(t, want, FormatRecurringResult(result, loc))
	})

	t.Run("failure", func(t *testing.T) {
		result := &schedule.RecurringResult{Candidates: candidates, Created: []*calendar.Event{{}}}
		assert.Equal(t, "❌ Stopped after adding 1 of 2 events: backend down",
			FormatRecurringFailure(result, errors.New("backend down")))
		assert.Equal(t, "❌ Stopped after adding 0 of 0 events: bad range",
			FormatRecurringFailure(nil, errors.New("bad range")))
	})
}

func TestFormatTravelPlan(t *testing.T) {
	loc := denver(t)
	days := []time.Time{
		time.Date(2026, 2, 1, 0, 0, 0, 0, loc),
		time.Date(2026, 2, 2, 0, 0, 0, 0, loc),
		time.Date(2026, 2, 3, 0, 0, 0, 0, loc),
		time.Date(2026, 2, 4, 0, 0, 0, 0, loc),
	}
	prefs := preference.DefaultPreferences().Travel
	prefs.Mode = preference.ModeFlying
	prefs.PreferredAirlines = []string{"United", "Frontier"}

	result := &schedule.TripResult{
		Destination: "Denver",
		FreeDays:    days,
		Anchor:      days[0],
		TripEvent:   allDay("Trip", days[0]),
		Preferences: prefs,
		Warnings:    []string{"Couldn't add airport buffer: backend down"},
	}
	want := "🌍 Trip to Denver\n" +
		"\n📅 Available Dates:\n" +
		"• Sunday, February 01\n" +
		"• Monday, February 02\n" +
		"• Tuesday, February 03" +
		"\n\n🎯 Your Preferences:\n" +
		"• Mode: Flying\n" +
		"• Budget: $150 per night\n" +
		"• Max travel time: 60 minutes\n" +
		"• Preferred airlines: United, Frontier" +
		"\n\n✅ Added trip to your calendar!" +
		"\n\n⚠️ Note: Couldn't add airport buffer: backend down"
	assert.Equal(t, want, FormatTravelPlan(result))

	driving := &schedule.TripResult{
		Destination: "Boulder",
		FreeDays:    days[:1],
		Preferences: preference.DefaultPreferences().Travel,
	}
	text := FormatTravelPlan(driving)
	assert.Contains(t, text, "• Mode: Driving")
	assert.NotContains(t, text, "airlines")
	assert.NotContains(t, text, "Added trip")

	none := &schedule.TripResult{Destination: "Denver"}
	assert.Equal(t, NoTripAvailability, FormatTravelPlan(none))
}

func TestFormatPreferences(t *testing.T) {
	text := FormatPreferences(preference.DefaultPreferences())
	assert.Contains(t, text, "• Theme: light")
	assert.Contains(t, text, "• Notifications: on")
	assert.Contains(t, text, "• Dietary restrictions: none")
	assert.Contains(t, text, "• Mode: Driving")
	assert.Contains(t, text, "• Accommodation budget: $150 per night")
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML("### Monday\n\n- **Standup**\n- <script>alert(1)</script>")
	require.NoError(t, err)
	assert.Contains(t, html, "<h3>Monday</h3>")
	assert.Contains(t, html, "<strong>Standup</strong>")
	assert.NotContains(t, html, "<script>")

	html, err = RenderHTML("line one\nline two")
	require.NoError(t, err)
	assert.Contains(t, html, "<br")
}

func TestTitleCaseIsShared(t *testing.T) {
	assert.Equal(t, "Flying", aischedule.TitleCase("flying"))
}
