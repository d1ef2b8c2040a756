// Package render turns calendar results into chat text. Every function is
// pure; timestamps are shown in the zone passed in.
package render

import (
	"fmt"
	"slices"
	"strings"
	"time"

	aischedule "github.com/Avaneesh16/Travel-Genie/plugin/ai/schedule"
	"github.com/Avaneesh16/Travel-Genie/plugin/calendar"
	"github.com/Avaneesh16/Travel-Genie/server/service/preference"
	"github.com/Avaneesh16/Travel-Genie/server/service/schedule"
)

// Display layouts.
const (
	clockLayout      = "03:04 PM"
	allDayLayout     = "Jan 02, 2006"
	eventDateLayout  = "Mon, Jan 02 2006"
	availDateLayout  = "Monday, Jan 02 2006"
	viewDateLayout   = "Monday, January 02, 2006"
	freeDayLayout    = "Monday, January 02"
	rangeDateLayout  = "Mon, Jan 02"
	maxListedFreeDay = 3
)

// ClearCalendar is shown when there is nothing to list.
const ClearCalendar = "🎉 Your calendar is clear!"

// NoTripAvailability is shown when a trip window has no free day.
const NoTripAvailability = "🚫 No available dates found in your calendar for this trip."

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

// FormatEvent renders one event as a short card.
func FormatEvent(e *calendar.Event, loc *time.Location) string {
	loc = orUTC(loc)
	if e.IsAllDay() {
		return fmt.Sprintf("📅 **All Day**\n%s\n**%s**", e.Start.Local(loc).Format(allDayLayout), e.Summary)
	}
	start, end := e.Start.Local(loc), e.End.Local(loc)
	return fmt.Sprintf("🕒 **%s - %s**\n**%s**\n_%s_",
		start.Format(clockLayout), end.Format(clockLayout), e.Summary, start.Format(eventDateLayout))
}

// FormatAvailability renders whether a day is free.
func FormatAvailability(a schedule.Availability) string {
	date := a.Date.Format(availDateLayout)
	if a.IsAvailable {
		return fmt.Sprintf("📅 You're completely free on %s! Perfect time for a trip! 🎉", date)
	}
	lines := make([]string, 0, len(a.BusyPeriods))
	for _, p := range a.BusyPeriods {
		lines = append(lines, fmt.Sprintf("- %s to %s", p.Start.Format(clockLayout), p.End.Format(clockLayout)))
	}
	return fmt.Sprintf("📅 On %s, you have commitments during:\n%s\n\nFree time available between these slots!",
		date, strings.Join(lines, "\n"))
}

// OverlapLines renders one line per conflicting pair.
func OverlapLines(report schedule.OverlapReport, loc *time.Location) []string {
	loc = orUTC(loc)
	lines := make([]string, 0, len(report))
	for _, o := range report {
		lines = append(lines, fmt.Sprintf("⏳ **%s** (until %s) clashes with **%s** (starts %s)",
			o.First.Summary, o.FirstEnd().In(loc).Format(clockLayout),
			o.Second.Summary, o.SecondStart().In(loc).Format(clockLayout)))
	}
	return lines
}

// FormatOverlaps renders an overlap report, or an empty string when there is none.
func FormatOverlaps(report schedule.OverlapReport, loc *time.Location) string {
	return strings.Join(OverlapLines(report, loc), "\n")
}

// FormatCalendarView groups valid events by date in ascending order. Dates
// without a valid event are skipped.
func FormatCalendarView(events []*calendar.Event, loc *time.Location) string {
	loc = orUTC(loc)

	type group struct {
		day    time.Time
		events []*calendar.Event
	}
	var groups []*group
	byDate := make(map[string]*group)
	for _, e := range events {
		if !schedule.IsValidEvent(e) {
			continue
		}
		day := schedule.StartOfDay(e.Start.Local(loc), loc)
		key := day.Format(calendar.DateLayout)
		g, ok := byDate[key]
		if !ok {
			g = &group{day: day}
			byDate[key] = g
			groups = append(groups, g)
		}
		g.events = append(g.events, e)
	}
	if len(groups) == 0 {
		return ClearCalendar
	}
	slices.SortStableFunc(groups, func(a, b *group) int { return a.day.Compare(b.day) })

	var b strings.Builder
	b.WriteString("📅 Your Calendar\n")
	for _, g := range groups {
		fmt.Fprintf(&b, "\n### %s\n\n", g.day.Format(viewDateLayout))
		for _, e := range g.events {
			if e.IsAllDay() {
				fmt.Fprintf(&b, "- 📅 **%s** (All day)\n", e.Summary)
				continue
			}
			fmt.Fprintf(&b, "- 🕒 %s - %s **%s**\n",
				e.Start.Local(loc).Format(clockLayout), e.End.Local(loc).Format(clockLayout), e.Summary)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatCreated renders a created event and any overlap it introduced.
func FormatCreated(result *schedule.CreateResult, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Added to your calendar!\n\n%s", FormatEvent(result.Event, loc))
	if len(result.Overlaps) > 0 {
		fmt.Fprintf(&b, "\n\n⚠️ Heads up, this overlaps:\n%s", FormatOverlaps(result.Overlaps, loc))
	}
	return b.String()
}

// FormatRecurringResult renders either the conflicts that aborted a batch or
// the number of events created.
func FormatRecurringResult(result *schedule.RecurringResult, loc *time.Location) string {
	loc = orUTC(loc)
	if result.Aborted() {
		var b strings.Builder
		b.WriteString("🚫 Conflicts found:\n")
		for _, c := range result.Conflicts {
			fmt.Fprintf(&b, "\n📅 %s:\n", c.Date.Format(calendar.DateLayout))
			lines := make([]string, 0, len(c.Events))
			for _, e := range c.Events {
				lines = append(lines, "- "+FormatEvent(e, loc))
			}
			b.WriteString(strings.Join(lines, "\n"))
		}
		b.WriteString("\n\nPlease resolve conflicts first!")
		return b.String()
	}
	return fmt.Sprintf("✅ Added %d events for %s!", len(result.Created), describeRange(result, loc))
}

func describeRange(result *schedule.RecurringResult, loc *time.Location) string {
	n := len(result.Candidates)
	if n == 0 {
		return result.Summary
	}
	first := result.Candidates[0].Start.In(loc).Format(rangeDateLayout)
	last := result.Candidates[n-1].Start.In(loc).Format(rangeDateLayout)
	if first == last {
		return fmt.Sprintf("%s on %s", result.Summary, first)
	}
	return fmt.Sprintf("%s from %s to %s", result.Summary, first, last)
}

// FormatRecurringFailure renders a batch stopped by a failed insert.
func FormatRecurringFailure(result *schedule.RecurringResult, err error) string {
	created, total := 0, 0
	if result != nil {
		created, total = len(result.Created), len(result.Candidates)
	}
	return fmt.Sprintf("❌ Stopped after adding %d of %d events: %v", created, total, err)
}

// FormatTravelPlan renders the free days, the preferences used and what was
// added to the calendar.
func FormatTravelPlan(result *schedule.TripResult) string {
	if result.NoAvailability() {
		return appendWarnings(NoTripAvailability, result.Warnings)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🌍 Trip to %s\n", result.Destination)

	b.WriteString("\n📅 Available Dates:\n")
	days := result.FreeDays
	if len(days) > maxListedFreeDay {
		days = days[:maxListedFreeDay]
	}
	lines := make([]string, 0, len(days))
	for _, d := range days {
		lines = append(lines, "• "+d.Format(freeDayLayout))
	}
	b.WriteString(strings.Join(lines, "\n"))

	prefs := result.Preferences
	b.WriteString("\n\n🎯 Your Preferences:\n")
	fmt.Fprintf(&b, "• Mode: %s\n", aischedule.TitleCase(prefs.Mode))
	fmt.Fprintf(&b, "• Budget: $%d per night\n", prefs.AccommodationBudget)
	fmt.Fprintf(&b, "• Max travel time: %d minutes", prefs.MaxTravelTime)
	if prefs.Mode == preference.ModeFlying && len(prefs.PreferredAirlines) > 0 {
		fmt.Fprintf(&b, "\n• Preferred airlines: %s", strings.Join(prefs.PreferredAirlines, ", "))
	}

	if result.TripEvent != nil {
		b.WriteString("\n\n✅ Added trip to your calendar!")
	}
	return appendWarnings(b.String(), result.Warnings)
}

func appendWarnings(text string, warnings []string) string {
	for _, w := range warnings {
		text += "\n\n⚠️ Note: " + w
	}
	return text
}

// FormatPreferences renders a preference document for chat.
func FormatPreferences(p preference.Preferences) string {
	orNone := func(items []string) string {
		if len(items) == 0 {
			return "none"
		}
		return strings.Join(items, ", ")
	}
	notifications := "off"
	if p.Notifications {
		notifications = "on"
	}

	var b strings.Builder
	b.WriteString("⚙️ Your Preferences\n\n")
	fmt.Fprintf(&b, "• Theme: %s\n", p.Theme)
	fmt.Fprintf(&b, "• Language: %s\n", p.Language)
	fmt.Fprintf(&b, "• Notifications: %s\n", notifications)
	fmt.Fprintf(&b, "• Default event length: %d minutes\n", p.CalendarDefaultDuration)
	fmt.Fprintf(&b, "• Timezone: %s\n", p.Timezone)
	b.WriteString("\n🍽️ Food\n")
	fmt.Fprintf(&b, "• Budget per meal: $%d\n", p.Food.BudgetPerMeal)
	fmt.Fprintf(&b, "• Dietary restrictions: %s\n", orNone(p.Food.DietaryRestrictions))
	fmt.Fprintf(&b, "• Cuisines: %s\n", orNone(p.Food.CuisinePreferences))
	b.WriteString("\n✈️ Travel\n")
	fmt.Fprintf(&b, "• Mode: %s\n", aischedule.TitleCase(p.Travel.Mode))
	fmt.Fprintf(&b, "• Max travel time: %d minutes\n", p.Travel.MaxTravelTime)
	fmt.Fprintf(&b, "• Accommodation budget: $%d per night\n", p.Travel.AccommodationBudget)
	fmt.Fprintf(&b, "• Preferred airlines: %s", orNone(p.Travel.PreferredAirlines))
	return b.String()
}
