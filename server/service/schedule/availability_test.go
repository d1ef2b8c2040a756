package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avaneesh16/Travel-Genie/plugin/calendar"
)

func mustDenver(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Denver")
	require.NoError(t, err)
	return loc
}

func TestCheckAvailability_Empty(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	got := CheckAvailability(day, nil, time.UTC)
	assert.True(t, got.IsAvailable)
	assert.NotNil(t, got.BusyPeriods)
	assert.Empty(t, got.BusyPeriods)
	assert.Equal(t, day, got.Date)
}

func TestCheckAvailability_ConvertsToZone(t *testing.T) {
	loc := mustDenver(t)
	day := time.Date(2026, 6, 1, 0, 0, 0, 0, loc)

	// 23:30 in Denver is already June 2 in UTC.
	late := timedEvent("Late show", time.Date(2026, 6, 2, 5, 30, 0, 0, time.UTC), time.Hour)
	got := CheckAvailability(day, []*calendar.Event{late}, loc)
	require.False(t, got.IsAvailable)
	require.Len(t, got.BusyPeriods, 1)
	assert.Equal(t, "2026-06-01 23:30", got.BusyPeriods[0].Start.Format("2006-01-02 15:04"))
	assert.Equal(t, loc, got.BusyPeriods[0].Start.Location())

	next := CheckAvailability(day.AddDate(0, 0, 1), []*calendar.Event{late}, loc)
	assert.True(t, next.IsAvailable)
}

func TestCheckAvailability_KeepsEncounterOrder(t *testing.T) {
	loc := mustDenver(t)
	day := time.Date(2026, 6, 1, 0, 0, 0, 0, loc)
	evening := timedEvent("Dinner", time.Date(2026, 6, 1, 19, 0, 0, 0, loc), time.Hour)
	morning := timedEvent("Breakfast", time.Date(2026, 6, 1, 8, 0, 0, 0, loc), time.Hour)
	otherDay := timedEvent("Brunch", time.Date(2026, 6, 2, 10, 0, 0, 0, loc), time.Hour)

	got := CheckAvailability(day, []*calendar.Event{evening, otherDay, morning}, loc)
	require.Len(t, got.BusyPeriods, 2)
	assert.Equal(t, 19, got.BusyPeriods[0].Start.Hour())
	assert.Equal(t, 8, got.BusyPeriods[1].Start.Hour())
	assert.Equal(t, 9, got.BusyPeriods[1].End.Hour())
}

func TestCheckAvailability_AllDayUTCFallback(t *testing.T) {
	loc := mustDenver(t)
	holiday := allDayEvent("Holiday", time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC))

	// Midnight UTC on July 4 is the evening of July 3 in Denver.
	got := CheckAvailability(time.Date(2026, 7, 3, 12, 0, 0, 0, loc), []*calendar.Event{holiday}, loc)
	assert.False(t, got.IsAvailable)
	require.Len(t, got.BusyPeriods, 1)
	assert.Equal(t, "2026-07-03 18:00", got.BusyPeriods[0].Start.Format("2006-01-02 15:04"))
	assert.True(t, CheckAvailability(time.Date(2026, 7, 4, 12, 0, 0, 0, loc), []*calendar.Event{holiday}, loc).IsAvailable)

	// In UTC the event stays on its own date.
	assert.False(t, CheckAvailability(time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC), []*calendar.Event{holiday}, time.UTC).IsAvailable)
}

func TestCheckAvailability_NilLocation(t *testing.T) {
	day := time.Date(2026, 6, 1, 15, 0, 0, 0, time.UTC)
	got := CheckAvailability(day, []*calendar.Event{timedEvent("Meeting", day, time.Hour)}, nil)
	assert.False(t, got.IsAvailable)
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), got.Date)
}
