package schedule

import (
	"time"

	"github.com/Avaneesh16/Travel-Genie/plugin/calendar"
)

// Period is a busy interval in the target zone.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Availability tells whether a day is free.
type Availability struct {
	// Date is midnight of the day in the target zone.
	Date        time.Time `json:"date"`
	IsAvailable bool      `json:"is_available"`
	BusyPeriods []Period  `json:"busy_periods"`
}

// StartOfDay returns midnight of t's calendar date in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// CheckAvailability collects the events whose start, converted to loc, falls
// on day. Busy periods keep the order of events. Bare dates are read as
// midnight UTC, the same instant overlap and conflict checks use.
func CheckAvailability(day time.Time, events []*calendar.Event, loc *time.Location) Availability {
	if loc == nil {
		loc = time.UTC
	}
	target := StartOfDay(day, loc)

	busy := []Period{}
	for _, e := range events {
		start := e.Start.In(loc)
		if !sameDay(start, target) {
			continue
		}
		busy = append(busy, Period{Start: start, End: e.End.In(loc)})
	}

	return Availability{
		Date:        target,
		IsAvailable: len(busy) == 0,
		BusyPeriods: busy,
	}
}
