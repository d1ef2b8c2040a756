package schedule

import "time"

// Package-level constants for calendar operations.

const (
	// DefaultTimezone is the zone used when none is configured.
	DefaultTimezone = "America/Denver"

	// MaxInstances is the maximum number of candidates a recurring request may
	// expand to. This bounds the calls made against the calendar backend.
	MaxInstances = 500

	// DefaultEventDuration is the length of timed events without an end.
	DefaultEventDuration = time.Hour

	// UpcomingLimit is the number of events shown by the calendar view.
	UpcomingLimit = 10

	// DefaultTripWindow is the search window of trips without an end date.
	DefaultTripWindow = 7 * 24 * time.Hour

	// AirportBuffer is how long before the trip anchor the airport buffer starts.
	AirportBuffer = 3 * time.Hour

	// TripSummary is the summary of the primary trip event.
	TripSummary = "Trip"

	// AirportBufferSummary is the summary of the travel buffer event.
	AirportBufferSummary = "Travel to Airport"
)
