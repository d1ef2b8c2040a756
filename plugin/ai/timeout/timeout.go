// Package timeout defines centralized timeout constants for assistant operations.
package timeout

import "time"

const (
	// MessageTimeout bounds the handling of one chat message end to end,
	// including every calendar call and the chat fallback.
	MessageTimeout = 2 * time.Minute

	// CalendarCallTimeout bounds a single list or insert against the calendar backend.
	CalendarCallTimeout = 15 * time.Second

	// ChatTimeout is the timeout for one chat completion request.
	ChatTimeout = 30 * time.Second
)
