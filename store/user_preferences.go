package store

import "context"

// UserPreferences holds the preference document of one chat session.
type UserPreferences struct {
	SessionID   string
	Preferences string // JSON string
	CreatedTs   int64
	UpdatedTs   int64
}

// FindUserPreferences specifies the conditions for finding user preferences.
type FindUserPreferences struct {
	SessionID *string
}

// UpsertUserPreferences specifies the data for upserting user preferences.
type UpsertUserPreferences struct {
	SessionID   string
	Preferences string // JSON string
}

// UpsertUserPreferences creates or replaces the preferences of a session.
func (s *Store) UpsertUserPreferences(ctx context.Context, upsert *UpsertUserPreferences) (*UserPreferences, error) {
	return s.driver.UpsertUserPreferences(ctx, upsert)
}

// GetUserPreferences returns nil without error when the session has none.
func (s *Store) GetUserPreferences(ctx context.Context, find *FindUserPreferences) (*UserPreferences, error) {
	return s.driver.GetUserPreferences(ctx, find)
}
