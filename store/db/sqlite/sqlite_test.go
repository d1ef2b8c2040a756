package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avaneesh16/Travel-Genie/internal/profile"
	"github.com/Avaneesh16/Travel-Genie/store"
	"github.com/Avaneesh16/Travel-Genie/store/db"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	p := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		Data:   dir,
		DSN:    filepath.Join(dir, "test.db"),
	}
	driver, err := db.NewDBDriver(p)
	require.NoError(t, err)
	s := store.New(driver, p)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	initialized, err := s.GetDriver().IsInitialized(ctx)
	require.NoError(t, err)
	assert.True(t, initialized)
	require.NoError(t, s.Migrate(ctx))
}

func TestCalendarEventStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	events := []*store.CalendarEvent{
		{UID: "b", Summary: "Lunch", StartTs: 2000, EndTs: 5600, Timezone: "America/Denver"},
		{UID: "a", Summary: "Standup", StartTs: 1000, EndTs: 1900, Timezone: "America/Denver"},
		{UID: "c", Summary: "Holiday", StartTs: 86400, EndTs: 172800, AllDay: true},
	}
	for _, e := range events {
		created, err := s.CreateCalendarEvent(ctx, e)
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, store.Normal, created.RowStatus)
	}

	list, err := s.ListCalendarEvents(ctx, &store.FindCalendarEvent{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{list[0].UID, list[1].UID, list[2].UID})
	assert.True(t, list[2].AllDay)

	// Half-open window: an event ending exactly at the window start is excluded.
	start, end := int64(1900), int64(3000)
	list, err = s.ListCalendarEvents(ctx, &store.FindCalendarEvent{StartAfter: &start, EndBefore: &end})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Lunch", list[0].Summary)

	limit := 1
	list, err = s.ListCalendarEvents(ctx, &store.FindCalendarEvent{Limit: &limit})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	uid := "c"
	got, err := s.GetCalendarEvent(ctx, &store.FindCalendarEvent{UID: &uid})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Holiday", got.Summary)

	missing := "zzz"
	got, err = s.GetCalendarEvent(ctx, &store.FindCalendarEvent{UID: &missing})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCalendarEventDuplicateUID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateCalendarEvent(ctx, &store.CalendarEvent{UID: "x", Summary: "One", StartTs: 1, EndTs: 2})
	require.NoError(t, err)
	_, err = s.CreateCalendarEvent(ctx, &store.CalendarEvent{UID: "x", Summary: "Two", StartTs: 1, EndTs: 2})
	assert.Error(t, err)
}

func TestUserPreferencesStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	session := "session-1"

	got, err := s.GetUserPreferences(ctx, &store.FindUserPreferences{SessionID: &session})
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = s.UpsertUserPreferences(ctx, &store.UpsertUserPreferences{SessionID: session, Preferences: `{"theme":"light"}`})
	require.NoError(t, err)
	updated, err := s.UpsertUserPreferences(ctx, &store.UpsertUserPreferences{SessionID: session, Preferences: `{"theme":"dark"}`})
	require.NoError(t, err)
	assert.Equal(t, `{"theme":"dark"}`, updated.Preferences)

	got, err = s.GetUserPreferences(ctx, &store.FindUserPreferences{SessionID: &session})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, `{"theme":"dark"}`, got.Preferences)

	_, err = s.GetUserPreferences(ctx, &store.FindUserPreferences{})
	assert.Error(t, err)
}
