package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avaneesh16/Travel-Genie/plugin/ai/aitime"
	aischedule "github.com/Avaneesh16/Travel-Genie/plugin/ai/schedule"
	"github.com/Avaneesh16/Travel-Genie/plugin/calendar"
	"github.com/Avaneesh16/Travel-Genie/server/ai"
	apperrors "github.com/Avaneesh16/Travel-Genie/server/internal/errors"
	"github.com/Avaneesh16/Travel-Genie/server/render"
	"github.com/Avaneesh16/Travel-Genie/server/service/preference"
	"github.com/Avaneesh16/Travel-Genie/server/service/schedule"
)

var errDown = errors.New("backend down")

type fakeBackend struct {
	events    []*calendar.Event
	insertErr error
	inserted  []*calendar.Event
}

func (f *fakeBackend) ListEvents(_ context.Context, opts calendar.ListOptions) ([]*calendar.Event, error) {
	var out []*calendar.Event
	for _, e := range f.events {
		if opts.Matches(e) {
			out = append(out, e)
		}
	}
	calendar.SortByStart(out)
	return out, nil
}

func (f *fakeBackend) InsertEvent(_ context.Context, event *calendar.Event) (*calendar.Event, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	stored := *event
	stored.ID = fmt.Sprintf("evt-%d", len(f.inserted)+1)
	f.inserted = append(f.inserted, &stored)
	f.events = append(f.events, &stored)
	return &stored, nil
}

type fakePrefs struct {
	prefs preference.Preferences
	err   error
}

func (f *fakePrefs) GetPreferences(context.Context, string) (preference.Preferences, error) {
	return f.prefs, f.err
}

type fakeChatter struct {
	answer   string
	err      error
	messages []string
	history  [][]ai.Message
}

func (f *fakeChatter) Chat(_ context.Context, history []ai.Message, message string) (string, error) {
	f.messages = append(f.messages, message)
	f.history = append(f.history, history)
	return f.answer, f.err
}

// newTestAssistant returns an assistant fixed at Tuesday 2026-01-27 10:00 in Denver.
func newTestAssistant(t *testing.T, backend *fakeBackend, prefs PreferenceReader, chat Chatter) (*Assistant, time.Time) {
	t.Helper()
	loc, err := time.LoadLocation("America/Denver")
	require.NoError(t, err)
	now := time.Date(2026, 1, 27, 10, 0, 0, 0, loc)
	clock := func() time.Time { return now }

	a := New(Options{
		Classifier:   aischedule.NewIntentClassifier(aitime.NewParserWithClock(loc, clock)),
		Materializer: schedule.NewMaterializerWithClock(backend, loc, clock),
		Preferences:  prefs,
		Chat:         chat,
		Now:          clock,
	})
	t.Cleanup(func() { _ = a.Close() })
	return a, now
}

func TestAssistant_EmptyMessage(t *testing.T) {
	a, _ := newTestAssistant(t, &fakeBackend{}, nil, nil)

	reply, err := a.Handle(context.Background(), "s1", "   ")
	require.Error(t, err)
	assert.Nil(t, reply)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidArgument))
}

func TestAssistant_ViewCalendar(t *testing.T) {
	backend := &fakeBackend{}
	a, now := newTestAssistant(t, backend, nil, nil)

	reply, err := a.Handle(context.Background(), "s1", "show my calendar")
	require.NoError(t, err)
	assert.True(t, reply.Success)
	assert.Equal(t, aischedule.IntentViewCalendar, reply.Intent)
	assert.Equal(t, render.ClearCalendar, reply.Text)

	start := now.Add(2 * time.Hour)
	backend.events = append(backend.events, &calendar.Event{
		Summary: "Dentist visit",
		Start:   calendar.Timed(start, now.Location()),
		End:     calendar.Timed(start.Add(time.Hour), now.Location()),
	})
	reply, err = a.Handle(context.Background(), "s1", "show my calendar")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "**Dentist visit**")
	assert.Contains(t, reply.HTML, "<strong>Dentist visit</strong>")
}

func TestAssistant_CheckAvailability(t *testing.T) {
	a, _ := newTestAssistant(t, &fakeBackend{}, nil, nil)

	reply, err := a.Handle(context.Background(), "s1", "am i free tomorrow?")
	require.NoError(t, err)
	assert.True(t, reply.Success)
	assert.Equal(t, aischedule.IntentCheckAvailability, reply.Intent)
	assert.Contains(t, reply.Text, "completely free on Wednesday, Jan 28 2026")
}

func TestAssistant_CreateEvent(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		backend := &fakeBackend{}
		a, _ := newTestAssistant(t, backend, nil, nil)

		reply, err := a.Handle(context.Background(), "s1", "add lunch with sam tomorrow at noon")
		require.NoError(t, err)
		assert.True(t, reply.Success)
		assert.Equal(t, aischedule.IntentCreateEvent, reply.Intent)
		assert.True(t, strings.HasPrefix(reply.Text, "✅ Added to your calendar!"))
		require.Len(t, backend.inserted, 1)
		assert.Equal(t, "Lunch With Sam", backend.inserted[0].Summary)
	})

	t.Run("insert fails", func(t *testing.T) {
		a, _ := newTestAssistant(t, &fakeBackend{insertErr: errDown}, nil, nil)

		reply, err := a.Handle(context.Background(), "s1", "add lunch with sam tomorrow at noon")
		require.NoError(t, err)
		assert.False(t, reply.Success)
		assert.Equal(t, apperrors.ErrCodeCalendarWriteFailed, reply.Code)
		assert.Contains(t, reply.Text, "backend down")
	})
}

func TestAssistant_RecurringEvent(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		backend := &fakeBackend{}
		a, _ := newTestAssistant(t, backend, nil, nil)

		reply, err := a.Handle(context.Background(), "s1", "add yoga every day from tomorrow to friday at 7am")
		require.NoError(t, err)
		assert.True(t, reply.Success)
		assert.Equal(t, aischedule.IntentRecurringEvent, reply.Intent)
		assert.Len(t, backend.inserted, 3)
		assert.True(t, strings.HasPrefix(reply.Text, "✅ Added 3 events for Yoga"))
	})

	t.Run("conflict aborts", func(t *testing.T) {
		loc, err := time.LoadLocation("America/Denver")
		require.NoError(t, err)
		clash := time.Date(2026, 1, 29, 7, 30, 0, 0, loc)
		backend := &fakeBackend{events: []*calendar.Event{{
			Summary: "Early call",
			Start:   calendar.Timed(clash, loc),
			End:     calendar.Timed(clash.Add(time.Hour), loc),
		}}}
		a, _ := newTestAssistant(t, backend, nil, nil)

		reply, err := a.Handle(context.Background(), "s1", "add yoga every day from tomorrow to friday at 7am")
		require.NoError(t, err)
		assert.False(t, reply.Success)
		assert.Equal(t, apperrors.ErrCodeScheduleConflict, reply.Code)
		assert.True(t, strings.HasPrefix(reply.Text, "🚫 Conflicts found:"))
		assert.Contains(t, reply.Text, "2026-01-29")
		assert.Empty(t, backend.inserted)
	})

	t.Run("insert fails", func(t *testing.T) {
		a, _ := newTestAssistant(t, &fakeBackend{insertErr: errDown}, nil, nil)

		reply, err := a.Handle(context.Background(), "s1", "add yoga every day from tomorrow to friday at 7am")
		require.NoError(t, err)
		assert.False(t, reply.Success)
		assert.Equal(t, apperrors.ErrCodeCalendarWriteFailed, reply.Code)
		assert.Contains(t, reply.Text, "Stopped after adding 0 of 3 events")
	})
}

func TestAssistant_TripPlanning(t *testing.T) {
	t.Run("with preferences", func(t *testing.T) {
		prefs := preference.DefaultPreferences()
		prefs.Travel.Mode = preference.ModeFlying
		backend := &fakeBackend{}
		a, _ := newTestAssistant(t, backend, &fakePrefs{prefs: prefs}, nil)

		reply, err := a.Handle(context.Background(), "s1", "plan a trip to Denver from next Friday to next Monday")
		require.NoError(t, err)
		assert.True(t, reply.Success)
		assert.Equal(t, aischedule.IntentTripPlanning, reply.Intent)
		assert.True(t, strings.HasPrefix(reply.Text, "🌍 Trip to Denver"))
		assert.Contains(t, reply.Text, "• Mode: Flying")
		assert.Len(t, backend.inserted, 2, "trip and airport buffer")
	})

	t.Run("preferences unavailable", func(t *testing.T) {
		backend := &fakeBackend{}
		a, _ := newTestAssistant(t, backend, &fakePrefs{err: errDown}, nil)

		reply, err := a.Handle(context.Background(), "s1", "plan a trip to Denver from next Friday to next Monday")
		require.NoError(t, err)
		assert.True(t, reply.Success)
		assert.Contains(t, reply.Text, "• Mode: Driving")
		assert.Contains(t, reply.Warnings, "Couldn't load your preferences, using defaults")
		assert.Len(t, backend.inserted, 1)
	})
}

func TestAssistant_TravelFallback(t *testing.T) {
	backend := &fakeBackend{}
	a, _ := newTestAssistant(t, backend, nil, nil)

	reply, err := a.Handle(context.Background(), "s1", "I want to visit Paris")
	require.NoError(t, err)
	assert.Equal(t, aischedule.IntentUnrecognized, reply.Intent)
	assert.True(t, strings.HasPrefix(reply.Text, "🌍 Trip to Paris"))
	require.Len(t, backend.inserted, 1)
	assert.Equal(t, "2026-01-28", backend.inserted[0].Start.Date)
}

func TestAssistant_Conversation(t *testing.T) {
	t.Run("help without a chat model", func(t *testing.T) {
		a, _ := newTestAssistant(t, &fakeBackend{}, nil, nil)

		reply, err := a.Handle(context.Background(), "s1", "hello there")
		require.NoError(t, err)
		assert.True(t, reply.Success)
		assert.Equal(t, HelpText, reply.Text)
	})

	t.Run("chat keeps history per session", func(t *testing.T) {
		chat := &fakeChatter{answer: "Hi! Where to next?"}
		a, _ := newTestAssistant(t, &fakeBackend{}, nil, chat)
		ctx := context.Background()

		reply, err := a.Handle(ctx, "s1", "hello there")
		require.NoError(t, err)
		assert.Equal(t, "Hi! Where to next?", reply.Text)

		_, err = a.Handle(ctx, "s1", "how are you?")
		require.NoError(t, err)
		_, err = a.Handle(ctx, "s2", "hello there")
		require.NoError(t, err)

		require.Len(t, chat.history, 3)
		assert.Empty(t, chat.history[0])
		assert.Equal(t, []ai.Message{
			{Role: ai.RoleUser, Content: "hello there"},
			{Role: ai.RoleAssistant, Content: "Hi! Where to next?"},
		}, chat.history[1])
		assert.Empty(t, chat.history[2])

		a.ClearHistory(ctx, "s1")
		assert.Empty(t, a.History(ctx, "s1"))
	})

	t.Run("history is capped", func(t *testing.T) {
		chat := &fakeChatter{answer: "ok"}
		a, _ := newTestAssistant(t, &fakeBackend{}, nil, chat)
		ctx := context.Background()

		for i := 0; i < maxHistory; i++ {
			_, err := a.Handle(ctx, "s1", fmt.Sprintf("hello %d", i))
			require.NoError(t, err)
		}
		history := a.History(ctx, "s1")
		require.Len(t, history, maxHistory)
		assert.Equal(t, "ok", history[len(history)-1].Content)
	})

	t.Run("chat failure", func(t *testing.T) {
		chat := &fakeChatter{err: errDown}
		a, _ := newTestAssistant(t, &fakeBackend{}, nil, chat)

		reply, err := a.Handle(context.Background(), "s1", "hello there")
		require.NoError(t, err)
		assert.False(t, reply.Success)
		assert.Equal(t, apperrors.ErrCodeLLMUnavailable, reply.Code)
	})
}

func TestAssistant_ConcurrentTurnsKeepHistory(t *testing.T) {
	a, _ := newTestAssistant(t, &fakeBackend{}, nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.remember(ctx, "shared",
				ai.Message{Role: "user", Content: fmt.Sprintf("question %d", i)},
				ai.Message{Role: "assistant", Content: fmt.Sprintf("answer %d", i)})
		}()
	}
	wg.Wait()

	assert.Len(t, a.History(ctx, "shared"), 16)
}
