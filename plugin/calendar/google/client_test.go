package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avaneesh16/Travel-Genie/plugin/calendar"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(context.Background(), Config{
		HTTPClient: srv.Client(),
		Endpoint:   srv.URL + "/",
	})
	require.NoError(t, err)
	return client
}

func TestClient_ListEvents(t *testing.T) {
	var query map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)
		query = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"items":[
			{"id":"a","summary":"Meeting","start":{"dateTime":"2026-01-27T10:00:00-07:00","timeZone":"America/Denver"},"end":{"dateTime":"2026-01-27T11:00:00-07:00","timeZone":"America/Denver"}},
			{"id":"b","summary":"Holiday","start":{"date":"2026-01-28"},"end":{"date":"2026-01-29"}}
		]}`)
	})

	timeMin := time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC)
	events, err := client.ListEvents(context.Background(), calendar.ListOptions{
		TimeMin:    timeMin,
		TimeMax:    timeMin.AddDate(0, 0, 2),
		MaxResults: 10,
	})
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "true", query["singleEvents"][0])
	assert.Equal(t, "startTime", query["orderBy"][0])
	assert.Equal(t, "10", query["maxResults"][0])
	assert.Equal(t, "2026-01-27T00:00:00Z", query["timeMin"][0])
	assert.Equal(t, "2026-01-29T00:00:00Z", query["timeMax"][0])

	assert.Equal(t, "Meeting", events[0].Summary)
	assert.False(t, events[0].IsAllDay())
	assert.Equal(t, "America/Denver", events[0].Start.DateTime.Location().String())
	assert.Equal(t, 10, events[0].Start.DateTime.Hour())

	assert.True(t, events[1].IsAllDay())
	assert.Equal(t, "2026-01-28", events[1].Start.Date)
}

func TestClient_InsertEvent(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		body["id"] = "created-1"
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	})

	loc, err := time.LoadLocation("America/Denver")
	require.NoError(t, err)
	start := time.Date(2026, 1, 27, 12, 0, 0, 0, loc)

	created, err := client.InsertEvent(context.Background(), &calendar.Event{
		Summary: "Lunch With Sam",
		Start:   calendar.Timed(start, loc),
		End:     calendar.Timed(start.Add(time.Hour), loc),
	})
	require.NoError(t, err)
	assert.Equal(t, "created-1", created.ID)
	assert.Equal(t, "Lunch With Sam", created.Summary)

	startBody := body["start"].(map[string]any)
	assert.Equal(t, "2026-01-27T12:00:00-07:00", startBody["dateTime"])
	assert.Equal(t, "America/Denver", startBody["timeZone"])
}

func TestClient_InsertAllDayEvent(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	})

	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err := client.InsertEvent(context.Background(), &calendar.Event{
		Summary: "Trip",
		Start:   calendar.AllDay(day),
		End:     calendar.AllDay(day.AddDate(0, 0, 1)),
	})
	require.NoError(t, err)

	startBody := body["start"].(map[string]any)
	assert.Equal(t, "2026-02-01", startBody["date"])
	assert.NotContains(t, startBody, "dateTime")
}

func TestClient_ListEventsFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
	})

	_, err := client.ListEvents(context.Background(), calendar.ListOptions{TimeMin: time.Now()})
	require.Error(t, err)
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{CredentialsFile: "/nonexistent/credentials.json"})
	require.Error(t, err)
	assert.ErrorIs(t, err, calendar.ErrBackendUnavailable)
}
