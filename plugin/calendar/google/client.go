// Package google implements calendar.Backend on top of the Google Calendar v3 API.
package google

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/Avaneesh16/Travel-Genie/plugin/calendar"
)

// DefaultCalendarID is the signed-in user's primary calendar.
const DefaultCalendarID = "primary"

// Config configures a Client.
type Config struct {
	// CredentialsFile is the OAuth client JSON downloaded from the Google console.
	CredentialsFile string
	// TokenFile holds a previously authorized oauth2.Token as JSON.
	TokenFile  string
	CalendarID string

	// HTTPClient and Endpoint override the authorized client, mainly for tests.
	HTTPClient *http.Client
	Endpoint   string
}

// Client is a calendar.Backend backed by one Google calendar.
type Client struct {
	svc        *gcal.Service
	calendarID string
}

// New creates a Client. Token acquisition is out of scope: TokenFile must
// already hold a token; refreshes are handled by the oauth2 token source.
func New(ctx context.Context, cfg Config) (*Client, error) {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		var err error
		httpClient, err = authorizedClient(ctx, cfg.CredentialsFile, cfg.TokenFile)
		if err != nil {
			return nil, errors.Wrap(calendar.ErrBackendUnavailable, err.Error())
		}
	}

	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create calendar service")
	}

	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	return &Client{svc: svc, calendarID: calendarID}, nil
}

func authorizedClient(ctx context.Context, credentialsFile, tokenFile string) (*http.Client, error) {
	raw, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read credentials file")
	}
	conf, err := googleoauth.ConfigFromJSON(raw, gcal.CalendarEventsScope)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse credentials file")
	}

	f, err := os.Open(tokenFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open token file")
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, errors.Wrap(err, "failed to decode token file")
	}
	return conf.Client(ctx, tok), nil
}

// ListEvents lists single instances ordered by start time.
func (c *Client) ListEvents(ctx context.Context, opts calendar.ListOptions) ([]*calendar.Event, error) {
	call := c.svc.Events.List(c.calendarID).
		Context(ctx).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(opts.TimeMin.Format(time.RFC3339)).
		MaxResults(int64(opts.Limit()))
	if !opts.TimeMax.IsZero() {
		call = call.TimeMax(opts.TimeMax.Format(time.RFC3339))
	}

	resp, err := call.Do()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list events")
	}

	events := make([]*calendar.Event, 0, len(resp.Items))
	for _, item := range resp.Items {
		events = append(events, toEvent(item))
	}
	return events, nil
}

// InsertEvent inserts event into the calendar.
func (c *Client) InsertEvent(ctx context.Context, event *calendar.Event) (*calendar.Event, error) {
	created, err := c.svc.Events.Insert(c.calendarID, fromEvent(event)).Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert event")
	}
	return toEvent(created), nil
}

func toEvent(item *gcal.Event) *calendar.Event {
	return &calendar.Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Location:    item.Location,
		Start:       toEventTime(item.Start),
		End:         toEventTime(item.End),
	}
}

func toEventTime(dt *gcal.EventDateTime) calendar.EventTime {
	if dt == nil {
		return calendar.EventTime{}
	}
	if dt.DateTime == "" {
		return calendar.EventTime{Date: dt.Date}
	}
	out := calendar.EventTime{TimeZone: dt.TimeZone}
	if t, err := time.Parse(time.RFC3339, dt.DateTime); err == nil {
		out.DateTime = t
		if loc, err := time.LoadLocation(dt.TimeZone); err == nil && dt.TimeZone != "" {
			out.DateTime = t.In(loc)
		}
	}
	return out
}

func fromEvent(event *calendar.Event) *gcal.Event {
	return &gcal.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Location:    event.Location,
		Start:       fromEventTime(event.Start),
		End:         fromEventTime(event.End),
	}
}

func fromEventTime(t calendar.EventTime) *gcal.EventDateTime {
	if t.IsAllDay() {
		return &gcal.EventDateTime{Date: t.Date}
	}
	return &gcal.EventDateTime{
		DateTime: t.DateTime.Format(time.RFC3339),
		TimeZone: t.TimeZone,
	}
}

var _ calendar.Backend = (*Client)(nil)
