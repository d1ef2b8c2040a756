package v1

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Avaneesh16/Travel-Genie/plugin/calendar"
	apperrors "github.com/Avaneesh16/Travel-Genie/server/internal/errors"
	"github.com/Avaneesh16/Travel-Genie/server/render"
	"github.com/Avaneesh16/Travel-Genie/server/service/schedule"
	"github.com/Avaneesh16/Travel-Genie/server/timezone"
)

// CalendarResponse is the body of GET /api/v1/calendar.
type CalendarResponse struct {
	Events   []*calendar.Event `json:"events"`
	Text     string            `json:"text"`
	Warnings []string          `json:"warnings,omitempty"`
}

// AvailabilityResponse is the body of GET /api/v1/availability.
type AvailabilityResponse struct {
	schedule.Availability
	Text     string   `json:"text"`
	Warnings []string `json:"warnings,omitempty"`
}

// NormalizeResponse is the body of GET /api/v1/normalize.
type NormalizeResponse struct {
	Phrase   string    `json:"phrase"`
	Instant  time.Time `json:"instant"`
	Timezone string    `json:"timezone"`
}

// ListCalendar lists the next upcoming events.
// GET /api/v1/calendar
func (s *APIV1Service) ListCalendar(c echo.Context) error {
	events, warnings := s.Materializer.Upcoming(c.Request().Context())
	if events == nil {
		events = []*calendar.Event{}
	}
	return c.JSON(http.StatusOK, CalendarResponse{
		Events:   events,
		Text:     render.FormatCalendarView(events, s.Materializer.Location()),
		Warnings: warnings,
	})
}

// GetAvailability reports whether a day is free. The date query parameter is
// either YYYY-MM-DD or a phrase such as "next friday"; it defaults to today.
// GET /api/v1/availability?date=2026-01-28
func (s *APIV1Service) GetAvailability(c echo.Context) error {
	ctx := c.Request().Context()
	loc := s.Materializer.Location()
	day := timezone.StartOfDay(timezone.NowInTimezone(loc), loc)
	if raw := c.QueryParam("date"); raw != "" {
		resolved, err := s.resolveDay(ctx, raw, loc)
		if err != nil {
			return writeError(c, err)
		}
		day = resolved
	}

	availability, warnings := s.Materializer.Availability(ctx, day)
	return c.JSON(http.StatusOK, AvailabilityResponse{
		Availability: availability,
		Text:         render.FormatAvailability(availability),
		Warnings:     warnings,
	})
}

func (s *APIV1Service) resolveDay(ctx context.Context, raw string, loc *time.Location) (time.Time, error) {
	if day, err := timezone.ParseDate(raw, loc); err == nil {
		return day, nil
	}
	if s.Times == nil {
		return time.Time{}, apperrors.InvalidArgument(fmt.Sprintf("invalid date %q, want YYYY-MM-DD", raw))
	}
	t, err := s.Times.Normalize(ctx, raw, loc.String())
	if err != nil {
		return time.Time{}, apperrors.ParseFailed(fmt.Sprintf("could not understand %q", raw), err)
	}
	return timezone.StartOfDay(t, loc), nil
}

// Normalize resolves a date or time phrase to an instant.
// GET /api/v1/normalize?phrase=tomorrow+at+noon&timezone=America/Denver
func (s *APIV1Service) Normalize(c echo.Context) error {
	phrase := c.QueryParam("phrase")
	if phrase == "" || s.Times == nil {
		return writeError(c, apperrors.InvalidArgument("phrase is required"))
	}
	tz := c.QueryParam("timezone")
	if tz != "" && !timezone.IsValidTimezone(tz) {
		return writeError(c, apperrors.InvalidArgument(fmt.Sprintf("unknown timezone %q", tz)))
	}

	instant, err := s.Times.Normalize(c.Request().Context(), phrase, tz)
	if err != nil {
		return writeError(c, apperrors.ParseFailed(fmt.Sprintf("could not understand %q", phrase), err))
	}
	return c.JSON(http.StatusOK, NormalizeResponse{
		Phrase:   phrase,
		Instant:  instant,
		Timezone: instant.Location().String(),
	})
}
