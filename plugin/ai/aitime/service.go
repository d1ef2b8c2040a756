package aitime

import (
	"context"
	"strings"
	"time"
)

// Service implements TimeService with rule-based parsing.
type Service struct {
	defaultTimezone *time.Location
	now             func() time.Time
}

// NewService creates a new time service.
func NewService(defaultTimezone string) *Service {
	return NewServiceWithClock(defaultTimezone, time.Now)
}

// NewServiceWithClock creates a time service whose Normalize resolves against now.
func NewServiceWithClock(defaultTimezone string, now func() time.Time) *Service {
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		loc = time.UTC
	}
	return &Service{
		defaultTimezone: loc,
		now:             now,
	}
}

// Location returns the service's default zone.
func (s *Service) Location() *time.Location {
	return s.defaultTimezone
}

// Normalize standardizes time expressions.
func (s *Service) Normalize(_ context.Context, input string, timezone string) (time.Time, error) {
	loc := s.defaultTimezone
	if timezone != "" {
		if l, err := time.LoadLocation(timezone); err == nil {
			loc = l
		}
	}

	parser := NewParserWithClock(loc, s.now)
	return parser.Parse(input)
}

// Resolve resolves phrase against reference in the reference's location.
func (s *Service) Resolve(_ context.Context, phrase string, reference time.Time) (time.Time, error) {
	return NewParser(reference.Location()).Resolve(phrase, reference)
}

// ParseNaturalTime parses natural language time expressions.
func (s *Service) ParseNaturalTime(_ context.Context, input string, reference time.Time) (TimeRange, error) {
	return NewParser(reference.Location()).ParseRange(input, reference)
}

// ParseRange first tries range keywords, then resolves input to a one-hour range.
func (p *Parser) ParseRange(input string, reference time.Time) (TimeRange, error) {
	ref := reference.In(p.timezone)

	tr, ok := parseRangeKeyword(normalizeRangeInput(input), ref)
	if ok {
		return tr, nil
	}

	t, err := p.Resolve(input, ref)
	if err != nil {
		return TimeRange{}, err
	}

	// For specific times, default to 1-hour duration
	return TimeRange{
		Start: t,
		End:   t.Add(time.Hour),
	}, nil
}

func normalizeRangeInput(input string) string {
	s := strings.TrimRight(strings.ToLower(strings.TrimSpace(input)), "?.!")
	for _, prefix := range []string{"on ", "for ", "the "} {
		s = strings.TrimPrefix(s, prefix)
	}
	return strings.TrimSpace(s)
}

// parseRangeKeyword parses range keywords like "today", "this week".
// Day ranges start at midnight so a range never drifts into the next day.
func parseRangeKeyword(input string, ref time.Time) (TimeRange, bool) {
	loc := ref.Location()
	y, m, d := ref.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, loc)

	dayRanges := map[string]int{
		"today":                0,
		"tonight":              0,
		"tomorrow":             1,
		"day after tomorrow":   2,
		"yesterday":            -1,
		"day before yesterday": -2,
	}
	if offset, ok := dayRanges[input]; ok {
		start := dayStart.AddDate(0, 0, offset)
		return TimeRange{Start: start, End: start.AddDate(0, 0, 1)}, true
	}

	for _, mod := range []string{"", "this ", "next "} {
		name, found := strings.CutPrefix(input, mod)
		if !found {
			continue
		}
		wd, ok := weekdayNames[name]
		if !ok {
			continue
		}
		from := dayStart
		if mod == "next " {
			from = dayStart.AddDate(0, 0, 1)
		}
		start := weekdayOnOrAfter(from, wd)
		return TimeRange{Start: start, End: start.AddDate(0, 0, 1)}, true
	}

	// Weeks start on Monday.
	weekday := int(ref.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := dayStart.AddDate(0, 0, -(weekday - 1))

	switch input {
	case "this week":
		return TimeRange{Start: monday, End: monday.AddDate(0, 0, 7)}, true
	case "next week":
		start := monday.AddDate(0, 0, 7)
		return TimeRange{Start: start, End: start.AddDate(0, 0, 7)}, true
	case "last week":
		start := monday.AddDate(0, 0, -7)
		return TimeRange{Start: start, End: monday}, true
	case "weekend", "this weekend":
		sat := upcomingWeekend(dayStart)
		return TimeRange{Start: sat, End: sat.AddDate(0, 0, 2)}, true
	case "next weekend":
		sat := upcomingWeekend(dayStart).AddDate(0, 0, 7)
		return TimeRange{Start: sat, End: sat.AddDate(0, 0, 2)}, true
	}

	monthStart := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	switch input {
	case "this month":
		return TimeRange{Start: monthStart, End: monthStart.AddDate(0, 1, 0)}, true
	case "next month":
		start := monthStart.AddDate(0, 1, 0)
		return TimeRange{Start: start, End: start.AddDate(0, 1, 0)}, true
	case "last month":
		start := monthStart.AddDate(0, -1, 0)
		return TimeRange{Start: start, End: monthStart}, true
	}

	return TimeRange{}, false
}

// Ensure Service implements TimeService
var _ TimeService = (*Service)(nil)
