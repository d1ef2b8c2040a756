package aitime

import (
	"context"
	"strings"
	"time"
)

// MockTimeService is a mock implementation of TimeService for testing.
// Phrases found in Instants or Ranges are answered from the table; anything
// else goes through the real grammar against FixedNow.
type MockTimeService struct {
	// FixedNow can be set to use a fixed "now" for testing
	FixedNow *time.Time

	Instants map[string]time.Time
	Ranges   map[string]TimeRange

	// Err, when set, is returned by every call.
	Err error
}

// NewMockTimeService creates a new MockTimeService.
func NewMockTimeService() *MockTimeService {
	return &MockTimeService{
		Instants: map[string]time.Time{},
		Ranges:   map[string]TimeRange{},
	}
}

// Normalize standardizes time expressions.
func (m *MockTimeService) Normalize(ctx context.Context, input string, timezone string) (time.Time, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return m.Resolve(ctx, input, m.now().In(loc))
}

// Resolve answers from Instants before falling back to the grammar.
func (m *MockTimeService) Resolve(_ context.Context, phrase string, reference time.Time) (time.Time, error) {
	if m.Err != nil {
		return time.Time{}, m.Err
	}
	if t, ok := m.Instants[strings.ToLower(strings.TrimSpace(phrase))]; ok {
		return t, nil
	}
	return NewParser(reference.Location()).Resolve(phrase, reference)
}

// ParseNaturalTime answers from Ranges before falling back to the grammar.
func (m *MockTimeService) ParseNaturalTime(_ context.Context, input string, reference time.Time) (TimeRange, error) {
	if m.Err != nil {
		return TimeRange{}, m.Err
	}
	if tr, ok := m.Ranges[strings.ToLower(strings.TrimSpace(input))]; ok {
		return tr, nil
	}
	return NewParser(reference.Location()).ParseRange(input, reference)
}

func (m *MockTimeService) now() time.Time {
	if m.FixedNow != nil {
		return *m.FixedNow
	}
	return time.Now()
}

var _ TimeService = (*MockTimeService)(nil)
