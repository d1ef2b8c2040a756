package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimezone(t *testing.T) {
	tests := []struct {
		name    string
		tz      string
		want    string
		wantErr bool
	}{
		{name: "UTC", tz: "UTC", want: "UTC"},
		{name: "empty string defaults to Denver", tz: "", want: DefaultTimezone},
		{name: "Europe/Paris", tz: "Europe/Paris", want: "Europe/Paris"},
		{name: "surrounding space", tz: " America/New_York ", want: "America/New_York"},
		{name: "invalid timezone", tz: "Invalid/Timezone", want: "UTC", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := ParseTimezone(tt.tz)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			require.NotNil(t, loc)
			assert.Equal(t, tt.want, loc.String())
		})
	}
}

func TestMustParseTimezone(t *testing.T) {
	assert.NotPanics(t, func() { MustParseTimezone("America/Denver") })
	assert.Panics(t, func() { MustParseTimezone("Not/AZone") })
}

func TestResolve(t *testing.T) {
	fallback := MustParseTimezone("Europe/London")

	assert.Equal(t, "Asia/Tokyo", Resolve(fallback, "", "Bad/Zone", "Asia/Tokyo").String())
	assert.Equal(t, fallback, Resolve(fallback, "Bad/Zone"))
	assert.Equal(t, UTC, Resolve(nil))
}

func TestParseDate(t *testing.T) {
	denver := MustParseTimezone("America/Denver")

	got, err := ParseDate("2026-03-08", denver)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, denver), got)

	_, err = ParseDate("03/08/2026", denver)
	assert.Error(t, err)
}

func TestDayBounds(t *testing.T) {
	denver := MustParseTimezone("America/Denver")
	// 03:00 UTC on the 9th is still the 8th in Denver.
	at := time.Date(2026, 3, 9, 3, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, denver), StartOfDay(at, denver))
	assert.Equal(t, time.Date(2026, 3, 8, 23, 59, 59, 999999999, denver), EndOfDay(at, denver))
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), StartOfDay(at, nil))
}
