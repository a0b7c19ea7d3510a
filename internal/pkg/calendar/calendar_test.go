package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cairo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Africa/Cairo")
	require.NoError(t, err)
	return loc
}

func fixed(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestTodayUsesBusinessTimezone(t *testing.T) {
	// 23:30 UTC on Jan 14 is already Jan 15 in Cairo (UTC+2 in winter).
	at := time.Date(2025, 1, 14, 23, 30, 0, 0, time.UTC)
	cal := New(cairo(t), fixed(at))

	assert.Equal(t, "2025-01-15", cal.Today())
	assert.Equal(t, "01:30:00", cal.ClockOf(at))
}

func TestPeriodOf(t *testing.T) {
	loc := cairo(t)
	cal := New(loc, nil)

	cases := []struct {
		name string
		at   time.Time
		want Period
	}{
		{"first day", time.Date(2025, 3, 1, 10, 0, 0, 0, loc), Period{"2025-03-01", "2025-03-15"}},
		{"day 15 closes first half", time.Date(2025, 3, 15, 23, 59, 0, 0, loc), Period{"2025-03-01", "2025-03-15"}},
		{"day 16 opens second half", time.Date(2025, 3, 16, 0, 0, 0, 0, loc), Period{"2025-03-16", "2025-03-31"}},
		{"february non leap", time.Date(2025, 2, 20, 0, 0, 0, 0, loc), Period{"2025-02-16", "2025-02-28"}},
		{"february leap", time.Date(2024, 2, 20, 0, 0, 0, 0, loc), Period{"2024-02-16", "2024-02-29"}},
		{"utc instant late on the 15th", time.Date(2025, 3, 15, 22, 30, 0, 0, time.UTC), Period{"2025-03-16", "2025-03-31"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, cal.PeriodOf(c.at))
		})
	}
}

func TestDatesThrough(t *testing.T) {
	cal := New(cairo(t), nil)
	p := Period{Start: "2025-03-16", End: "2025-03-31"}

	dates, err := cal.DatesThrough(p, "2025-03-18")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-03-16", "2025-03-17", "2025-03-18"}, dates)

	all, err := cal.DatesThrough(p, "")
	require.NoError(t, err)
	assert.Len(t, all, 16)
	assert.True(t, p.Contains("2025-03-31"))
	assert.False(t, p.Contains("2025-04-01"))
}

func TestDaysBetween(t *testing.T) {
	loc := cairo(t)
	cal := New(loc, nil)

	a := time.Date(2025, 3, 1, 23, 0, 0, 0, loc)
	b := time.Date(2025, 3, 4, 1, 0, 0, 0, loc)
	assert.Equal(t, 3, cal.DaysBetween(a, b))
	assert.Equal(t, 3, cal.DaysBetween(b, a))
	assert.Equal(t, 0, cal.DaysBetween(a, a))
}

func TestDayBounds(t *testing.T) {
	loc := cairo(t)
	cal := New(loc, nil)

	start, end, err := cal.DayBounds("2025-01-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2025, 1, 16, 0, 0, 0, 0, loc), end)

	_, _, err = cal.DayBounds("15/01/2025")
	assert.Error(t, err)
}

func str(s string) *string { return &s }

func TestShiftHours(t *testing.T) {
	cases := []struct {
		name       string
		start, end *string
		want       float64
	}{
		{"day shift", str("09:00"), str("17:00"), 8},
		{"seconds precision", str("09:00:00"), str("17:30:00"), 8.5},
		{"overnight wraps", str("21:00"), str("05:00"), 8},
		{"missing start", nil, str("17:00"), 8},
		{"malformed", str("nine"), str("17:00"), 8},
		{"out of range hour", str("25:00"), str("17:00"), 8},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.InDelta(t, c.want, ShiftHours(c.start, c.end, 8), 1e-9)
		})
	}

	assert.True(t, IsOvernight(str("21:00"), str("05:00")))
	assert.False(t, IsOvernight(str("09:00"), str("17:00")))
}

func TestParseEventTime(t *testing.T) {
	loc := cairo(t)
	cal := New(loc, nil)

	got, err := cal.ParseEventTime("2025-01-15T10:30:00Z")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)))

	got, err = cal.ParseEventTime("2025-01-15 12:30:00")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)))

	got, err = cal.ParseEventTime("1736937000000")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)))

	_, err = cal.ParseEventTime("yesterday")
	assert.Error(t, err)

	now := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)
	cal = New(loc, fixed(now))
	got, err = cal.EventTime(nil)
	require.NoError(t, err)
	assert.True(t, got.Equal(now))
}
