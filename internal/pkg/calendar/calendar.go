// Package calendar centralizes every business-local date computation: "today",
// day boundaries, half-month pay periods and shift lengths. Nothing else in the
// module should derive a calendar date from a timestamp.
package calendar

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

const DateLayout = "2006-01-02"

// DefaultTimezone is the business timezone used when none is configured.
const DefaultTimezone = "Africa/Cairo"

// Calendar answers date questions in one named timezone using an injectable clock.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// New builds a calendar for loc. A nil now uses time.Now.
func New(loc *time.Location, now func() time.Time) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Calendar{loc: loc, now: now}
}

// Load builds a calendar for a named IANA timezone using the wall clock.
func Load(name string) (*Calendar, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", name, err)
	}
	return New(loc, nil), nil
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Now returns the current instant expressed in the business timezone.
func (c *Calendar) Now() time.Time {
	return c.now().In(c.loc)
}

// DateOf returns the business-local calendar date of t as YYYY-MM-DD.
func (c *Calendar) DateOf(t time.Time) string {
	return t.In(c.loc).Format(DateLayout)
}

// Today returns the business-local calendar date of the clock.
func (c *Calendar) Today() string {
	return c.DateOf(c.now())
}

// ClockOf returns the business-local wall clock of t as HH:MM:SS.
func (c *Calendar) ClockOf(t time.Time) string {
	return t.In(c.loc).Format("15:04:05")
}

// ParseDate parses YYYY-MM-DD as local midnight.
func (c *Calendar) ParseDate(date string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, date, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

// DayBounds returns [start, end) of a business-local day.
func (c *Calendar) DayBounds(date string) (time.Time, time.Time, error) {
	start, err := c.ParseDate(date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 0, 1), nil
}

// AddDays shifts a YYYY-MM-DD date by n days.
func (c *Calendar) AddDays(date string, n int) (string, error) {
	t, err := c.ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(DateLayout), nil
}

// DaysBetween returns the number of whole business-local calendar days between a and b.
func (c *Calendar) DaysBetween(a, b time.Time) int {
	da, _ := c.ParseDate(c.DateOf(a))
	db, _ := c.ParseDate(c.DateOf(b))
	// Dates are local midnights; rounding absorbs DST shifts.
	days := math.Round(db.Sub(da).Hours() / 24)
	return int(math.Abs(days))
}

// Period is a half-month pay period: the 1st to the 15th, or the 16th to the end of
// the month.
type Period struct {
	Start string `json:"start_date"`
	End   string `json:"end_date"`
}

// PeriodOf returns the pay period containing the business-local date of t.
func (c *Calendar) PeriodOf(t time.Time) Period {
	local := t.In(c.loc)
	y, m, d := local.Date()
	if d <= 15 {
		return Period{
			Start: time.Date(y, m, 1, 0, 0, 0, 0, c.loc).Format(DateLayout),
			End:   time.Date(y, m, 15, 0, 0, 0, 0, c.loc).Format(DateLayout),
		}
	}
	lastDay := time.Date(y, m+1, 0, 0, 0, 0, 0, c.loc).Day()
	return Period{
		Start: time.Date(y, m, 16, 0, 0, 0, 0, c.loc).Format(DateLayout),
		End:   time.Date(y, m, lastDay, 0, 0, 0, 0, c.loc).Format(DateLayout),
	}
}

// CurrentPeriod returns the pay period containing today.
func (c *Calendar) CurrentPeriod() Period {
	return c.PeriodOf(c.now())
}

// Contains reports whether date (YYYY-MM-DD) falls inside the period.
func (p Period) Contains(date string) bool {
	return date >= p.Start && date <= p.End
}

// DatesThrough lists the period's dates from Start up to min(End, through).
func (c *Calendar) DatesThrough(p Period, through string) ([]string, error) {
	last := p.End
	if through != "" && through < last {
		last = through
	}
	start, err := c.ParseDate(p.Start)
	if err != nil {
		return nil, err
	}
	var dates []string
	for d := start; d.Format(DateLayout) <= last; d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates, nil
}

// ParseClock parses HH:MM or HH:MM:SS into minutes after midnight.
func ParseClock(clock string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// ShiftHours returns the length of a shift. Shifts ending numerically before they
// start wrap past midnight. Missing or malformed times yield defaultHours.
func ShiftHours(start, end *string, defaultHours float64) float64 {
	if start == nil || end == nil {
		return defaultHours
	}
	s, ok := ParseClock(*start)
	if !ok {
		return defaultHours
	}
	e, ok := ParseClock(*end)
	if !ok {
		return defaultHours
	}
	minutes := e - s
	if minutes < 0 {
		minutes += 24 * 60
	}
	return float64(minutes) / 60
}

// IsOvernight reports whether a shift wraps past midnight.
func IsOvernight(start, end *string) bool {
	if start == nil || end == nil {
		return false
	}
	s, ok1 := ParseClock(*start)
	e, ok2 := ParseClock(*end)
	return ok1 && ok2 && e < s
}

// ParseEventTime parses a client-supplied event timestamp. Offsets in the string are
// honored; timestamps without an offset are read in the business timezone.
func (c *Calendar) ParseEventTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time string")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, c.loc); err == nil {
			return t, nil
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	return time.Time{}, fmt.Errorf("failed to parse time: %v", s)
}

// EventTime returns the parsed client timestamp or the clock when raw is nil or empty.
func (c *Calendar) EventTime(raw *string) (time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return c.now(), nil
	}
	return c.ParseEventTime(*raw)
}
