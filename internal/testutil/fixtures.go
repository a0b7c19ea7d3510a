package testutil

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/calendar"
)

// BusinessZone is a fixed UTC+2 zone so tests do not depend on DST tables.
var BusinessZone = time.FixedZone("UTC+2", 2*60*60)

func Ptr[T any](v T) *T {
	return &v
}

// Calendar returns a business calendar in BusinessZone driven by c.
func Calendar(c *Clock) *calendar.Calendar {
	return calendar.New(BusinessZone, c.Now)
}

// At returns the BusinessZone instant for a local date and clock.
func At(date, clock string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, BusinessZone)
	if err != nil {
		panic(err)
	}
	return t
}
