package breaks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestElapsedMinutes(t *testing.T) {
	start := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 15, ElapsedMinutes(start, start.Add(15*time.Minute)))
	assert.Equal(t, 16, ElapsedMinutes(start, start.Add(15*time.Minute+31*time.Second)))
	assert.Equal(t, 0, ElapsedMinutes(start, start.Add(-time.Minute)))
}

func TestIsAwaitingReview(t *testing.T) {
	assert.True(t, StatusPending.IsAwaitingReview())
	assert.True(t, StatusPostponed.IsAwaitingReview())
	assert.False(t, StatusApproved.IsAwaitingReview())
	assert.False(t, StatusActive.IsAwaitingReview())
}

func TestCreateBreakRequestValidate(t *testing.T) {
	assert.NoError(t, (&CreateBreakRequest{EmployeeID: "e1", DurationMinutes: 15}).Validate())
	assert.Error(t, (&CreateBreakRequest{EmployeeID: "e1"}).Validate())
	assert.Error(t, (&CreateBreakRequest{EmployeeID: "e1", DurationMinutes: MaxBreakMinutes + 1}).Validate())
}
