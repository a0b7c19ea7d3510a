package breaks

import "time"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusPostponed Status = "POSTPONED"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
)

// IsAwaitingReview reports whether a reviewer may still act on the break.
func (s Status) IsAwaitingReview() bool {
	return s == StatusPending || s == StatusPostponed
}

type Break struct {
	ID               string
	EmployeeID       string
	RequestedMinutes int
	Status           Status
	PayoutEligible   bool
	BreakStart       *time.Time
	BreakEnd         *time.Time
	ActualMinutes    *int
	ReviewedBy       *string
	ReviewedAt       *time.Time
	ReviewNotes      *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ElapsedMinutes returns max(0, round(end-start)) in minutes.
func ElapsedMinutes(start, end time.Time) int {
	m := end.Sub(start).Round(time.Minute).Minutes()
	if m < 0 {
		return 0
	}
	return int(m)
}
