package leave

import "time"

// LeaveStatus enum
type LeaveStatus string

const (
	StatusPending  LeaveStatus = "pending"
	StatusApproved LeaveStatus = "approved"
	StatusRejected LeaveStatus = "rejected"
)

// LeaveRequest entity
type LeaveRequest struct {
	ID          string
	EmployeeID  string
	StartDate   string // YYYY-MM-DD inclusive
	EndDate     string
	Reason      string
	Status      LeaveStatus
	ReviewedBy  *string
	ReviewedAt  *time.Time
	ReviewNotes *string
	CreatedAt   time.Time
}
