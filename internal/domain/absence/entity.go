package absence

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Absence is raised when an employee's shift ends without any attendance.
type Absence struct {
	ID               string
	EmployeeID       string
	BranchID         *string
	AbsenceDate      string
	ShiftStartTime   *string
	ShiftEndTime     *string
	DeductionAmount  decimal.Decimal
	DeductionApplied *bool
	Status           Status
	ReviewedBy       *string
	ReviewedAt       *time.Time
	ReviewNotes      *string
	CreatedAt        time.Time
}
