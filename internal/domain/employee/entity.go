package employee

import (
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/user"
	"github.com/shopspring/decimal"
)

type Employee struct {
	ID             string
	FullName       string
	Role           user.Role
	BranchID       *string
	BranchName     *string
	HourlyRate     *decimal.Decimal
	ShiftStartTime *string // HH:MM, business-local
	ShiftEndTime   *string
	IsActive       bool
}

// RateOr returns the employee's hourly rate, or fallback when none is set.
func (e Employee) RateOr(fallback decimal.Decimal) decimal.Decimal {
	if e.HourlyRate == nil || !e.HourlyRate.IsPositive() {
		return fallback
	}
	return *e.HourlyRate
}

// InSameBranch reports whether both employees are assigned to the same branch, either
// by branch id or by case-insensitive branch name.
func (e Employee) InSameBranch(other Employee) bool {
	if e.BranchID != nil && other.BranchID != nil && *e.BranchID != "" && *e.BranchID == *other.BranchID {
		return true
	}
	if e.BranchName != nil && other.BranchName != nil {
		a, b := normalizeName(*e.BranchName), normalizeName(*other.BranchName)
		return a != "" && a == b
	}
	return false
}
