package attendance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ReactivateParams reopens a completed record for a new same-day session.
type ReactivateParams struct {
	ID               string
	CheckInTime      time.Time
	BranchID         *string
	IsWithinGeofence bool
	Latitude         *float64
	Longitude        *float64
	WifiBSSID        *string
}

// CompleteParams closes an active record.
type CompleteParams struct {
	ID                 string
	CheckOutTime       time.Time
	WorkHours          float64
	Latitude           *float64
	Longitude          *float64
	WifiBSSID          *string
	Notes              *string
	ModifiedBy         *string
	ModificationReason *string
}

type AttendanceRepository interface {
	// Create inserts a record. Inserting a second active record for an employee
	// returns ErrAlreadyActive.
	Create(ctx context.Context, a Attendance) (Attendance, error)

	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetByEmployeeAndDate returns the latest record of the business date, nil if none.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (*Attendance, error)

	// GetActive returns the latest active record, nil if none.
	GetActive(ctx context.Context, employeeID string) (*Attendance, error)

	// GetLatest returns the record with the latest check-in, nil if none.
	GetLatest(ctx context.Context, employeeID string) (*Attendance, error)

	// Reactivate flips a completed record back to active. It returns ErrAlreadyActive
	// when the record is no longer completed or another active record exists.
	Reactivate(ctx context.Context, params ReactivateParams) (Attendance, error)

	// Complete closes the record only while it is still active. ok is false when the
	// record was already closed.
	Complete(ctx context.Context, params CompleteParams) (a Attendance, ok bool, err error)

	// AutoCheckout closes the record at checkOut only while check_out_time is null,
	// computing work hours in the same statement.
	AutoCheckout(ctx context.Context, id string, checkOut time.Time, reason string) (a Attendance, ok bool, err error)

	// MoveCheckIn moves the check-in back to at, recomputing work hours of a closed
	// record. ok is false when at is not before the current check-in.
	MoveCheckIn(ctx context.Context, id string, at time.Time) (a Attendance, ok bool, err error)

	// ExistsBetween reports whether the employee has a record with a check-in strictly
	// between from and to, other than excludeID.
	ExistsBetween(ctx context.Context, employeeID string, from, to time.Time, excludeID string) (bool, error)

	// SumWorkHours sums completed work hours for the business date.
	SumWorkHours(ctx context.Context, employeeID string, date string) (float64, error)

	ListByEmployee(ctx context.Context, employeeID string, filter MyAttendanceFilter) ([]Attendance, int64, error)
}

type SummaryRepository interface {
	RecordCheckIn(ctx context.Context, employeeID, date, clock string, rate decimal.Decimal) error
	RecordCheckOut(ctx context.Context, employeeID, date, clock string, hours float64, salary decimal.Decimal) error
	MarkAbsent(ctx context.Context, employeeID, date string, deduction decimal.Decimal) error
	MarkOnLeave(ctx context.Context, employeeID, date string) error
	Get(ctx context.Context, employeeID, date string) (*DailySummary, error)
}

type CorrectionRepository interface {
	Create(ctx context.Context, req CorrectionRequest) (CorrectionRequest, error)

	// GetByID locks the row when called inside a transaction.
	GetByID(ctx context.Context, id string) (CorrectionRequest, error)

	// Resolve moves a pending request to status. ok is false when it was not pending.
	Resolve(ctx context.Context, id string, status RequestStatus, reviewerID string, notes *string, at time.Time) (bool, error)
}
