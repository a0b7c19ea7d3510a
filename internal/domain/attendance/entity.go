package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

type Attendance struct {
	ID                 string
	EmployeeID         string
	BranchID           *string
	CheckInTime        time.Time
	CheckOutTime       *time.Time
	Date               string // business-local YYYY-MM-DD of the check-in
	Status             Status
	WorkHours          *float64
	IsWithinGeofence   *bool
	CheckInLatitude    *float64
	CheckInLongitude   *float64
	CheckOutLatitude   *float64
	CheckOutLongitude  *float64
	CheckInWifiBSSID   *string
	CheckOutWifiBSSID  *string
	Notes              *string
	ModifiedBy         *string
	ModificationReason *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (a Attendance) IsActive() bool {
	return a.Status == StatusActive
}

// HoursBetween returns max(0, out-in) in hours rounded to two places.
func HoursBetween(in, out time.Time) float64 {
	h := out.Sub(in).Hours()
	if h < 0 {
		return 0
	}
	return RoundHours(h)
}

func RoundHours(h float64) float64 {
	return decimal.NewFromFloat(h).Round(2).InexactFloat64()
}

// DailySummary is the per-day roll-up read by dashboards and the payroll engine.
type DailySummary struct {
	EmployeeID      string
	AttendanceDate  string
	CheckInTime     *string // HH:MM:SS business-local
	CheckOutTime    *string
	TotalHours      float64
	HourlyRate      decimal.Decimal
	DailySalary     decimal.Decimal
	DeductionAmount decimal.Decimal
	IsAbsent        bool
	IsOnLeave       bool
}

type CorrectionType string

const (
	CorrectionCheckIn  CorrectionType = "check_in"
	CorrectionCheckOut CorrectionType = "check_out"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// CorrectionRequest asks a reviewer to fix a missed check-in or check-out.
type CorrectionRequest struct {
	ID            string         `json:"id"`
	EmployeeID    string         `json:"employee_id"`
	RequestType   CorrectionType `json:"request_type"`
	RequestedTime time.Time      `json:"requested_time"`
	Reason        string         `json:"reason"`
	Status        RequestStatus  `json:"status"`
	ReviewedBy    *string        `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time     `json:"reviewed_at,omitempty"`
	ReviewNotes   *string        `json:"review_notes,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}
