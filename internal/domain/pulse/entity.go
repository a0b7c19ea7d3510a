package pulse

import "time"

// Source tells device samples apart from rows the server synthesizes.
type Source string

const (
	SourceDevice   Source = "device"
	SourceCheckIn  Source = "check_in"
	SourceCheckOut Source = "check_out"
	SourceApproval Source = "approval"
	// SourceValidation marks pulses synthesized when a manager rules on a gap.
	SourceValidation Source = "validation"
)

// SynthesisInterval spaces the pulses written across a reviewed gap.
const SynthesisInterval = 5 * time.Minute

// Pulse is an immutable presence sample tied to an attendance session.
type Pulse struct {
	ID                 string
	EmployeeID         string
	AttendanceID       *string
	BranchID           *string
	Timestamp          time.Time
	Latitude           *float64
	Longitude          *float64
	DistanceFromCenter *float64
	InsideGeofence     bool
	WifiBSSID          *string
	Source             Source
	OnBreak            bool
	// ValidationRequestID links a synthesized pulse to the gap review that wrote it.
	ValidationRequestID *string
	CreatedAt           time.Time
}

type ValidationStatus string

const (
	ValidationPending  ValidationStatus = "pending"
	ValidationApproved ValidationStatus = "approved"
	ValidationRejected ValidationStatus = "rejected"
)

// SessionValidation asks a manager to rule on a stretch of a session with no
// trustworthy pulses, e.g. while the device was offline.
type SessionValidation struct {
	ID           string           `json:"id"`
	EmployeeID   string           `json:"employee_id"`
	AttendanceID *string          `json:"attendance_id"`
	BranchID     *string          `json:"branch_id"`
	GapStart     time.Time        `json:"gap_start"`
	GapEnd       time.Time        `json:"gap_end"`
	Reason       string           `json:"reason"`
	Status       ValidationStatus `json:"status"`
	ReviewedBy   *string          `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time       `json:"reviewed_at,omitempty"`
	ReviewNotes  *string          `json:"review_notes,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// SyntheticTimes lists the stamps filled in across the gap: every
// SynthesisInterval after GapStart, strictly before GapEnd.
func (v SessionValidation) SyntheticTimes() []time.Time {
	var out []time.Time
	for t := v.GapStart.Add(SynthesisInterval); t.Before(v.GapEnd); t = t.Add(SynthesisInterval) {
		out = append(out, t)
	}
	return out
}

// Violation records a sample taken outside the strict geofence radius.
type Violation struct {
	ID                 string    `json:"id"`
	EmployeeID         string    `json:"employee_id"`
	AttendanceID       *string   `json:"attendance_id"`
	BranchID           *string   `json:"branch_id"`
	OccurredAt         time.Time `json:"occurred_at"`
	Latitude           *float64  `json:"latitude"`
	Longitude          *float64  `json:"longitude"`
	DistanceFromCenter *float64  `json:"distance_from_center"`
	RadiusMeters       *float64  `json:"radius_meters"`
	WifiBSSID          *string   `json:"wifi_bssid,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}
