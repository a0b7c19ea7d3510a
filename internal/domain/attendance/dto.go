package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/validator"
)

// ========================================
// CHECK-IN / CHECK-OUT DTOs
// ========================================

type CheckInRequest struct {
	EmployeeID string   `json:"-"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	WifiBSSID  *string  `json:"wifi_bssid,omitempty"`
	Timestamp  *string  `json:"timestamp,omitempty"`
}

func (r *CheckInRequest) Validate() error {
	errs := validateEmployee(r.EmployeeID)
	errs = append(errs, validateCoordinates(r.Latitude, r.Longitude)...)
	errs = append(errs, validateTimestamp(r.Timestamp)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CheckOutRequest struct {
	EmployeeID   string   `json:"-"`
	AttendanceID *string  `json:"attendance_id,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	WifiBSSID    *string  `json:"wifi_bssid,omitempty"`
	Timestamp    *string  `json:"timestamp,omitempty"`
}

func (r *CheckOutRequest) Validate() error {
	errs := validateEmployee(r.EmployeeID)
	errs = append(errs, validateCoordinates(r.Latitude, r.Longitude)...)
	errs = append(errs, validateTimestamp(r.Timestamp)...)

	if r.AttendanceID != nil && !validator.IsValidUUID(*r.AttendanceID) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_id",
			Message: "attendance_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateEmployee(id string) validator.ValidationErrors {
	if validator.IsEmpty(id) {
		return validator.ValidationErrors{{Field: "employee_id", Message: "employee_id is required"}}
	}
	return nil
}

// validateCoordinates accepts both coordinates or neither.
func validateCoordinates(lat, lon *float64) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if (lat == nil) != (lon == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude and longitude must be provided together",
		})
		return errs
	}
	if lat != nil && !validator.IsValidLatitude(*lat) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}
	if lon != nil && !validator.IsValidLongitude(*lon) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}
	return errs
}

func validateTimestamp(ts *string) validator.ValidationErrors {
	if ts == nil || validator.IsEmpty(*ts) {
		return nil
	}
	if _, ok := validator.IsValidDateTime(*ts); !ok {
		return validator.ValidationErrors{{Field: "timestamp", Message: "timestamp must be RFC3339"}}
	}
	return nil
}

// Validation reports the outcome of the location and Wi-Fi checks. Distance is in
// whole meters and absent when it could not be computed.
type Validation struct {
	Wifi     bool     `json:"wifi"`
	Location bool     `json:"location"`
	Distance *float64 `json:"distance"`
}

type CheckInResponse struct {
	Attendance  AttendanceResponse `json:"attendance"`
	Validation  Validation         `json:"validation"`
	Reactivated bool               `json:"reactivated"`
}

type CheckOutResponse struct {
	Attendance        AttendanceResponse `json:"attendance"`
	Validation        Validation         `json:"validation"`
	AlreadyCheckedOut bool               `json:"already_checked_out"`
}

type AttendanceResponse struct {
	ID               string     `json:"id"`
	EmployeeID       string     `json:"employee_id"`
	BranchID         *string    `json:"branch_id"`
	Date             string     `json:"date"`
	Status           Status     `json:"status"`
	CheckInTime      time.Time  `json:"check_in_time"`
	CheckOutTime     *time.Time `json:"check_out_time"`
	WorkHours        *float64   `json:"work_hours"`
	IsWithinGeofence *bool      `json:"is_within_geofence"`
	Notes            *string    `json:"notes,omitempty"`
	ModifiedBy       *string    `json:"modified_by,omitempty"`
}

func ToResponse(a Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:               a.ID,
		EmployeeID:       a.EmployeeID,
		BranchID:         a.BranchID,
		Date:             a.Date,
		Status:           a.Status,
		CheckInTime:      a.CheckInTime,
		CheckOutTime:     a.CheckOutTime,
		WorkHours:        a.WorkHours,
		IsWithinGeofence: a.IsWithinGeofence,
		Notes:            a.Notes,
		ModifiedBy:       a.ModifiedBy,
	}
}

// ========================================
// LISTING
// ========================================

type MyAttendanceFilter struct {
	EmployeeID string  `json:"-"`
	StartDate  *string `json:"start_date,omitempty"`
	EndDate    *string `json:"end_date,omitempty"`
	Status     *string `json:"status,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
}

func (f *MyAttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.StartDate != nil {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be YYYY-MM-DD"})
		}
	}
	if f.EndDate != nil {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be YYYY-MM-DD"})
		}
	}
	if f.Status != nil && !validator.IsInSlice(*f.Status, []string{string(StatusActive), string(StatusCompleted)}) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be active or completed"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListAttendanceResponse struct {
	Attendances []AttendanceResponse `json:"attendances"`
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
}

// ========================================
// CORRECTIONS
// ========================================

type CorrectionSubmitRequest struct {
	EmployeeID    string `json:"-"`
	RequestType   string `json:"request_type"`
	RequestedTime string `json:"requested_time"`
	Reason        string `json:"reason"`
}

func (r *CorrectionSubmitRequest) Validate() error {
	errs := validateEmployee(r.EmployeeID)

	r.RequestType = strings.ToLower(strings.TrimSpace(r.RequestType))
	if !validator.IsInSlice(r.RequestType, []string{string(CorrectionCheckIn), string(CorrectionCheckOut)}) {
		errs = append(errs, validator.ValidationError{Field: "request_type", Message: ErrInvalidCorrectionType.Error()})
	}
	if _, ok := validator.IsValidDateTime(r.RequestedTime); !ok {
		errs = append(errs, validator.ValidationError{Field: "requested_time", Message: "requested_time must be RFC3339"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
