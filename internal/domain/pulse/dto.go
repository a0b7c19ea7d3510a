package pulse

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/validator"
)

// MaxBatchSize bounds one ingestion call.
const MaxBatchSize = 500

// PulseInput is one device sample. EmployeeID is filled from the token.
type PulseInput struct {
	EmployeeID         string   `json:"-"`
	AttendanceID       *string  `json:"attendance_id,omitempty"`
	BranchID           *string  `json:"branch_id,omitempty"`
	Latitude           *float64 `json:"latitude,omitempty"`
	Longitude          *float64 `json:"longitude,omitempty"`
	WifiBSSID          *string  `json:"wifi_bssid,omitempty"`
	DistanceFromCenter *float64 `json:"distance_from_center,omitempty"`
	Timestamp          *string  `json:"timestamp,omitempty"`
}

func (p *PulseInput) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(p.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if (p.Latitude == nil) != (p.Longitude == nil) {
		errs = append(errs, validator.ValidationError{Field: "latitude", Message: "latitude and longitude must be provided together"})
	} else if p.Latitude != nil && (!validator.IsValidLatitude(*p.Latitude) || !validator.IsValidLongitude(*p.Longitude)) {
		errs = append(errs, validator.ValidationError{Field: "latitude", Message: "coordinates out of range"})
	}
	if p.DistanceFromCenter != nil && *p.DistanceFromCenter < 0 {
		errs = append(errs, validator.ValidationError{Field: "distance_from_center", Message: "distance_from_center must not be negative"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DecodeBatch accepts a single pulse object, a JSON array, or {"pulses": [...]}.
func DecodeBatch(raw []byte) ([]PulseInput, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, ErrEmptyBatch
	}

	var pulses []PulseInput
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &pulses); err != nil {
			return nil, fmt.Errorf("invalid pulse array: %w", err)
		}
	case '{':
		var wrapper struct {
			Pulses *[]PulseInput `json:"pulses"`
		}
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, fmt.Errorf("invalid pulse payload: %w", err)
		}
		if wrapper.Pulses != nil {
			pulses = *wrapper.Pulses
			break
		}
		var single PulseInput
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, fmt.Errorf("invalid pulse payload: %w", err)
		}
		pulses = []PulseInput{single}
	default:
		return nil, fmt.Errorf("invalid pulse payload: expected object or array")
	}

	if len(pulses) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(pulses) > MaxBatchSize {
		return nil, ErrBatchTooLarge
	}
	return pulses, nil
}

type IngestError struct {
	Index      int    `json:"index"`
	EmployeeID string `json:"employee_id,omitempty"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

type IngestResult struct {
	Success       bool          `json:"success"`
	Inserted      int           `json:"inserted"`
	Failed        int           `json:"failed"`
	Errors        []IngestError `json:"errors"`
	AutoCheckouts []string      `json:"auto_checkouts"`
}

// ViolationReport is a client-detected geofence exit.
type ViolationReport struct {
	EmployeeID         string   `json:"-"`
	AttendanceID       *string  `json:"attendance_id,omitempty"`
	BranchID           *string  `json:"branch_id,omitempty"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	DistanceFromCenter *float64 `json:"distance_from_center,omitempty"`
	WifiBSSID          *string  `json:"wifi_bssid,omitempty"`
	Timestamp          *string  `json:"timestamp,omitempty"`
}

func (r *ViolationReport) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if r.Latitude == nil || r.Longitude == nil {
		errs = append(errs, validator.ValidationError{Field: "latitude", Message: "latitude and longitude are required"})
	} else if !validator.IsValidLatitude(*r.Latitude) || !validator.IsValidLongitude(*r.Longitude) {
		errs = append(errs, validator.ValidationError{Field: "latitude", Message: "coordinates out of range"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SessionValidationSubmitRequest struct {
	EmployeeID   string  `json:"-"`
	AttendanceID *string `json:"attendance_id,omitempty"`
	GapStart     string  `json:"gap_start"`
	GapEnd       string  `json:"gap_end"`
	Reason       string  `json:"reason"`
}

func (r *SessionValidationSubmitRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if r.AttendanceID != nil && !validator.IsValidUUID(*r.AttendanceID) {
		errs = append(errs, validator.ValidationError{Field: "attendance_id", Message: "attendance_id must be a UUID"})
	}
	start, okStart := validator.IsValidDateTime(r.GapStart)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "gap_start", Message: "gap_start must be RFC3339"})
	}
	end, okEnd := validator.IsValidDateTime(r.GapEnd)
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "gap_end", Message: "gap_end must be RFC3339"})
	}
	if okStart && okEnd && !end.After(start) {
		errs = append(errs, validator.ValidationError{Field: "gap_end", Message: "gap_end must be after gap_start"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
