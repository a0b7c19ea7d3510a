package attendance

import (
	"errors"
	"fmt"
)

// Attendance domain errors
var (
	// Check-in errors
	ErrAlreadyActive      = errors.New("an active attendance session already exists")
	ErrOutsideAllowedArea = errors.New("you are outside the allowed area")

	// Check-out errors
	ErrNoActiveCheckIn = errors.New("no active check-in found")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrNotOwner           = errors.New("attendance record belongs to another employee")

	// Corrections
	ErrCorrectionNotFound    = errors.New("attendance request not found")
	ErrCorrectionTimeInvalid = errors.New("requested check-in time must be before the existing check-in")
	ErrCorrectionConflict    = errors.New("requested time overlaps an existing attendance record")
	ErrInvalidCorrectionType = errors.New("request type must be check_in or check_out")
)

// OutsideAreaError carries the measured distance of a rejected check-in.
type OutsideAreaError struct {
	Distance      *float64
	AllowedRadius *float64
}

func (e *OutsideAreaError) Error() string {
	if e.Distance != nil && e.AllowedRadius != nil {
		return fmt.Sprintf("%s: %.0fm from branch, allowed %.0fm", ErrOutsideAllowedArea.Error(), *e.Distance, *e.AllowedRadius)
	}
	return ErrOutsideAllowedArea.Error()
}

func (e *OutsideAreaError) Unwrap() error {
	return ErrOutsideAllowedArea
}
