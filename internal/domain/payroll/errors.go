package payroll

import "errors"

var (
	ErrAdvanceNotFound     = errors.New("advance not found")
	ErrAdvanceNotEligible  = errors.New("employee is not eligible for an advance")
	ErrAdvanceExceedsLimit = errors.New("requested amount exceeds the available advance")
	ErrInvalidPeriod       = errors.New("invalid payroll period")
)
