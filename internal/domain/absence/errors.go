package absence

import "errors"

var (
	ErrAbsenceNotFound = errors.New("absence not found")
	ErrAbsenceExists   = errors.New("absence already recorded for this date")
)
