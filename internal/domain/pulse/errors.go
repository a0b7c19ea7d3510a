package pulse

import "errors"

var (
	ErrEmptyBatch       = errors.New("no pulses submitted")
	ErrBatchTooLarge    = errors.New("too many pulses in one batch")
	ErrNoActiveSession  = errors.New("no active attendance session for pulse")
	ErrInvalidTimestamp = errors.New("invalid pulse timestamp")

	ErrSessionValidationNotFound = errors.New("session validation request not found")
	ErrInvalidGap                = errors.New("gap must end after it starts and not in the future")
)
