package leave

import "errors"

var (
	ErrLeaveRequestNotFound = errors.New("leave request not found")
	ErrLeaveTooLong         = errors.New("leave request exceeds the maximum length")
)
