package breaks

import "errors"

var (
	ErrBreakNotFound    = errors.New("break not found")
	ErrBreakNotApproved = errors.New("break must be approved before it can start")
	ErrBreakNotActive   = errors.New("break has not started")
	ErrBreakInvalid     = errors.New("break cannot change from its current status")
)
