package approval

import "errors"

var (
	ErrForbidden               = errors.New("you are not allowed to review this request")
	ErrRequestNotFound         = errors.New("request not found")
	ErrRequestAlreadyProcessed = errors.New("request has already been processed")
	ErrInvalidAction           = errors.New("action is not valid for this request type")
)
