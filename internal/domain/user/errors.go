package user

import "errors"

var (
	ErrInvalidRole   = errors.New("invalid role")
	ErrMissingClaims = errors.New("access token is missing required claims")
)
