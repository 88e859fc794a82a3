package domain

import "errors"

var (
	ErrInvalidUserType   = errors.New("invalid user type")
	ErrInvalidProfile    = errors.New("invalid profile data")
	ErrInvalidTransition = errors.New("invalid batch status transition")
)
