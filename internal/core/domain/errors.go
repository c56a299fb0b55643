package domain

import "errors"

var (
	// ErrUnauthenticated means no valid caller identity is established.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden means the caller is known but lacks the required role.
	ErrForbidden = errors.New("access forbidden")
	// ErrValidation wraps input that fails business validation.
	ErrValidation = errors.New("validation failed")
)
