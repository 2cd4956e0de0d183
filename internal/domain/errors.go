package domain

import "errors"

// Domain error taxonomy. Repositories and services wrap these with context;
// callers match with errors.Is. Anything outside this set surfaces to the
// HTTP boundary as a generic internal error.
var (
	// ErrNotFound is returned when an account, device or token is absent
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned on duplicate email or duplicate device id
	ErrConflict = errors.New("already exists")

	// ErrUnauthorized is returned on bad credentials or a missing/invalid/expired session
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when a valid session lacks the required privilege
	ErrForbidden = errors.New("forbidden")

	// ErrExpired is returned when a token is past its validity window
	ErrExpired = errors.New("token expired")

	// ErrInvalid is returned on malformed or rejected input
	ErrInvalid = errors.New("invalid input")

	// ErrAlreadyVerified is returned when verification is requested for a verified account
	ErrAlreadyVerified = errors.New("account already verified")
)
