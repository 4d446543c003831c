package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure surfaced by the core wraps exactly one of these
// so the transport layer can map it with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStorage           = errors.New("storage unavailable")
)

// Token verification failures. Both collapse to ErrUnauthenticated for
// callers but stay distinguishable for logging and tests.
var (
	ErrTokenMalformed = fmt.Errorf("%w: malformed token", ErrUnauthenticated)
	ErrTokenExpired   = fmt.Errorf("%w: token expired", ErrUnauthenticated)
)

var (
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrComplaintNotFound    = fmt.Errorf("complaint %w", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("notification %w", ErrNotFound)

	ErrEmailTaken         = fmt.Errorf("%w: email already registered", ErrValidation)
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError builds an ErrValidation-wrapped error with a client-facing reason.
func ValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// StorageError wraps a backing-store failure so it maps to ErrStorage while
// keeping the driver error in the chain for logs.
func StorageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
