package domain

import "errors"

// Error kinds surfaced by the core. Call sites wrap them with context;
// callers classify with errors.Is.
var (
	// ErrValidation marks malformed or missing input. Never retried.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoAvailability marks a group without an AVAILABLE unit.
	ErrNoAvailability = errors.New("no available units")
	// ErrInvalidTransition marks an illegal unit status change.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInvalidState marks an operation invalid for the entity's lifecycle state.
	ErrInvalidState = errors.New("invalid state")
	// ErrStorage marks a backing store failure. Callers may retry.
	ErrStorage = errors.New("storage error")
)
