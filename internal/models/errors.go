package models

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInsufficientPoints = errors.New("not enough points")
	ErrLockHeld           = errors.New("expiry job lock already held")
)

// ValidationError covers malformed input: bad pattern config, payment
// mismatch, redeeming more than the balance. Surfaced verbatim, never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ConsistencyError aborts the enclosing transaction; the caller retries
// the whole sale or refund.
type ConsistencyError struct {
	Reason string
}

func (e *ConsistencyError) Error() string {
	return e.Reason
}
