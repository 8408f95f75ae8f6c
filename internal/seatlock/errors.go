package seatlock

import "errors"

var (
	// ErrConflict means the lock record already exists.
	ErrConflict = errors.New("seat lock already held")

	// ErrUnavailable covers every other store failure, including timeouts.
	// The lock may or may not have been written.
	ErrUnavailable = errors.New("seat lock store unavailable")
)
