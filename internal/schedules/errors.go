package schedules

import "errors"

var (
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrFlightNotFound   = errors.New("flight not found")
	ErrPlaneNotFound    = errors.New("plane not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrInvalidInput     = errors.New("invalid input")
)
