package bookings

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrBookingNotFound = errors.New("booking not found")

// ErrorKind classifies why Book failed.
type ErrorKind string

const (
	KindScheduleNotFound   ErrorKind = "SCHEDULE_NOT_FOUND"
	KindSeatConflict       ErrorKind = "SEAT_CONFLICT"
	KindLockingUnavailable ErrorKind = "LOCKING_UNAVAILABLE"
	KindPersistenceFailed  ErrorKind = "PERSISTENCE_FAILED"
	KindInvalidRequest     ErrorKind = "INVALID_REQUEST"
)

// HTTPStatus maps a kind to the status code the API answers with
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindScheduleNotFound:
		return http.StatusNotFound
	case KindSeatConflict:
		return http.StatusConflict
	case KindLockingUnavailable:
		return http.StatusServiceUnavailable
	case KindInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether the caller may retry the same request later
func (k ErrorKind) Retryable() bool {
	return k == KindSeatConflict || k == KindLockingUnavailable
}

// BookingError is the only error type Book returns. Locks acquired by the
// failed call have already been released (or left to expire) by the time
// the caller sees it.
type BookingError struct {
	Kind       ErrorKind
	ScheduleID int64
	SeatNumber string
	Err        error
}

func (e *BookingError) Error() string {
	msg := fmt.Sprintf("%s: schedule %d", e.Kind, e.ScheduleID)
	if e.SeatNumber != "" {
		msg += " seat " + e.SeatNumber
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first BookingError in err's chain, or ""
func KindOf(err error) ErrorKind {
	var bookingErr *BookingError
	if errors.As(err, &bookingErr) {
		return bookingErr.Kind
	}
	return ""
}

// Message is the human-readable summary used in API responses
func (k ErrorKind) Message() string {
	switch k {
	case KindScheduleNotFound:
		return "Schedule not found"
	case KindSeatConflict:
		return "One or more seats are already taken"
	case KindLockingUnavailable:
		return "Seat locking is temporarily unavailable"
	case KindInvalidRequest:
		return "Invalid booking request"
	default:
		return "Failed to persist booking"
	}
}
