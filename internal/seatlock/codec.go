package seatlock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Separator joins schedule id and seat number in a lock key.
const Separator = ":"

// MaxSeatNumberLength matches the bookings.seat_number column, in characters.
const MaxSeatNumberLength = 5

var (
	ErrInvalidSeatNumber = errors.New("invalid seat number")
	ErrInvalidKey        = errors.New("invalid seat lock key")
)

// ValidateSeatNumber rejects seat numbers that cannot round-trip through a
// lock key.
func ValidateSeatNumber(seatNumber string) error {
	switch {
	case seatNumber == "":
		return fmt.Errorf("%w: empty", ErrInvalidSeatNumber)
	case strings.Contains(seatNumber, Separator):
		return fmt.Errorf("%w: %q contains %q", ErrInvalidSeatNumber, seatNumber, Separator)
	case utf8.RuneCountInString(seatNumber) > MaxSeatNumberLength:
		return fmt.Errorf("%w: %q longer than %d characters", ErrInvalidSeatNumber, seatNumber, MaxSeatNumberLength)
	}
	return nil
}

// Encode builds the "<scheduleId>:<seatNumber>" lock key.
func Encode(scheduleID int64, seatNumber string) (string, error) {
	if err := ValidateSeatNumber(seatNumber); err != nil {
		return "", err
	}
	return strconv.FormatInt(scheduleID, 10) + Separator + seatNumber, nil
}

// Decode is the inverse of Encode.
func Decode(key string) (int64, string, error) {
	rawID, seatNumber, found := strings.Cut(key, Separator)
	if !found {
		return 0, "", fmt.Errorf("%w: %q has no separator", ErrInvalidKey, key)
	}

	scheduleID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %q has a non-numeric schedule id", ErrInvalidKey, key)
	}

	if err := ValidateSeatNumber(seatNumber); err != nil {
		return 0, "", fmt.Errorf("%w: %q: %w", ErrInvalidKey, key, err)
	}

	return scheduleID, seatNumber, nil
}

// schedulePrefix is the key prefix shared by every lock of one schedule.
func schedulePrefix(scheduleID int64) string {
	return strconv.FormatInt(scheduleID, 10) + Separator
}
