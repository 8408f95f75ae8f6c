package notifications

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const EventTypeBookingConfirmed = "BOOKING_CONFIRMED"

// BookingConfirmed is emitted once per successful multi-seat booking,
// after the rows are committed.
type BookingConfirmed struct {
	EventID     uuid.UUID `json:"event_id"`
	Type        string    `json:"type"`
	ScheduleID  int64     `json:"schedule_id"`
	UserID      int64     `json:"user_id"`
	BookingIDs  []int64   `json:"booking_ids"`
	SeatNumbers []string  `json:"seat_numbers"`
	BookedAt    time.Time `json:"booked_at"`
}

func NewBookingConfirmed(scheduleID, userID int64, bookingIDs []int64, seats []string, bookedAt time.Time) BookingConfirmed {
	return BookingConfirmed{
		EventID:     uuid.New(),
		Type:        EventTypeBookingConfirmed,
		ScheduleID:  scheduleID,
		UserID:      userID,
		BookingIDs:  bookingIDs,
		SeatNumbers: seats,
		BookedAt:    bookedAt.UTC(),
	}
}

func (e BookingConfirmed) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers booking events to a broker. Callers treat delivery as
// best-effort.
type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, event BookingConfirmed) error
	Close() error
}

// NoopPublisher drops every event. Used when NOTIFICATIONS_BROKER=none.
type NoopPublisher struct{}

func (NoopPublisher) PublishBookingConfirmed(context.Context, BookingConfirmed) error { return nil }

func (NoopPublisher) Close() error { return nil }
