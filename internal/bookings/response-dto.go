package bookings

import "time"

type BookingResponse struct {
	ID          int64     `json:"id"`
	ScheduleID  int64     `json:"schedule_id"`
	UserID      int64     `json:"user_id"`
	SeatNumber  string    `json:"seat_number"`
	Status      string    `json:"status"`
	BookingTime time.Time `json:"booking_time"`
}

type CreateBookingResponse struct {
	ScheduleID int64             `json:"schedule_id"`
	UserID     int64             `json:"user_id"`
	SeatCount  int               `json:"seat_count"`
	Bookings   []BookingResponse `json:"bookings"`
}

type ReservedSeatsResponse struct {
	ScheduleID  int64    `json:"schedule_id"`
	SeatNumbers []string `json:"seat_numbers"`
	Count       int      `json:"count"`
}

func (b *Booking) ToResponse() BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		ScheduleID:  b.ScheduleID,
		UserID:      b.UserID,
		SeatNumber:  b.SeatNumber,
		Status:      b.Status.String(),
		BookingTime: b.BookingTime,
	}
}

func toResponses(bookings []Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, bookings[i].ToResponse())
	}
	return out
}
