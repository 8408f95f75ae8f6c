package bookings

// CreateBookingRequest books every listed seat or none of them. Seats are
// locked in the order given.
type CreateBookingRequest struct {
	ScheduleID  int64    `json:"schedule_id" binding:"required,min=1"`
	UserID      int64    `json:"user_id" binding:"required,min=1"`
	SeatNumbers []string `json:"seat_numbers" binding:"required,unique,dive,required,max=5,seatnumber"`
}
