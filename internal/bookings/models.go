package bookings

import (
	"time"
)

// Booking is one confirmed seat on one schedule. A multi-seat request
// produces one row per seat, all written in the same transaction.
type Booking struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ScheduleID  int64     `gorm:"not null;index:idx_bookings_schedule_seat,priority:1" json:"schedule_id"`
	UserID      int64     `gorm:"not null;index" json:"user_id"`
	SeatNumber  string    `gorm:"type:varchar(5);not null;index:idx_bookings_schedule_seat,priority:2" json:"seat_number"`
	Status      Status    `gorm:"type:varchar(20);not null;check:status IN ('CONFIRMED', 'CANCELLED');default:'CONFIRMED'" json:"status"`
	BookingTime time.Time `gorm:"not null" json:"booking_time"`
	Version     int       `gorm:"not null;default:0" json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// BookingListQuery holds the pagination parameters for listing bookings
type BookingListQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status string `form:"status" binding:"omitempty,oneof=CONFIRMED CANCELLED"`
}

// PaginatedBookings is a page of bookings with totals
type PaginatedBookings struct {
	Bookings   []BookingResponse `json:"bookings"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}
