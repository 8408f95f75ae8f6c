package bookings

import (
	"context"
	"math"

	"gorm.io/gorm"
)

type Repository interface {
	// SaveAll inserts every booking in one transaction and returns them with ids
	SaveAll(ctx context.Context, bookings []Booking) ([]Booking, error)
	FindByID(ctx context.Context, id int64) (*Booking, error)

	// Seat occupancy
	FindConfirmedSeats(ctx context.Context, scheduleID int64, seatNumbers []string) ([]string, error)
	ConfirmedSeatsBySchedule(ctx context.Context, scheduleID int64) ([]string, error)

	// User booking operations
	GetUserBookings(ctx context.Context, userID int64, query BookingListQuery) ([]Booking, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SaveAll(ctx context.Context, bookings []Booking) ([]Booking, error) {
	if len(bookings) == 0 {
		return bookings, nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Single multi-row INSERT
		return tx.Create(&bookings).Error
	})
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) FindConfirmedSeats(ctx context.Context, scheduleID int64, seatNumbers []string) ([]string, error) {
	var seats []string
	err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("schedule_id = ?", scheduleID).
		Where("seat_number IN ?", seatNumbers).
		Where("status = ?", StatusConfirmed).
		Pluck("seat_number", &seats).Error

	return seats, err
}

func (r *repository) ConfirmedSeatsBySchedule(ctx context.Context, scheduleID int64) ([]string, error) {
	var seats []string
	err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("schedule_id = ?", scheduleID).
		Where("status = ?", StatusConfirmed).
		Order("seat_number").
		Pluck("seat_number", &seats).Error

	return seats, err
}

func (r *repository) GetUserBookings(ctx context.Context, userID int64, query BookingListQuery) ([]Booking, int64, error) {
	var bookings []Booking
	var totalCount int64

	// Set defaults
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	baseQuery := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("user_id = ?", userID)

	if query.Status != "" {
		baseQuery = baseQuery.Where("status = ?", query.Status)
	}

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Order("booking_time DESC").
		Order("id").
		Offset(offset).
		Limit(query.Limit).
		Find(&bookings).Error

	return bookings, totalCount, err
}

// Helper function to calculate total pages
func CalculateTotalPages(totalCount int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalCount) / float64(limit)))
}
