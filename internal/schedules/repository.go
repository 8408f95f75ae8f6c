package schedules

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	// Plane operations
	CreatePlane(ctx context.Context, plane *Plane) error
	GetPlaneByID(ctx context.Context, id int64) (*Plane, error)

	// Flight operations
	CreateFlight(ctx context.Context, flight *Flight) error
	GetFlightByID(ctx context.Context, id int64) (*Flight, error)
	GetAllFlights(ctx context.Context) ([]Flight, error)
	UpdateFlightPlane(ctx context.Context, flightID, planeID int64) error

	// Schedule operations
	CreateSchedule(ctx context.Context, schedule *Schedule) error
	GetScheduleByID(ctx context.Context, id int64) (*Schedule, error)
	ScheduleExists(ctx context.Context, id int64) (bool, error)
	SearchSchedules(ctx context.Context, origin, destination string, from, to time.Time) ([]Schedule, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreatePlane(ctx context.Context, plane *Plane) error {
	return r.db.WithContext(ctx).Create(plane).Error
}

func (r *repository) GetPlaneByID(ctx context.Context, id int64) (*Plane, error) {
	var plane Plane
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&plane).Error
	if err != nil {
		return nil, err
	}
	return &plane, nil
}

func (r *repository) CreateFlight(ctx context.Context, flight *Flight) error {
	return r.db.WithContext(ctx).Omit("Plane").Create(flight).Error
}

func (r *repository) GetFlightByID(ctx context.Context, id int64) (*Flight, error) {
	var flight Flight
	err := r.db.WithContext(ctx).Preload("Plane").Where("id = ?", id).First(&flight).Error
	if err != nil {
		return nil, err
	}
	return &flight, nil
}

func (r *repository) GetAllFlights(ctx context.Context) ([]Flight, error) {
	var flights []Flight
	err := r.db.WithContext(ctx).
		Preload("Plane").
		Order("flight_number ASC").
		Find(&flights).Error
	return flights, err
}

func (r *repository) UpdateFlightPlane(ctx context.Context, flightID, planeID int64) error {
	result := r.db.WithContext(ctx).
		Model(&Flight{}).
		Where("id = ?", flightID).
		Update("plane_id", planeID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CreateSchedule(ctx context.Context, schedule *Schedule) error {
	return r.db.WithContext(ctx).Omit("Flight").Create(schedule).Error
}

// GetScheduleByID loads the schedule with its flight and the flight's plane
func (r *repository) GetScheduleByID(ctx context.Context, id int64) (*Schedule, error) {
	var schedule Schedule
	err := r.db.WithContext(ctx).
		Preload("Flight.Plane").
		Where("id = ?", id).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *repository) ScheduleExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Schedule{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SearchSchedules returns SCHEDULED departures on the route within [from, to)
func (r *repository) SearchSchedules(ctx context.Context, origin, destination string, from, to time.Time) ([]Schedule, error) {
	var schedules []Schedule
	err := r.db.WithContext(ctx).
		Preload("Flight.Plane").
		Joins("JOIN flights ON flights.id = schedules.flight_id").
		Where("flights.departure_airport = ? AND flights.arrival_airport = ?", origin, destination).
		Where("schedules.departure_time >= ? AND schedules.departure_time < ?", from, to).
		Where("schedules.status = ?", ScheduleStatusScheduled).
		Order("schedules.departure_time ASC").
		Find(&schedules).Error
	return schedules, err
}
