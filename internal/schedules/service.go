package schedules

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"flightbook/internal/shared/constants"
	"flightbook/pkg/cache"
	"flightbook/pkg/logger"

	"gorm.io/gorm"
)

type Service interface {
	// Service dependency injection
	SetCacheService(cacheService cache.Service)
	SetSeatOccupancy(occupancy SeatOccupancy)

	// ScheduleExists reports whether a schedule with id exists
	ScheduleExists(ctx context.Context, id int64) (bool, error)

	// Public catalog
	GetSchedule(ctx context.Context, id int64) (*ScheduleResponse, error)
	GetSeatMap(ctx context.Context, id int64) (*SeatMapResponse, error)
	SearchSchedules(ctx context.Context, req SearchSchedulesRequest) ([]ScheduleResponse, error)
	GetRoutes(ctx context.Context) ([]FlightResponse, error)
	GetPlane(ctx context.Context, id int64) (*PlaneResponse, error)

	// Admin management
	CreatePlane(ctx context.Context, req CreatePlaneRequest) (*PlaneResponse, error)
	CreateFlight(ctx context.Context, req CreateFlightRequest) (*FlightResponse, error)
	CreateSchedule(ctx context.Context, req CreateScheduleRequest) (*ScheduleResponse, error)
	ReassignPlane(ctx context.Context, flightID, planeID int64) (*FlightResponse, error)
}

// SeatOccupancy is the booking-side view of a schedule's seats
// (to avoid circular dependency)
type SeatOccupancy interface {
	ConfirmedSeats(ctx context.Context, scheduleID int64) ([]string, error)
	ReservedSeats(ctx context.Context, scheduleID int64) []string
}

type service struct {
	repo         Repository
	cacheService cache.Service
	occupancy    SeatOccupancy
	logger       *logger.Logger
	now          func() time.Time
}

func NewService(repo Repository, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		repo:   repo,
		logger: log.WithComponent("schedules"),
		now:    time.Now,
	}
}

// SetCacheService injects the cache service dependency
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) SetSeatOccupancy(occupancy SeatOccupancy) {
	s.occupancy = occupancy
}

// Cache helper methods
func (s *service) setCache(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Set(ctx, key, value, ttl); err != nil {
		s.logger.WarnContext(ctx, "Failed to populate cache", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func (s *service) getCache(ctx context.Context, key string, dest interface{}) error {
	if s.cacheService == nil {
		return cache.ErrCacheMiss
	}
	return s.cacheService.Get(ctx, key, dest)
}

func (s *service) invalidate(ctx context.Context, patterns ...string) {
	if s.cacheService == nil {
		return
	}
	for _, pattern := range patterns {
		if err := s.cacheService.DeletePattern(ctx, pattern); err != nil {
			// Stale entries age out with their TTL
			s.logger.WarnContext(ctx, "Failed to invalidate cache", slog.String("pattern", pattern), slog.String("error", err.Error()))
		}
	}
}

func (s *service) ScheduleExists(ctx context.Context, id int64) (bool, error) {
	var cached ScheduleResponse
	if err := s.getCache(ctx, constants.BuildScheduleDetailKey(id), &cached); err == nil {
		return true, nil
	}
	return s.repo.ScheduleExists(ctx, id)
}

func (s *service) GetSchedule(ctx context.Context, id int64) (*ScheduleResponse, error) {
	cacheKey := constants.BuildScheduleDetailKey(id)

	// Try to get from cache first
	var cached ScheduleResponse
	if err := s.getCache(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	// Cache miss - get from database
	schedule, err := s.repo.GetScheduleByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	resp := schedule.ToResponse()
	s.setCache(ctx, cacheKey, resp, constants.TTL_SCHEDULE_DETAIL)
	return &resp, nil
}

// GetSeatMap numbers seats "001".."N" from the plane's capacity. A seat with
// a confirmed booking is BOOKED even if a stale lock is still present.
func (s *service) GetSeatMap(ctx context.Context, id int64) (*SeatMapResponse, error) {
	schedule, err := s.GetSchedule(ctx, id)
	if err != nil {
		return nil, err
	}

	totalSeats := schedule.Flight.Plane.TotalSeats
	seatMap := &SeatMapResponse{
		ScheduleID:   id,
		TotalSeats:   totalSeats,
		SeatStatuses: make(map[string]SeatStatus, totalSeats),
	}
	for i := 1; i <= totalSeats; i++ {
		seatMap.SeatStatuses[SeatNumber(i)] = SeatStatusAvailable
	}

	if s.occupancy == nil {
		seatMap.AvailableCount = totalSeats
		return seatMap, nil
	}

	for _, seat := range s.occupancy.ReservedSeats(ctx, id) {
		if _, ok := seatMap.SeatStatuses[seat]; ok {
			seatMap.SeatStatuses[seat] = SeatStatusHeld
		}
	}

	confirmed, err := s.occupancy.ConfirmedSeats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load confirmed seats: %w", err)
	}
	for _, seat := range confirmed {
		if _, ok := seatMap.SeatStatuses[seat]; ok {
			seatMap.SeatStatuses[seat] = SeatStatusBooked
		}
	}

	for _, status := range seatMap.SeatStatuses {
		switch status {
		case SeatStatusBooked:
			seatMap.BookedCount++
		case SeatStatusHeld:
			seatMap.HeldCount++
		default:
			seatMap.AvailableCount++
		}
	}
	return seatMap, nil
}

// SeatNumber formats the n-th seat of a plane
func SeatNumber(n int) string {
	return fmt.Sprintf("%03d", n)
}

func (s *service) SearchSchedules(ctx context.Context, req SearchSchedulesRequest) ([]ScheduleResponse, error) {
	day, err := time.ParseInLocation("2006-01-02", req.DepartureDate, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: departure_date must be YYYY-MM-DD", ErrInvalidInput)
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	if day.Before(today) {
		return nil, fmt.Errorf("%w: departure_date must be today or in the future", ErrInvalidInput)
	}

	origin := strings.ToUpper(req.Origin)
	destination := strings.ToUpper(req.Destination)

	s.logger.DebugContext(ctx, "Searching schedules",
		slog.String("origin", origin),
		slog.String("destination", destination),
		slog.String("departure_date", req.DepartureDate),
	)

	schedules, err := s.repo.SearchSchedules(ctx, origin, destination, day, day.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to search schedules: %w", err)
	}

	out := make([]ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		out = append(out, schedules[i].ToResponse())
	}
	return out, nil
}

func (s *service) GetRoutes(ctx context.Context) ([]FlightResponse, error) {
	var cached []FlightResponse
	if err := s.getCache(ctx, constants.CACHE_KEY_FLIGHT_ROUTES, &cached); err == nil {
		return cached, nil
	}

	flights, err := s.repo.GetAllFlights(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get flight routes: %w", err)
	}

	out := make([]FlightResponse, 0, len(flights))
	for i := range flights {
		out = append(out, flights[i].ToResponse())
	}

	s.setCache(ctx, constants.CACHE_KEY_FLIGHT_ROUTES, out, constants.TTL_FLIGHT_ROUTES)
	return out, nil
}

func (s *service) GetPlane(ctx context.Context, id int64) (*PlaneResponse, error) {
	cacheKey := constants.BuildPlaneDetailKey(id)

	var cached PlaneResponse
	if err := s.getCache(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	plane, err := s.repo.GetPlaneByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlaneNotFound
		}
		return nil, fmt.Errorf("failed to get plane: %w", err)
	}

	resp := plane.ToResponse()
	s.setCache(ctx, cacheKey, resp, constants.TTL_PLANE_DETAIL)
	return &resp, nil
}

func (s *service) CreatePlane(ctx context.Context, req CreatePlaneRequest) (*PlaneResponse, error) {
	plane := &Plane{
		Model:      strings.TrimSpace(req.Model),
		TotalSeats: req.TotalSeats,
	}

	if err := s.repo.CreatePlane(ctx, plane); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: plane model %q", ErrAlreadyExists, plane.Model)
		}
		return nil, fmt.Errorf("failed to create plane: %w", err)
	}

	s.logger.InfoContext(ctx, "Plane created", slog.Int64("plane_id", plane.ID), slog.String("model", plane.Model))

	resp := plane.ToResponse()
	return &resp, nil
}

func (s *service) CreateFlight(ctx context.Context, req CreateFlightRequest) (*FlightResponse, error) {
	plane, err := s.repo.GetPlaneByID(ctx, req.PlaneID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlaneNotFound
		}
		return nil, fmt.Errorf("failed to get plane: %w", err)
	}

	flight := &Flight{
		FlightNumber:     strings.ToUpper(req.FlightNumber),
		DepartureAirport: strings.ToUpper(req.DepartureAirport),
		ArrivalAirport:   strings.ToUpper(req.ArrivalAirport),
		PlaneID:          plane.ID,
	}

	if err := s.repo.CreateFlight(ctx, flight); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: flight number %q", ErrAlreadyExists, flight.FlightNumber)
		}
		return nil, fmt.Errorf("failed to create flight: %w", err)
	}
	flight.Plane = *plane

	s.invalidate(ctx, constants.PATTERN_INVALIDATE_FLIGHTS_ALL)

	s.logger.InfoContext(ctx, "Flight route created",
		slog.Int64("flight_id", flight.ID),
		slog.String("flight_number", flight.FlightNumber),
		slog.Int64("plane_id", plane.ID),
	)

	resp := flight.ToResponse()
	return &resp, nil
}

func (s *service) CreateSchedule(ctx context.Context, req CreateScheduleRequest) (*ScheduleResponse, error) {
	if !req.ArrivalTime.After(req.DepartureTime) {
		return nil, fmt.Errorf("%w: arrival_time must be after departure_time", ErrInvalidInput)
	}
	if !req.DepartureTime.After(s.now()) {
		return nil, fmt.Errorf("%w: departure_time must be in the future", ErrInvalidInput)
	}
	if req.BasePrice <= 0 {
		return nil, fmt.Errorf("%w: base_price must be greater than 0", ErrInvalidInput)
	}

	flight, err := s.repo.GetFlightByID(ctx, req.FlightID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFlightNotFound
		}
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}

	schedule := &Schedule{
		FlightID:      flight.ID,
		DepartureTime: req.DepartureTime.UTC(),
		ArrivalTime:   req.ArrivalTime.UTC(),
		BasePrice:     req.BasePrice,
		Status:        ScheduleStatusScheduled,
	}

	if err := s.repo.CreateSchedule(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}
	schedule.Flight = *flight

	s.logger.InfoContext(ctx, "Schedule created",
		slog.Int64("schedule_id", schedule.ID),
		slog.String("flight_number", flight.FlightNumber),
		slog.Int("total_seats", flight.Plane.TotalSeats),
	)

	resp := schedule.ToResponse()
	return &resp, nil
}

// ReassignPlane changes the plane flown on a route. Every cached schedule
// detail is dropped since any of them may embed the old plane.
func (s *service) ReassignPlane(ctx context.Context, flightID, planeID int64) (*FlightResponse, error) {
	flight, err := s.repo.GetFlightByID(ctx, flightID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFlightNotFound
		}
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}

	plane, err := s.repo.GetPlaneByID(ctx, planeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlaneNotFound
		}
		return nil, fmt.Errorf("failed to get plane: %w", err)
	}

	if err := s.repo.UpdateFlightPlane(ctx, flight.ID, plane.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFlightNotFound
		}
		return nil, fmt.Errorf("failed to reassign plane: %w", err)
	}

	s.invalidate(ctx,
		constants.PATTERN_INVALIDATE_SCHEDULE_DETAILS,
		constants.PATTERN_INVALIDATE_FLIGHTS_ALL,
	)

	s.logger.InfoContext(ctx, "Plane reassigned",
		slog.String("flight_number", flight.FlightNumber),
		slog.Int64("old_plane_id", flight.PlaneID),
		slog.Int64("new_plane_id", plane.ID),
	)

	flight.PlaneID = plane.ID
	flight.Plane = *plane
	resp := flight.ToResponse()
	return &resp, nil
}
