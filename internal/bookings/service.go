package bookings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"flightbook/internal/notifications"
	"flightbook/internal/seatlock"
	"flightbook/pkg/logger"
	"flightbook/pkg/metric"

	"gorm.io/gorm"
)

const DefaultCompensationTimeout = 2 * time.Second

// ScheduleFinder is the catalog lookup used before any lock is taken
// (to avoid circular dependency)
type ScheduleFinder interface {
	ScheduleExists(ctx context.Context, scheduleID int64) (bool, error)
}

// SeatLocker is implemented by *seatlock.Manager
type SeatLocker interface {
	Acquire(ctx context.Context, scheduleID int64, seatNumber string, userID int64) error
	Release(ctx context.Context, scheduleID int64, seatNumber string)
	ListHeld(ctx context.Context, scheduleID int64) ([]string, error)
}

// Service interface defines the contract for booking business logic
type Service interface {
	// Book confirms every seat in seats for userID or none of them
	Book(ctx context.Context, scheduleID int64, seats []string, userID int64) ([]Booking, error)
	// ReservedSeats lists seats currently locked by in-flight bookings. Advisory only.
	ReservedSeats(ctx context.Context, scheduleID int64) []string
	ConfirmedSeats(ctx context.Context, scheduleID int64) ([]string, error)
	GetBooking(ctx context.Context, id int64) (*Booking, error)
	GetUserBookings(ctx context.Context, userID int64, query BookingListQuery) (*PaginatedBookings, error)
}

type Options struct {
	CompensationTimeout time.Duration
}

type service struct {
	repo                Repository
	schedules           ScheduleFinder
	locks               SeatLocker
	publisher           notifications.Publisher
	logger              *logger.Logger
	metrics             *metric.Recorder
	compensationTimeout time.Duration
	now                 func() time.Time
}

// NewService wires the booking coordinator. publisher, log and metrics may be nil.
func NewService(repo Repository, schedules ScheduleFinder, locks SeatLocker, publisher notifications.Publisher, opts Options, log *logger.Logger, metrics *metric.Recorder) Service {
	if opts.CompensationTimeout <= 0 {
		opts.CompensationTimeout = DefaultCompensationTimeout
	}
	if publisher == nil {
		publisher = notifications.NoopPublisher{}
	}
	if log == nil {
		log = logger.GetDefault()
	}
	if metrics == nil {
		metrics = metric.NewNoop()
	}

	return &service{
		repo:                repo,
		schedules:           schedules,
		locks:               locks,
		publisher:           publisher,
		logger:              log.WithComponent("bookings"),
		metrics:             metrics,
		compensationTimeout: opts.CompensationTimeout,
		now:                 time.Now,
	}
}

func (s *service) Book(ctx context.Context, scheduleID int64, seats []string, userID int64) ([]Booking, error) {
	start := time.Now()

	bookings, err := s.book(ctx, scheduleID, seats, userID)

	outcome := "confirmed"
	if err != nil {
		outcome = strings.ToLower(string(KindOf(err)))
	}
	s.metrics.Incr(metric.BookingRequestCount, metric.TagAsString(metric.TagOutcome, outcome))
	s.metrics.TimingWithStart(metric.BookingLatency, start, metric.TagAsString(metric.TagOutcome, outcome))

	if err == nil && len(bookings) > 0 {
		s.metrics.Count(metric.BookedSeatCount, int64(len(bookings)))
		s.logger.LogBookingConfirmed(ctx, scheduleID, userID, seats, time.Since(start))
	}
	return bookings, err
}

func (s *service) book(ctx context.Context, scheduleID int64, seats []string, userID int64) ([]Booking, error) {
	if err := validateBookingInput(scheduleID, seats, userID); err != nil {
		return nil, err
	}

	// Step 1: Schedule must exist before anything is locked
	exists, err := s.schedules.ScheduleExists(ctx, scheduleID)
	if err != nil {
		return nil, &BookingError{Kind: KindPersistenceFailed, ScheduleID: scheduleID, Err: fmt.Errorf("schedule lookup: %w", err)}
	}
	if !exists {
		return nil, &BookingError{Kind: KindScheduleNotFound, ScheduleID: scheduleID}
	}

	if len(seats) == 0 {
		return []Booking{}, nil
	}

	// Step 2: Lock seats in request order. acquired holds exactly the locks
	// this call owns and is the only input to compensation.
	bookedAt := s.now().UTC()
	acquired := make([]string, 0, len(seats))
	pending := make([]Booking, 0, len(seats))

	for _, seat := range seats {
		if err := ctx.Err(); err != nil {
			s.compensate(ctx, scheduleID, acquired, "request cancelled")
			return nil, &BookingError{Kind: KindLockingUnavailable, ScheduleID: scheduleID, SeatNumber: seat, Err: err}
		}

		if err := s.locks.Acquire(ctx, scheduleID, seat, userID); err != nil {
			kind := lockFailureKind(err)
			s.compensate(ctx, scheduleID, acquired, string(kind))
			return nil, &BookingError{Kind: kind, ScheduleID: scheduleID, SeatNumber: seat, Err: err}
		}

		acquired = append(acquired, seat)
		pending = append(pending, Booking{
			ScheduleID:  scheduleID,
			UserID:      userID,
			SeatNumber:  seat,
			Status:      StatusConfirmed,
			BookingTime: bookedAt,
		})
	}

	// Step 3: A released lock says nothing about seats booked earlier, so
	// check durable occupancy while every lock is still held.
	taken, err := s.repo.FindConfirmedSeats(ctx, scheduleID, acquired)
	if err != nil {
		s.compensate(ctx, scheduleID, acquired, string(KindPersistenceFailed))
		return nil, &BookingError{Kind: KindPersistenceFailed, ScheduleID: scheduleID, Err: fmt.Errorf("occupancy check: %w", err)}
	}
	if len(taken) > 0 {
		s.compensate(ctx, scheduleID, acquired, "seat already booked")
		return nil, &BookingError{Kind: KindSeatConflict, ScheduleID: scheduleID, SeatNumber: taken[0], Err: errors.New("seat already booked")}
	}

	// Step 4: Persist all rows atomically
	saved, err := s.repo.SaveAll(ctx, pending)
	if err != nil {
		kind := KindPersistenceFailed
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			kind = KindSeatConflict
		}
		s.compensate(ctx, scheduleID, acquired, string(kind))
		return nil, &BookingError{Kind: kind, ScheduleID: scheduleID, Err: fmt.Errorf("save bookings: %w", err)}
	}

	// Step 5: Rows are now the source of truth; locks are no longer needed
	s.releaseAll(ctx, scheduleID, acquired)
	s.publishConfirmed(ctx, scheduleID, userID, saved, bookedAt)

	return saved, nil
}

// compensate releases every lock in acquired and records why
func (s *service) compensate(ctx context.Context, scheduleID int64, acquired []string, reason string) {
	if len(acquired) == 0 {
		return
	}

	s.releaseAll(ctx, scheduleID, acquired)
	s.metrics.Incr(metric.CompensationCount, metric.TagAsString(metric.TagKind, reason))
	s.logger.LogCompensation(ctx, scheduleID, acquired, reason)
}

// releaseAll runs detached from ctx cancellation so an abandoned request
// still frees its locks, newest first.
func (s *service) releaseAll(ctx context.Context, scheduleID int64, acquired []string) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.compensationTimeout)
	defer cancel()

	for i := len(acquired) - 1; i >= 0; i-- {
		s.locks.Release(releaseCtx, scheduleID, acquired[i])
	}
}

func (s *service) publishConfirmed(ctx context.Context, scheduleID, userID int64, saved []Booking, bookedAt time.Time) {
	ids := make([]int64, 0, len(saved))
	seats := make([]string, 0, len(saved))
	for _, b := range saved {
		ids = append(ids, b.ID)
		seats = append(seats, b.SeatNumber)
	}

	event := notifications.NewBookingConfirmed(scheduleID, userID, ids, seats, bookedAt)
	if err := s.publisher.PublishBookingConfirmed(context.WithoutCancel(ctx), event); err != nil {
		s.metrics.Incr(metric.EventPublishCount, metric.TagAsString(metric.TagOutcome, "failed"))
		s.logger.WarnContext(ctx, "Failed to publish booking event",
			slog.String("event_id", event.EventID.String()),
			slog.Int64("schedule_id", scheduleID),
			slog.String("error", err.Error()),
		)
		return
	}
	s.metrics.Incr(metric.EventPublishCount, metric.TagAsString(metric.TagOutcome, "published"))
}

func lockFailureKind(err error) ErrorKind {
	switch {
	case errors.Is(err, seatlock.ErrConflict):
		return KindSeatConflict
	case errors.Is(err, seatlock.ErrInvalidSeatNumber):
		return KindInvalidRequest
	default:
		return KindLockingUnavailable
	}
}

func validateBookingInput(scheduleID int64, seats []string, userID int64) error {
	if scheduleID <= 0 {
		return &BookingError{Kind: KindInvalidRequest, ScheduleID: scheduleID, Err: errors.New("schedule id must be positive")}
	}
	if userID <= 0 {
		return &BookingError{Kind: KindInvalidRequest, ScheduleID: scheduleID, Err: errors.New("user id must be positive")}
	}

	seen := make(map[string]struct{}, len(seats))
	for _, seat := range seats {
		if err := seatlock.ValidateSeatNumber(seat); err != nil {
			return &BookingError{Kind: KindInvalidRequest, ScheduleID: scheduleID, SeatNumber: seat, Err: err}
		}
		if _, dup := seen[seat]; dup {
			return &BookingError{Kind: KindInvalidRequest, ScheduleID: scheduleID, SeatNumber: seat, Err: errors.New("duplicate seat in request")}
		}
		seen[seat] = struct{}{}
	}
	return nil
}

func (s *service) ReservedSeats(ctx context.Context, scheduleID int64) []string {
	seats, err := s.locks.ListHeld(ctx, scheduleID)
	if err != nil {
		s.logger.WarnContext(ctx, "Reserved seat query failed, returning empty set",
			slog.Int64("schedule_id", scheduleID),
			slog.String("error", err.Error()),
		)
		return []string{}
	}
	if seats == nil {
		return []string{}
	}
	return seats
}

func (s *service) ConfirmedSeats(ctx context.Context, scheduleID int64) ([]string, error) {
	seats, err := s.repo.ConfirmedSeatsBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get confirmed seats: %w", err)
	}
	return seats, nil
}

func (s *service) GetBooking(ctx context.Context, id int64) (*Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (s *service) GetUserBookings(ctx context.Context, userID int64, query BookingListQuery) (*PaginatedBookings, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	bookings, total, err := s.repo.GetUserBookings(ctx, userID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get user bookings: %w", err)
	}

	return &PaginatedBookings{
		Bookings:   toResponses(bookings),
		TotalCount: total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: CalculateTotalPages(total, query.Limit),
	}, nil
}
