package seatlock

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"flightbook/pkg/logger"
	"flightbook/pkg/metric"
)

const (
	DefaultTTL              = 300 * time.Second
	DefaultOperationTimeout = 100 * time.Millisecond
)

type Options struct {
	TTL              time.Duration
	OperationTimeout time.Duration
	// Backend only labels metrics.
	Backend string
}

// Manager acquires and releases individual seat locks and classifies store
// failures. It holds no per-booking state.
type Manager struct {
	store   Store
	ttl     time.Duration
	timeout time.Duration
	backend string
	logger  *logger.Logger
	metrics *metric.Recorder
}

func NewManager(store Store, opts Options, log *logger.Logger, metrics *metric.Recorder) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.OperationTimeout <= 0 {
		opts.OperationTimeout = DefaultOperationTimeout
	}
	if log == nil {
		log = logger.GetDefault()
	}
	if metrics == nil {
		metrics = metric.NewNoop()
	}

	return &Manager{
		store:   store,
		ttl:     opts.TTL,
		timeout: opts.OperationTimeout,
		backend: opts.Backend,
		logger:  log.WithComponent("seatlock"),
		metrics: metrics,
	}
}

// Acquire takes the lock for one seat on behalf of userID. It returns nil,
// ErrConflict, ErrUnavailable (wrapped), or ErrInvalidSeatNumber.
func (m *Manager) Acquire(ctx context.Context, scheduleID int64, seatNumber string, userID int64) error {
	key, err := Encode(scheduleID, seatNumber)
	if err != nil {
		return err
	}

	opCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	created, err := m.store.CreateIfAbsent(opCtx, key, scheduleID, userID, m.ttl)
	m.metrics.TimingWithStart(metric.SeatLockAcquireLatency, start, metric.TagAsString(metric.TagBackend, m.backend))

	switch {
	case err != nil:
		m.metrics.Incr(metric.SeatLockAcquireCount, m.outcomeTags("unavailable")...)
		m.logger.WarnContext(ctx, "Seat lock store failure",
			slog.String("lock_key", key),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: acquire %s: %w", ErrUnavailable, key, err)
	case !created:
		m.metrics.Incr(metric.SeatLockAcquireCount, m.outcomeTags("conflict")...)
		m.logger.LogSeatLockConflict(ctx, scheduleID, seatNumber, userID)
		return ErrConflict
	}

	m.metrics.Incr(metric.SeatLockAcquireCount, m.outcomeTags("acquired")...)
	return nil
}

// Release deletes the lock for one seat. Failures are logged and left for
// the TTL to reclaim.
func (m *Manager) Release(ctx context.Context, scheduleID int64, seatNumber string) {
	key, err := Encode(scheduleID, seatNumber)
	if err != nil {
		m.logger.ErrorContext(ctx, "Refusing to release invalid seat",
			slog.Int64("schedule_id", scheduleID),
			slog.String("seat_number", seatNumber),
			slog.String("error", err.Error()),
		)
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.store.Delete(opCtx, key); err != nil {
		m.metrics.Incr(metric.SeatLockReleaseCount, m.outcomeTags("failed")...)
		m.logger.WarnContext(ctx, "Seat lock release failed, leaving it to expire",
			slog.String("lock_key", key),
			slog.Duration("ttl", m.ttl),
			slog.String("error", err.Error()),
		)
		return
	}

	m.metrics.Incr(metric.SeatLockReleaseCount, m.outcomeTags("released")...)
}

// ListHeld returns the seat numbers currently locked on a schedule, sorted.
// The result is a point-in-time snapshot.
func (m *Manager) ListHeld(ctx context.Context, scheduleID int64) ([]string, error) {
	opCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	keys, err := m.store.KeysBySchedule(opCtx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("%w: list schedule %d: %w", ErrUnavailable, scheduleID, err)
	}

	seats := make([]string, 0, len(keys))
	for _, key := range keys {
		id, seat, err := Decode(key)
		if err != nil {
			m.logger.WarnContext(ctx, "Skipping undecodable lock key",
				slog.String("lock_key", key),
				slog.String("error", err.Error()),
			)
			continue
		}
		if id != scheduleID {
			continue
		}
		seats = append(seats, seat)
	}

	sort.Strings(seats)
	return seats, nil
}

func (m *Manager) outcomeTags(outcome string) []string {
	return []string{
		metric.TagAsString(metric.TagOutcome, outcome),
		metric.TagAsString(metric.TagBackend, m.backend),
	}
}
