package notifications

import (
	"context"
	"log/slog"

	"flightbook/pkg/logger"
	"flightbook/pkg/metric"
)

// AuditHandler records every confirmed booking it consumes as a structured
// log line. It is the handler behind cmd/booking-events.
type AuditHandler struct {
	logger  *logger.Logger
	metrics *metric.Recorder
}

func NewAuditHandler(log *logger.Logger, metrics *metric.Recorder) *AuditHandler {
	if log == nil {
		log = logger.GetDefault()
	}
	if metrics == nil {
		metrics = metric.NewNoop()
	}
	return &AuditHandler{logger: log.WithComponent("booking-audit"), metrics: metrics}
}

func (h *AuditHandler) HandleBookingConfirmed(ctx context.Context, event BookingConfirmed) error {
	h.logger.InfoContext(ctx, "Booking confirmed",
		slog.String("event_id", event.EventID.String()),
		slog.Int64("schedule_id", event.ScheduleID),
		slog.Int64("user_id", event.UserID),
		slog.Any("seat_numbers", event.SeatNumbers),
		slog.Any("booking_ids", event.BookingIDs),
		slog.Time("booked_at", event.BookedAt),
	)
	h.metrics.Incr(metric.EventConsumeCount, metric.TagAsString(metric.TagKind, event.Type))
	return nil
}
