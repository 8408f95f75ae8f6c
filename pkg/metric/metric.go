package metric

import (
	"fmt"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
)

const (
	SeatLockAcquireCount   = "seat_lock_acquire_count"
	SeatLockAcquireLatency = "seat_lock_acquire_latency"
	SeatLockReleaseCount   = "seat_lock_release_count"
	BookingRequestCount    = "booking_request_count"
	BookingLatency         = "booking_latency"
	BookedSeatCount        = "booked_seat_count"
	CompensationCount      = "booking_compensation_count"
	EventPublishCount      = "booking_event_publish_count"
	EventConsumeCount      = "booking_event_consume_count"
)

const (
	TagEnv     = "env"
	TagService = "service"
	TagOutcome = "outcome"
	TagBackend = "backend"
	TagKind    = "kind"
)

// Config holds the StatsD client settings
type Config struct {
	Address     string
	Namespace   string
	Service     string
	Environment string
	SampleRate  float64
}

// Recorder sends metrics through a statsd client. A single Recorder is safe
// for concurrent use.
type Recorder struct {
	client statsd.ClientInterface
	rate   float64
}

// New dials the StatsD agent at cfg.Address
func New(cfg Config) (*Recorder, error) {
	client, err := statsd.New(
		cfg.Address,
		statsd.WithNamespace(cfg.Namespace),
		statsd.WithTags([]string{
			TagAsString(TagEnv, cfg.Environment),
			TagAsString(TagService, cfg.Service),
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("statsd client initialization failed: %w", err)
	}
	return NewWithClient(client, cfg.SampleRate), nil
}

// NewWithClient wraps an existing statsd client
func NewWithClient(client statsd.ClientInterface, rate float64) *Recorder {
	if rate <= 0 || rate > 1 {
		rate = 1
	}
	return &Recorder{client: client, rate: rate}
}

// NewNoop returns a Recorder that drops everything
func NewNoop() *Recorder {
	return NewWithClient(&statsd.NoOpClient{}, 1)
}

// Count increases a counter by value
func (r *Recorder) Count(name string, value int64, tags ...string) {
	_ = r.client.Count(name, value, tags, r.rate)
}

// Incr increases a counter by 1
func (r *Recorder) Incr(name string, tags ...string) {
	r.Count(name, 1, tags...)
}

// Timing sends timing information
func (r *Recorder) Timing(name string, value time.Duration, tags ...string) {
	_ = r.client.Timing(name, value, tags, r.rate)
}

// TimingWithStart is meant for `defer r.TimingWithStart(name, time.Now())`
func (r *Recorder) TimingWithStart(name string, start time.Time, tags ...string) {
	r.Timing(name, time.Since(start), tags...)
}

// Close flushes buffered metrics
func (r *Recorder) Close() error {
	return r.client.Close()
}

// TagAsString renders a key:value statsd tag
func TagAsString(key, value string) string {
	return key + ":" + value
}
