package metric

import (
	"testing"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockStatsd struct {
	statsd.ClientInterface
	mock.Mock
}

func (m *mockStatsd) Count(name string, value int64, tags []string, rate float64) error {
	return m.Called(name, value, tags, rate).Error(0)
}

func (m *mockStatsd) Timing(name string, value time.Duration, tags []string, rate float64) error {
	return m.Called(name, value, tags, rate).Error(0)
}

func (m *mockStatsd) Close() error {
	return m.Called().Error(0)
}

func TestRecorder_Incr(t *testing.T) {
	client := &mockStatsd{}
	client.On("Count", SeatLockAcquireCount, int64(1), []string{"outcome:conflict"}, 1.0).Return(nil)

	r := NewWithClient(client, 0)
	r.Incr(SeatLockAcquireCount, TagAsString(TagOutcome, "conflict"))

	client.AssertExpectations(t)
}

func TestRecorder_TimingUsesConfiguredRate(t *testing.T) {
	client := &mockStatsd{}
	client.On("Timing", BookingLatency, mock.AnythingOfType("time.Duration"), []string(nil), 0.5).Return(nil)

	r := NewWithClient(client, 0.5)
	r.TimingWithStart(BookingLatency, time.Now().Add(-time.Millisecond))

	client.AssertExpectations(t)
}

func TestRecorder_ClientErrorsAreIgnored(t *testing.T) {
	client := &mockStatsd{}
	client.On("Count", BookedSeatCount, int64(2), []string(nil), 1.0).Return(assert.AnError)

	r := NewWithClient(client, 1)
	assert.NotPanics(t, func() { r.Count(BookedSeatCount, 2) })
}

func TestNewNoop(t *testing.T) {
	r := NewNoop()
	r.Incr(BookingRequestCount)
	assert.NoError(t, r.Close())
}
