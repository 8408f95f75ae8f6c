package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"flightbook/pkg/logger"
	"flightbook/pkg/metric"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyHandler struct {
	failures int
	calls    int
	events   []BookingConfirmed
}

func (h *flakyHandler) HandleBookingConfirmed(ctx context.Context, event BookingConfirmed) error {
	h.calls++
	if h.calls <= h.failures {
		return errors.New("downstream unavailable")
	}
	h.events = append(h.events, event)
	return nil
}

func newTestGroupHandler(handler BookingEventHandler, maxRetries int) *consumerGroupHandler {
	cfg := DefaultConsumerConfig()
	cfg.MaxRetries = maxRetries
	cfg.RetryBackoffDuration = time.Millisecond
	return &consumerGroupHandler{config: cfg, handler: handler, logger: logger.NewNop()}
}

func messageFor(t *testing.T, v interface{}) *sarama.ConsumerMessage {
	t.Helper()
	value, err := json.Marshal(v)
	require.NoError(t, err)
	return &sarama.ConsumerMessage{Topic: "booking-events", Value: value, Offset: 7}
}

func TestProcessMessage_DeliversEvent(t *testing.T) {
	handler := &flakyHandler{}
	event := testEvent()

	err := newTestGroupHandler(handler, 0).processMessage(context.Background(), messageFor(t, event))
	require.NoError(t, err)
	require.Len(t, handler.events, 1)
	assert.Equal(t, event.EventID, handler.events[0].EventID)
	assert.Equal(t, []string{"A01", "A02"}, handler.events[0].SeatNumbers)
}

func TestProcessMessage_RetriesThenSucceeds(t *testing.T) {
	handler := &flakyHandler{failures: 2}

	err := newTestGroupHandler(handler, 3).processMessage(context.Background(), messageFor(t, testEvent()))
	require.NoError(t, err)
	assert.Equal(t, 3, handler.calls)
}

func TestProcessMessage_GivesUp(t *testing.T) {
	handler := &flakyHandler{failures: 10}

	err := newTestGroupHandler(handler, 2).processMessage(context.Background(), messageFor(t, testEvent()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, handler.calls)
}

func TestProcessMessage_SkipsForeignAndUndecodable(t *testing.T) {
	handler := &flakyHandler{}
	h := newTestGroupHandler(handler, 0)

	other := testEvent()
	other.Type = "BOOKING_CANCELLED"
	require.NoError(t, h.processMessage(context.Background(), messageFor(t, other)))

	garbage := &sarama.ConsumerMessage{Topic: "booking-events", Value: []byte("{not json")}
	require.NoError(t, h.processMessage(context.Background(), garbage))

	assert.Zero(t, handler.calls)
}

func TestProcessMessage_CancelledDuringBackoff(t *testing.T) {
	handler := &flakyHandler{failures: 10}
	h := newTestGroupHandler(handler, 5)
	h.config.RetryBackoffDuration = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.processMessage(ctx, messageFor(t, testEvent()))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, handler.calls)
}

func TestAuditHandler_LogsEvent(t *testing.T) {
	var buf bytes.Buffer
	handler := NewAuditHandler(logger.NewWithWriter(&buf, "info"), metric.NewNoop())

	require.NoError(t, handler.HandleBookingConfirmed(context.Background(), testEvent()))
	assert.Contains(t, buf.String(), "Booking confirmed")
	assert.Contains(t, buf.String(), "schedule_id")
}

func TestConsumerConfig_SaramaConfig(t *testing.T) {
	cfg := DefaultConsumerConfig()
	sc := cfg.saramaConfig()

	assert.Equal(t, sarama.OffsetOldest, sc.Consumer.Offsets.Initial)
	assert.True(t, sc.Consumer.Offsets.AutoCommit.Enable)
	assert.True(t, sc.Consumer.Return.Errors)
	assert.NoError(t, sc.Validate())
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	messages chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

type fakeSession struct {
	sarama.ConsumerGroupSession
	ctx    context.Context
	mu     sync.Mutex
	marked []int64
}

func (s *fakeSession) Context() context.Context { return s.ctx }

func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, msg.Offset)
}

func (s *fakeSession) markedOffsets() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.marked...)
}

// fakeGroup delivers its messages through one claim on the first Consume
// call. Later calls block until their context ends.
type fakeGroup struct {
	sarama.ConsumerGroup
	messages  []*sarama.ConsumerMessage
	session   *fakeSession
	claimed   chan struct{}
	errs      chan error
	once      sync.Once
	closeOnce sync.Once
}

func newFakeGroup(messages ...*sarama.ConsumerMessage) *fakeGroup {
	return &fakeGroup{
		messages: messages,
		claimed:  make(chan struct{}),
		errs:     make(chan error),
	}
}

func (g *fakeGroup) Consume(ctx context.Context, _ []string, handler sarama.ConsumerGroupHandler) error {
	first := false
	g.once.Do(func() { first = true })
	if !first {
		<-ctx.Done()
		return nil
	}

	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage, len(g.messages))}
	for _, m := range g.messages {
		claim.messages <- m
	}
	close(claim.messages)

	g.session = &fakeSession{ctx: ctx}
	if err := handler.Setup(g.session); err != nil {
		return err
	}
	err := handler.ConsumeClaim(g.session, claim)
	_ = handler.Cleanup(g.session)
	close(g.claimed)
	return err
}

func (g *fakeGroup) Errors() <-chan error { return g.errs }

func (g *fakeGroup) Close() error {
	g.closeOnce.Do(func() { close(g.errs) })
	return nil
}

type selectiveHandler struct {
	failing map[string]bool
}

func (h *selectiveHandler) HandleBookingConfirmed(_ context.Context, event BookingConfirmed) error {
	if h.failing[event.SeatNumbers[0]] {
		return errors.New("downstream unavailable")
	}
	return nil
}

func recordAt(t *testing.T, offset int64, seat string) *sarama.ConsumerMessage {
	t.Helper()
	event := testEvent()
	event.SeatNumbers = []string{seat}
	msg := messageFor(t, event)
	msg.Offset = offset
	return msg
}

func TestKafkaBookingConsumer_MarksOnlyHandledMessages(t *testing.T) {
	group := newFakeGroup(
		recordAt(t, 0, "A01"),
		recordAt(t, 1, "B02"),
		recordAt(t, 2, "C03"),
	)
	cfg := DefaultConsumerConfig()
	cfg.MaxRetries = 0
	cfg.RetryBackoffDuration = time.Millisecond

	handler := &selectiveHandler{failing: map[string]bool{"B02": true}}
	consumer := newKafkaBookingConsumer(group, cfg, handler, logger.NewNop())
	t.Cleanup(func() { _ = consumer.Stop() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.StartConsumers(ctx, 2))

	select {
	case <-group.claimed:
	case <-time.After(5 * time.Second):
		t.Fatal("claim was not consumed")
	}
	assert.Equal(t, []int64{0, 2}, group.session.markedOffsets())
	assert.NoError(t, consumer.HealthCheck(ctx))

	cancel()
	select {
	case <-consumer.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("workers did not exit after cancel")
	}
}

func TestKafkaBookingConsumer_StopEndsWorkers(t *testing.T) {
	group := newFakeGroup()
	consumer := newKafkaBookingConsumer(group, DefaultConsumerConfig(), &flakyHandler{}, logger.NewNop())

	require.NoError(t, consumer.StartConsumers(context.Background(), 1))
	<-group.claimed

	require.NoError(t, consumer.Stop())
	assert.Error(t, consumer.HealthCheck(context.Background()))

	select {
	case <-consumer.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("workers did not exit after stop")
	}
}
