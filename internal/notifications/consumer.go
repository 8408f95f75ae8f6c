package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"flightbook/pkg/logger"

	"github.com/IBM/sarama"
)

// BookingEventHandler processes one decoded booking event. A returned error
// is retried with backoff. When every attempt fails the message is logged
// and skipped; the next successful message commits past it.
type BookingEventHandler interface {
	HandleBookingConfirmed(ctx context.Context, event BookingConfirmed) error
}

type BookingEventConsumer interface {
	StartConsumers(ctx context.Context, numWorkers int) error
	Stop() error
	HealthCheck(ctx context.Context) error
}

type ConsumerConfig struct {
	Brokers              []string
	GroupID              string
	Topics               []string
	SessionTimeoutMs     int
	HeartbeatMs          int
	RetryBackoffMs       int
	MaxProcessingTime    time.Duration
	AutoCommit           bool
	OffsetOldest         bool
	MaxRetries           int
	RetryBackoffDuration time.Duration
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:              []string{"localhost:9092"},
		GroupID:              "flightbook-booking-workers",
		Topics:               []string{"booking-events"},
		SessionTimeoutMs:     30000,
		HeartbeatMs:          3000,
		RetryBackoffMs:       100,
		MaxProcessingTime:    time.Minute,
		AutoCommit:           true,
		OffsetOldest:         true,
		MaxRetries:           3,
		RetryBackoffDuration: time.Second,
	}
}

func (c *ConsumerConfig) saramaConfig() *sarama.Config {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(c.SessionTimeoutMs) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(c.HeartbeatMs) * time.Millisecond
	saramaConfig.Consumer.Retry.Backoff = time.Duration(c.RetryBackoffMs) * time.Millisecond
	saramaConfig.Consumer.MaxProcessingTime = c.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true

	if c.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	if c.AutoCommit {
		saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
		saramaConfig.Consumer.Offsets.AutoCommit.Interval = 1 * time.Second
	}
	return saramaConfig
}

type KafkaBookingConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	handler       BookingEventHandler
	logger        *logger.Logger
	topics        []string
	ctx           context.Context
	cancel        context.CancelFunc
	done          chan struct{}
	doneOnce      sync.Once
}

func NewKafkaBookingConsumer(config *ConsumerConfig, handler BookingEventHandler, log *logger.Logger) (*KafkaBookingConsumer, error) {
	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, config.saramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}
	return newKafkaBookingConsumer(consumerGroup, config, handler, log), nil
}

func newKafkaBookingConsumer(group sarama.ConsumerGroup, config *ConsumerConfig, handler BookingEventHandler, log *logger.Logger) *KafkaBookingConsumer {
	if log == nil {
		log = logger.GetDefault()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &KafkaBookingConsumer{
		consumerGroup: group,
		config:        config,
		handler:       handler,
		logger:        log.WithComponent("booking-consumer"),
		topics:        config.Topics,
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
	}
}

// StartConsumers launches numWorkers consume loops and returns immediately.
// The loops stop when ctx or the consumer is cancelled.
func (kc *KafkaBookingConsumer) StartConsumers(ctx context.Context, numWorkers int) error {
	kc.logger.InfoContext(ctx, "Starting booking event consumers",
		slog.Int("workers", numWorkers),
		slog.Any("topics", kc.topics),
	)

	go kc.handleErrors()

	// Stop ends in-flight Consume calls too
	workerCtx, cancel := context.WithCancel(ctx)
	stopOnClose := context.AfterFunc(kc.ctx, cancel)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			kc.runWorker(workerCtx, workerID)
		}(i)
	}
	go func() {
		wg.Wait()
		stopOnClose()
		cancel()
		kc.logger.Info("All booking event consumers exited")
		kc.doneOnce.Do(func() { close(kc.done) })
	}()

	return nil
}

func (kc *KafkaBookingConsumer) runWorker(ctx context.Context, workerID int) {
	handler := &consumerGroupHandler{
		config:   kc.config,
		handler:  kc.handler,
		logger:   kc.logger.WithWorkerID(workerID),
		workerID: workerID,
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-kc.ctx.Done():
			return
		default:
			if err := kc.consumerGroup.Consume(ctx, kc.topics, handler); err != nil {
				kc.logger.WarnContext(ctx, "Error consuming messages",
					slog.Int("worker_id", workerID),
					slog.String("error", err.Error()),
				)
				time.Sleep(time.Second)
			}
		}
	}
}

// Done is closed once every worker started by StartConsumers has returned
func (kc *KafkaBookingConsumer) Done() <-chan struct{} {
	return kc.done
}

func (kc *KafkaBookingConsumer) handleErrors() {
	for err := range kc.consumerGroup.Errors() {
		kc.logger.Warn("Consumer group error", slog.String("error", err.Error()))
	}
}

func (kc *KafkaBookingConsumer) Stop() error {
	kc.cancel()

	if err := kc.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}

	kc.logger.Info("Booking event consumer stopped")
	return nil
}

func (kc *KafkaBookingConsumer) HealthCheck(ctx context.Context) error {
	select {
	case <-kc.ctx.Done():
		return fmt.Errorf("consumer context is cancelled")
	default:
		if kc.handler == nil {
			return fmt.Errorf("booking event handler not configured")
		}
		return nil
	}
}

type consumerGroupHandler struct {
	config   *ConsumerConfig
	handler  BookingEventHandler
	logger   *logger.Logger
	workerID int
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	h.logger.Debug("Consumer group session started")
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	h.logger.Debug("Consumer group session ended")
	return nil
}

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return nil
			}

			if err := h.processMessage(session.Context(), message); err != nil {
				h.logger.ErrorContext(session.Context(), "Skipping booking event after failed attempts",
					slog.Int64("offset", message.Offset),
					slog.String("error", err.Error()),
				)
				continue
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

// processMessage decodes one record. Records of other event types are
// acknowledged without calling the handler.
func (h *consumerGroupHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	var event BookingConfirmed
	if err := json.Unmarshal(message.Value, &event); err != nil {
		// A poison record would otherwise block the partition
		h.logger.WarnContext(ctx, "Skipping undecodable booking event",
			slog.String("topic", message.Topic),
			slog.Int64("offset", message.Offset),
			slog.String("error", err.Error()),
		)
		return nil
	}

	if event.Type != EventTypeBookingConfirmed {
		return nil
	}

	return h.executeWithRetry(ctx, event)
}

func (h *consumerGroupHandler) executeWithRetry(ctx context.Context, event BookingConfirmed) error {
	maxRetries := h.config.MaxRetries
	backoff := h.config.RetryBackoffDuration

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := h.handler.HandleBookingConfirmed(ctx, event)
		if err == nil {
			return nil
		}

		if attempt == maxRetries {
			return fmt.Errorf("booking event %s failed after %d attempts: %w", event.EventID, attempt+1, err)
		}

		// Exponential backoff
		delay := backoff * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}
