package notifications

import (
	"fmt"

	"flightbook/internal/shared/config"
	"flightbook/pkg/logger"
)

const (
	BrokerKafka    = "kafka"
	BrokerRabbitMQ = "rabbitmq"
	BrokerNone     = "none"
)

// NewPublisher builds the publisher selected by NOTIFICATIONS_BROKER
func NewPublisher(cfg config.NotificationsConfig, log *logger.Logger) (Publisher, error) {
	switch cfg.Broker {
	case BrokerKafka:
		kafkaCfg := DefaultKafkaProducerConfig()
		if len(cfg.Kafka.Brokers) > 0 {
			kafkaCfg.Brokers = cfg.Kafka.Brokers
		}
		if cfg.Kafka.Topic != "" {
			kafkaCfg.Topic = cfg.Kafka.Topic
		}
		return NewKafkaPublisher(kafkaCfg, log)
	case BrokerRabbitMQ:
		return NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, log)
	case BrokerNone, "":
		return NoopPublisher{}, nil
	default:
		return nil, fmt.Errorf("unknown notifications broker %q", cfg.Broker)
	}
}
