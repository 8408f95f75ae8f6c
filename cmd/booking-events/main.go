// Command booking-events consumes BOOKING_CONFIRMED events from Kafka and
// writes an audit record for each one.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flightbook/internal/notifications"
	"flightbook/internal/shared/config"
	"flightbook/pkg/logger"
	"flightbook/pkg/metric"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	gin.SetMode(cfg.GinMode)
	appLogger := logger.NewWithWriter(os.Stdout, cfg.LogLevel)
	logger.SetDefault(appLogger)

	metrics := metric.NewNoop()
	if cfg.Metrics.Enabled {
		m, err := metric.New(metric.Config{
			Address:     cfg.Metrics.Address,
			Namespace:   cfg.Metrics.Namespace,
			Service:     cfg.ServiceName + "-booking-events",
			Environment: cfg.Metrics.Environment,
		})
		if err != nil {
			appLogger.Warn("StatsD unavailable, metrics disabled", slog.String("error", err.Error()))
		} else {
			metrics = m
		}
	}
	defer metrics.Close()

	consumerCfg := notifications.DefaultConsumerConfig()
	consumerCfg.Brokers = cfg.Notifications.Kafka.Brokers
	consumerCfg.Topics = []string{cfg.Notifications.Kafka.Topic}
	consumerCfg.GroupID = cfg.Notifications.Kafka.ConsumerGroup

	consumer, err := notifications.NewKafkaBookingConsumer(consumerCfg, notifications.NewAuditHandler(appLogger, metrics), appLogger)
	if err != nil {
		appLogger.Error("Failed to create booking event consumer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.StartConsumers(ctx, cfg.Notifications.Kafka.Workers); err != nil {
		appLogger.Error("Failed to start booking event consumer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	<-ctx.Done()
	appLogger.Info("Shutting down booking event consumer...")

	if err := consumer.Stop(); err != nil {
		appLogger.Error("Error stopping booking event consumer", slog.String("error", err.Error()))
	}

	select {
	case <-consumer.Done():
	case <-time.After(10 * time.Second):
		appLogger.Warn("Booking event workers did not exit in time")
	}
}
