package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "/api/v1", cfg.GetAPIBasePath())
	assert.Equal(t, "redis", cfg.SeatLock.Backend)
	assert.Equal(t, 300*time.Second, cfg.SeatLock.TTL)
	assert.Equal(t, 100*time.Millisecond, cfg.SeatLock.OperationTimeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "none", cfg.Notifications.Broker)
	assert.Contains(t, cfg.Database.DSN, "dbname=flightbook_db")
	assert.Equal(t, "flightbook-booking-workers", cfg.Notifications.Kafka.ConsumerGroup)
	assert.Equal(t, 2, cfg.Notifications.Kafka.Workers)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("LOCK_STORE_BACKEND", "ETCD")
	t.Setenv("SEAT_LOCK_TTL_SECONDS", "60")
	t.Setenv("SEAT_LOCK_OPERATION_TIMEOUT", "250ms")
	t.Setenv("ETCD_ENDPOINTS", "etcd-0:2379, etcd-1:2379,")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("GIN_MODE", "release")

	cfg := Load()

	assert.Equal(t, "etcd", cfg.SeatLock.Backend)
	assert.Equal(t, time.Minute, cfg.SeatLock.TTL)
	assert.Equal(t, 250*time.Millisecond, cfg.SeatLock.OperationTimeout)
	assert.Equal(t, []string{"etcd-0:2379", "etcd-1:2379"}, cfg.Etcd.Endpoints)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SEAT_LOCK_TTL_SECONDS", "soon")
	t.Setenv("REDIS_DB", "two")

	cfg := Load()

	assert.Equal(t, 300*time.Second, cfg.SeatLock.TTL)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestBuildDatabaseDSN_MySQL(t *testing.T) {
	dsn := buildDatabaseDSN(DatabaseConfig{
		Driver:   "mysql",
		Host:     "db",
		Port:     "3306",
		Name:     "flights",
		User:     "booker",
		Password: "secret",
	})

	assert.Equal(t, "booker:secret@tcp(db:3306)/flights?charset=utf8mb4&parseTime=True&loc=UTC", dsn)
}
