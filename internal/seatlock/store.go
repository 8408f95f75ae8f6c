package seatlock

import (
	"context"
	"time"
)

// Store is the remote key-value store holding lock records. Keys are
// produced by Encode.
type Store interface {
	// CreateIfAbsent writes key=userID with the given TTL only when no
	// record exists. created is false when the key is already present.
	// Any returned error means the outcome is unknown.
	CreateIfAbsent(ctx context.Context, key string, scheduleID, userID int64, ttl time.Duration) (created bool, err error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// KeysBySchedule returns the keys of live records indexed under scheduleID.
	KeysBySchedule(ctx context.Context, scheduleID int64) ([]string, error)
}

// Backend names accepted by LOCK_STORE_BACKEND.
const (
	BackendRedis  = "redis"
	BackendEtcd   = "etcd"
	BackendMemory = "memory"
)
