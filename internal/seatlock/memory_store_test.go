package seatlock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateIfAbsent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	created, err := store.CreateIfAbsent(ctx, "100:A01", 100, 200, time.Minute)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.CreateIfAbsent(ctx, "100:A01", 100, 201, time.Minute)
	require.NoError(t, err)
	assert.False(t, created)

	holder, ok := store.Holder("100:A01")
	assert.True(t, ok)
	assert.Equal(t, "200", holder)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := store.CreateIfAbsent(ctx, "100:A01", 100, 200, 300*time.Second)
	require.NoError(t, err)

	now = now.Add(301 * time.Second)

	keys, err := store.KeysBySchedule(ctx, 100)
	require.NoError(t, err)
	assert.Empty(t, keys)

	created, err := store.CreateIfAbsent(ctx, "100:A01", 100, 201, 300*time.Second)
	require.NoError(t, err)
	assert.True(t, created, "expired lock must not block a new holder")
}

func TestMemoryStore_DeleteIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, "100:A01"))

	_, err := store.CreateIfAbsent(ctx, "100:A01", 100, 200, time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "100:A01"))
	require.NoError(t, store.Delete(ctx, "100:A01"))

	_, ok := store.Holder("100:A01")
	assert.False(t, ok)
}

func TestMemoryStore_KeysByScheduleFiltersOtherSchedules(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, k := range []struct {
		key string
		id  int64
	}{{"100:A01", 100}, {"100:B02", 100}, {"10:A01", 10}} {
		_, err := store.CreateIfAbsent(ctx, k.key, k.id, 200, time.Minute)
		require.NoError(t, err)
	}

	keys, err := store.KeysBySchedule(ctx, 100)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"100:A01", "100:B02"}, keys)
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.CreateIfAbsent(ctx, "100:A01", 100, 200, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}
