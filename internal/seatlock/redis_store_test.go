package seatlock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_CreateIfAbsent(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db)
	ctx := context.Background()

	keys := []string{"flightbook:seat_locks:100:A01", "flightbook:seat_locks_idx:100"}
	mock.ExpectEvalSha(acquireScript.Hash(), keys, int64(200), int64(300), "100:A01").SetVal(int64(1))
	mock.ExpectEvalSha(acquireScript.Hash(), keys, int64(201), int64(300), "100:A01").SetVal(int64(0))

	created, err := store.CreateIfAbsent(ctx, "100:A01", 100, 200, 300*time.Second)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.CreateIfAbsent(ctx, "100:A01", 100, 201, 300*time.Second)
	require.NoError(t, err)
	assert.False(t, created, "second writer must observe the existing key")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_CreateIfAbsent_StoreError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db)

	keys := []string{"flightbook:seat_locks:100:A01", "flightbook:seat_locks_idx:100"}
	mock.ExpectEvalSha(acquireScript.Hash(), keys, int64(200), int64(300), "100:A01").
		SetErr(errors.New("i/o timeout"))

	created, err := store.CreateIfAbsent(context.Background(), "100:A01", 100, 200, 300*time.Second)
	assert.Error(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Delete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db)

	keys := []string{"flightbook:seat_locks:100:A02", "flightbook:seat_locks_idx:100"}
	mock.ExpectEvalSha(releaseScript.Hash(), keys, "100:A02").SetVal(int64(0))

	// A missing key is still a successful release
	assert.NoError(t, store.Delete(context.Background(), "100:A02"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Delete_RejectsMalformedKey(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db)

	assert.ErrorIs(t, store.Delete(context.Background(), "garbage"), ErrInvalidKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_KeysBySchedule(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db)

	mock.ExpectEvalSha(listScript.Hash(), []string{"flightbook:seat_locks_idx:100"}, "flightbook:seat_locks:").
		SetVal([]interface{}{"100:A01", "100:B04"})

	keys, err := store.KeysBySchedule(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"100:A01", "100:B04"}, keys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTTLSeconds(t *testing.T) {
	assert.Equal(t, int64(300), ttlSeconds(300*time.Second))
	assert.Equal(t, int64(1), ttlSeconds(100*time.Millisecond))
	assert.Equal(t, int64(2), ttlSeconds(1500*time.Millisecond))
	assert.Equal(t, int64(1), ttlSeconds(0))
}
