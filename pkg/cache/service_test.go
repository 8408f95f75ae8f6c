package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"flightbook/pkg/logger"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedPlane struct {
	ID    int64  `json:"id"`
	Model string `json:"model"`
}

func TestService_GetHitAndMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db, logger.NewNop())
	ctx := context.Background()

	mock.ExpectGet("k1").SetVal(`{"id":7,"model":"A320"}`)
	mock.ExpectGet("k2").RedisNil()

	var got cachedPlane
	require.NoError(t, svc.Get(ctx, "k1", &got))
	assert.Equal(t, cachedPlane{ID: 7, Model: "A320"}, got)

	assert.ErrorIs(t, svc.Get(ctx, "k2", &got), ErrCacheMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GetOrSet_MissFetchesAndStores(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db, logger.NewNop())

	mock.ExpectGet("plane:1").RedisNil()
	mock.ExpectSet("plane:1", []byte(`{"id":1,"model":"B737"}`), time.Hour).SetVal("OK")

	calls := 0
	var got cachedPlane
	err := svc.GetOrSet(context.Background(), "plane:1", time.Hour, func() (interface{}, error) {
		calls++
		return cachedPlane{ID: 1, Model: "B737"}, nil
	}, &got)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "B737", got.Model)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GetOrSet_HitSkipsFetcher(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db, logger.NewNop())

	mock.ExpectGet("plane:1").SetVal(`{"id":1,"model":"B737"}`)

	var got cachedPlane
	err := svc.GetOrSet(context.Background(), "plane:1", time.Hour, func() (interface{}, error) {
		t.Fatal("fetcher must not run on a hit")
		return nil, nil
	}, &got)

	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
}

func TestService_GetOrSet_FetcherError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db, logger.NewNop())

	mock.ExpectGet("plane:2").RedisNil()

	var got cachedPlane
	err := svc.GetOrSet(context.Background(), "plane:2", time.Hour, func() (interface{}, error) {
		return nil, errors.New("record not found")
	}, &got)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GetOrSet_RedisDownStillServes(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db, logger.NewNop())

	mock.ExpectGet("plane:3").SetErr(errors.New("connection refused"))
	mock.ExpectSet("plane:3", []byte(`{"id":3,"model":"E190"}`), time.Hour).SetErr(errors.New("connection refused"))

	var got cachedPlane
	err := svc.GetOrSet(context.Background(), "plane:3", time.Hour, func() (interface{}, error) {
		return cachedPlane{ID: 3, Model: "E190"}, nil
	}, &got)
	require.NoError(t, err)
	assert.Equal(t, "E190", got.Model)
}

func TestService_DeletePattern(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db, logger.NewNop())

	mock.ExpectScan(0, "flightbook:schedules:detail:id:*", 100).SetVal([]string{"a", "b"}, 42)
	mock.ExpectDel("a", "b").SetVal(2)
	mock.ExpectScan(42, "flightbook:schedules:detail:id:*", 100).SetVal([]string{}, 0)

	require.NoError(t, svc.DeletePattern(context.Background(), "flightbook:schedules:detail:id:*"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
