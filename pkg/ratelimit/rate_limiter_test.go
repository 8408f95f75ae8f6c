package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"flightbook/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func testLimiter(client *redis.Client, cfg *Config) *RateLimiter {
	r := NewRateLimiter(client, cfg)
	r.now = func() time.Time { return fixedNow }
	r.member = func() string { return "m1" }
	return r
}

func testConfig() *Config {
	return &Config{
		Enabled:                 true,
		WindowDuration:          time.Minute,
		DefaultRequests:         100,
		PublicRequests:          200,
		BookingRequests:         50,
		BookingCriticalRequests: 5,
		AdminRequests:           30,
		HealthRequests:          1000,
		WhitelistedIPs:          []string{"10.0.0.1"},
	}
}

func TestRateLimiter_Allowed(t *testing.T) {
	db, mock := redismock.NewClientMock()
	limiter := testLimiter(db, testConfig())

	mock.ExpectEvalSha(slidingWindowScript.Hash(), []string{"flightbook:ratelimit:1.2.3.4:booking_critical"},
		fixedNow.Add(-time.Minute).UnixMilli(), fixedNow.UnixMilli(), 5, int64(60000), "m1").
		SetVal([]interface{}{int64(1), int64(4)})

	result, err := limiter.IsAllowed(context.Background(), "1.2.3.4", RateLimitTypeBookingCritical)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 5, result.Limit)
	assert.Equal(t, 4, result.Remaining)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_Exceeded(t *testing.T) {
	db, mock := redismock.NewClientMock()
	limiter := testLimiter(db, testConfig())

	mock.ExpectEvalSha(slidingWindowScript.Hash(), []string{"flightbook:ratelimit:1.2.3.4:public"},
		fixedNow.Add(-time.Minute).UnixMilli(), fixedNow.UnixMilli(), 200, int64(60000), "m1").
		SetVal([]interface{}{int64(0), int64(0)})

	result, err := limiter.IsAllowed(context.Background(), "1.2.3.4", RateLimitTypePublic)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
}

func TestRateLimiter_DisabledAndWhitelisted(t *testing.T) {
	db, mock := redismock.NewClientMock()

	cfg := testConfig()
	limiter := testLimiter(db, cfg)
	result, err := limiter.IsAllowed(context.Background(), "10.0.0.1", RateLimitTypeBooking)
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	cfg.Enabled = false
	result, err = limiter.IsAllowed(context.Background(), "1.2.3.4", RateLimitTypeBooking)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 50, result.Remaining)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRateLimitType(t *testing.T) {
	cases := []struct {
		method string
		path   string
		want   RateLimitType
	}{
		{http.MethodGet, "/health", RateLimitTypeHealth},
		{http.MethodPost, "/api/v1/admin/management/planes", RateLimitTypeAdmin},
		{http.MethodPost, "/api/v1/bookings", RateLimitTypeBookingCritical},
		{http.MethodGet, "/api/v1/bookings/:id", RateLimitTypeBooking},
		{http.MethodGet, "/api/v1/flights/schedules/:scheduleId/seats", RateLimitTypeBooking},
		{http.MethodGet, "/api/v1/flights/routes", RateLimitTypePublic},
		{http.MethodGet, "/swagger/*any", RateLimitTypeDefault},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, getRateLimitType(tc.method, tc.path), tc.path)
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(limiter *RateLimiter) *gin.Engine {
		r := gin.New()
		r.Use(Middleware(limiter, logger.NewNop()))
		r.POST("/api/v1/bookings", func(c *gin.Context) { c.Status(http.StatusCreated) })
		return r
	}

	t.Run("rejects over limit", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectEvalSha(slidingWindowScript.Hash(), []string{"flightbook:ratelimit:1.2.3.4:booking_critical"},
			fixedNow.Add(-time.Minute).UnixMilli(), fixedNow.UnixMilli(), 5, int64(60000), "m1").
			SetVal([]interface{}{int64(0), int64(0)})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.9")
		w := httptest.NewRecorder()
		newRouter(testLimiter(db, testConfig())).ServeHTTP(w, req)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "60", w.Header().Get("Retry-After"))
	})

	t.Run("fails open when redis errors", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectEvalSha(slidingWindowScript.Hash(), []string{"flightbook:ratelimit:1.2.3.4:booking_critical"},
			fixedNow.Add(-time.Minute).UnixMilli(), fixedNow.UnixMilli(), 5, int64(60000), "m1").
			SetErr(errors.New("connection refused"))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		req.Header.Set("X-Real-IP", "1.2.3.4")
		w := httptest.NewRecorder()
		newRouter(testLimiter(db, testConfig())).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})
}
