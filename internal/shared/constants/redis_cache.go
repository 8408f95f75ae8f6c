package constants

import (
	"fmt"
	"time"
)

// Redis key layout
// Pattern: flightbook:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

// Static Data (Long TTL: rarely changes)
const (
	TTL_STATIC_LONG   = 24 * time.Hour // planes
	TTL_STATIC_MEDIUM = 12 * time.Hour // flight routes
)

// Semi-Static Data (Medium TTL: changes occasionally)
const (
	TTL_SEMI_STATIC_MEDIUM = 2 * time.Hour // schedule details
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "flightbook"
)

// ================== SCHEDULES MODULE ==================

const (
	CACHE_KEY_SCHEDULE_DETAIL = CACHE_PREFIX + ":schedules:detail:id:" // + schedule-id
	CACHE_KEY_FLIGHT_ROUTES   = CACHE_PREFIX + ":flights:routes:all"
	CACHE_KEY_PLANE_DETAIL    = CACHE_PREFIX + ":planes:detail:id:" // + plane-id
)

const (
	TTL_SCHEDULE_DETAIL = TTL_SEMI_STATIC_MEDIUM // 2 hours
	TTL_FLIGHT_ROUTES   = TTL_STATIC_MEDIUM      // 12 hours
	TTL_PLANE_DETAIL    = TTL_STATIC_LONG        // 24 hours
)

// ================== SEAT LOCKS ==================

// Lock records live outside the cache namespace: they are never invalidated
// by pattern deletes and expire only through their own TTL.
const (
	SEAT_LOCK_PREFIX       = CACHE_PREFIX + ":seat_locks:"     // + scheduleId:seatNumber
	SEAT_LOCK_INDEX_PREFIX = CACHE_PREFIX + ":seat_locks_idx:" // + scheduleId
)

// ================== RATE LIMITING ==================

const (
	RATE_LIMIT_PREFIX = CACHE_PREFIX + ":ratelimit:" // + ip:type
)

// ================== CACHE INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_SCHEDULE_DETAILS = CACHE_KEY_SCHEDULE_DETAIL + "*"
	PATTERN_INVALIDATE_FLIGHTS_ALL      = CACHE_PREFIX + ":flights:*"
)

// ================== HELPER FUNCTIONS ==================

func BuildScheduleDetailKey(scheduleID int64) string {
	return CACHE_KEY_SCHEDULE_DETAIL + fmt.Sprintf("%d", scheduleID)
}

func BuildPlaneDetailKey(planeID int64) string {
	return CACHE_KEY_PLANE_DETAIL + fmt.Sprintf("%d", planeID)
}

// BuildSeatLockKey namespaces a "scheduleId:seatNumber" lock key
func BuildSeatLockKey(lockKey string) string {
	return SEAT_LOCK_PREFIX + lockKey
}

func BuildSeatLockIndexKey(scheduleID int64) string {
	return SEAT_LOCK_INDEX_PREFIX + fmt.Sprintf("%d", scheduleID)
}

func BuildRateLimitKey(clientIP, limitType string) string {
	return RATE_LIMIT_PREFIX + clientIP + ":" + limitType
}
