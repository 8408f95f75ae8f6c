package seatlock

import (
	"context"
	"fmt"
	"time"

	"flightbook/internal/shared/constants"

	"github.com/redis/go-redis/v9"
)

// Lua script for create-if-absent with a per-schedule index set
const luaAcquireSeatLock = `
-- KEYS[1] = lock record key
-- KEYS[2] = schedule index key
-- ARGV[1] = user_id
-- ARGV[2] = ttl_seconds
-- ARGV[3] = lock key (index member)

local ttl = tonumber(ARGV[2])

if not redis.call("SET", KEYS[1], ARGV[1], "NX", "EX", ttl) then
    return 0
end

redis.call("SADD", KEYS[2], ARGV[3])

-- The index must outlive every member it lists
if redis.call("TTL", KEYS[2]) < ttl then
    redis.call("EXPIRE", KEYS[2], ttl)
end

return 1
`

// Lua script for lock release
const luaReleaseSeatLock = `
-- KEYS[1] = lock record key
-- KEYS[2] = schedule index key
-- ARGV[1] = lock key (index member)

redis.call("SREM", KEYS[2], ARGV[1])
return redis.call("DEL", KEYS[1])
`

// Lua script listing live locks of a schedule, pruning index entries whose
// record already expired
const luaListSeatLocks = `
-- KEYS[1] = schedule index key
-- ARGV[1] = lock record key prefix

local members = redis.call("SMEMBERS", KEYS[1])
local live = {}

for i = 1, #members do
    if redis.call("EXISTS", ARGV[1] .. members[i]) == 1 then
        table.insert(live, members[i])
    else
        redis.call("SREM", KEYS[1], members[i])
    end
end

return live
`

var (
	acquireScript = redis.NewScript(luaAcquireSeatLock)
	releaseScript = redis.NewScript(luaReleaseSeatLock)
	listScript    = redis.NewScript(luaListSeatLocks)
)

// RedisStore keeps lock records as plain string keys holding the user id,
// with a Redis set per schedule standing in for a secondary index.
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore creates a lock store on top of an existing client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{redis: client}
}

// PreloadScripts loads the Lua scripts so the first lock call skips the
// EVAL fallback.
func (s *RedisStore) PreloadScripts(ctx context.Context) error {
	for name, script := range map[string]*redis.Script{
		"acquire": acquireScript,
		"release": releaseScript,
		"list":    listScript,
	} {
		if err := script.Load(ctx, s.redis).Err(); err != nil {
			return fmt.Errorf("failed to load %s script: %w", name, err)
		}
	}
	return nil
}

func (s *RedisStore) CreateIfAbsent(ctx context.Context, key string, scheduleID, userID int64, ttl time.Duration) (bool, error) {
	keys := []string{
		constants.BuildSeatLockKey(key),
		constants.BuildSeatLockIndexKey(scheduleID),
	}

	result, err := acquireScript.Run(ctx, s.redis, keys, userID, ttlSeconds(ttl), key).Int64()
	if err != nil {
		return false, fmt.Errorf("redis acquire %s: %w", key, err)
	}

	return result == 1, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	scheduleID, _, err := Decode(key)
	if err != nil {
		return err
	}

	keys := []string{
		constants.BuildSeatLockKey(key),
		constants.BuildSeatLockIndexKey(scheduleID),
	}

	if err := releaseScript.Run(ctx, s.redis, keys, key).Err(); err != nil {
		return fmt.Errorf("redis release %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) KeysBySchedule(ctx context.Context, scheduleID int64) ([]string, error) {
	keys := []string{constants.BuildSeatLockIndexKey(scheduleID)}

	members, err := listScript.Run(ctx, s.redis, keys, constants.SEAT_LOCK_PREFIX).StringSlice()
	if err != nil {
		return nil, fmt.Errorf("redis list locks for schedule %d: %w", scheduleID, err)
	}
	return members, nil
}

// ttlSeconds rounds up so a sub-second TTL never becomes "no expiry"
func ttlSeconds(ttl time.Duration) int64 {
	seconds := int64((ttl + time.Second - 1) / time.Second)
	if seconds < 1 {
		return 1
	}
	return seconds
}
