package ratelimit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"contact-service/internal/client"
	"contact-service/internal/util"
)

const redisKeyPrefix = "contact_rate_limit:"

// Lua script: prune, count, and conditionally record in one atomic step so two
// concurrent requests from the same key cannot both observe count = limit-1.
const slidingWindowScript = `
    local key = KEYS[1]
    local now = tonumber(ARGV[1])
    local window_start = tonumber(ARGV[2])
    local limit = tonumber(ARGV[3])

    redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

    local current_count = redis.call('ZCARD', key)

    if current_count < limit then
        redis.call('ZADD', key, now, now)
        redis.call('EXPIRE', key, math.ceil(tonumber(ARGV[4])))
        return {1, current_count + 1}
    else
        return {0, current_count}
    end
`

// RedisStore backs the sliding window with a Redis sorted set so the ledger is
// shared across gateway instances and survives restarts of any single one.
type RedisStore struct {
	client *client.RedisClient
	limit  int
	window time.Duration
}

// NewRedisStore creates a Redis-backed sliding-window store.
func NewRedisStore(client *client.RedisClient, limit int, window time.Duration) *RedisStore {
	return &RedisStore{client: client, limit: limit, window: window}
}

// Allow implements Store. When Redis is unreachable the store fails open:
// the request is admitted and the failure logged, so a store outage degrades
// spam protection rather than taking the contact form down.
func (s *RedisStore) Allow(ctx context.Context, key string, now time.Time) (bool, int, error) {
	// Millisecond scores; sub-second bursts must not collapse into one member
	nowMs := now.UnixMilli()
	windowStart := nowMs - s.window.Milliseconds()

	result, err := s.client.Eval(ctx, slidingWindowScript,
		[]string{redisKeyPrefix + key},
		nowMs, windowStart, s.limit, int(s.window.Seconds()))
	if err != nil {
		util.Warn("rate limit store unavailable, admitting request",
			zap.String("key", key),
			zap.Error(err))
		return true, 0, fmt.Errorf("sliding window eval: %w", err)
	}

	resultSlice, ok := result.([]interface{})
	if !ok || len(resultSlice) != 2 {
		return true, 0, fmt.Errorf("unexpected result format from sliding window script")
	}

	allowed := resultSlice[0].(int64) == 1
	count := int(resultSlice[1].(int64))

	util.Debug("sliding window rate limit check",
		zap.String("key", key),
		zap.Bool("allowed", allowed),
		zap.Int("count", count),
		zap.Int("limit", s.limit))

	return allowed, count, nil
}
