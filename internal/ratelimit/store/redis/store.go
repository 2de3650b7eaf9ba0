package redis

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"lifedash/internal/ratelimit/models"
)

const keyPrefix = "ratelimit:"

// Store keeps one sorted set per key, scored by request time in
// microseconds, so replicas share the window.
type Store struct {
	client *redis.Client
	now    func() time.Time
}

func New(client *redis.Client) *Store {
	return &Store{client: client, now: time.Now}
}

// allowScript prunes, counts and conditionally records in one round trip so
// concurrent callers cannot overshoot the limit.
var allowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local oldestScore = now
if oldest[2] then oldestScore = tonumber(oldest[2]) end
if count >= limit then
  return {0, count, oldestScore}
end
redis.call('ZADD', key, now, member)
redis.call('PEXPIRE', key, math.ceil(window / 1000))
return {1, count + 1, oldestScore}
`)

func (s *Store) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error) {
	now := s.now()
	nowMicros := now.UnixMicro()
	windowMicros := window.Microseconds()

	raw, err := allowScript.Run(ctx, s.client, []string{keyPrefix + key},
		nowMicros, windowMicros, limit, strconv.FormatInt(nowMicros, 10)+"-"+uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit check: %w", err)
	}

	allowed, count, oldest := raw[0] == 1, int(raw[1]), raw[2]
	resetAt := time.UnixMicro(oldest).Add(window)
	res := &models.Result{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: max(limit-count, 0),
		ResetAt:   resetAt,
	}
	if !allowed {
		res.RetryAfter = int(math.Ceil(resetAt.Sub(now).Seconds()))
	}
	return res, nil
}

func (s *Store) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("reset rate limit: %w", err)
	}
	return nil
}
