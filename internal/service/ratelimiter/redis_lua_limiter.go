// Package ratelimiter provides token-bucket limiters keyed by caller, backed
// by a Redis Lua script or an in-process fallback.
package ratelimiter

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter reports whether key may spend cost tokens now.
type Limiter interface {
	Allow(ctx context.Context, key string, cost int64) (allowed bool, retryAfter time.Duration, err error)
}

// BucketConfig describes one token bucket. A zero config disables limiting.
type BucketConfig struct {
	Capacity   int64
	RefillRate float64
}

// NewBucketConfigFromPerMinute returns a bucket that holds perMinute tokens and refills them over a minute.
func NewBucketConfigFromPerMinute(perMinute int) BucketConfig {
	if perMinute <= 0 {
		return BucketConfig{}
	}
	return BucketConfig{
		Capacity:   int64(perMinute),
		RefillRate: float64(perMinute) / 60.0,
	}
}

// NewBucketConfigFromPerHour is the hourly variant of NewBucketConfigFromPerMinute.
func NewBucketConfigFromPerHour(perHour int) BucketConfig {
	if perHour <= 0 {
		return BucketConfig{}
	}
	return BucketConfig{
		Capacity:   int64(perHour),
		RefillRate: float64(perHour) / 3600.0,
	}
}

func (c BucketConfig) disabled() bool { return c.Capacity <= 0 || c.RefillRate <= 0 }

// RedisLuaLimiter keeps one bucket per key in a Redis hash and updates it atomically in Lua.
type RedisLuaLimiter struct {
	redis  redis.Scripter
	prefix string
	cfg    BucketConfig
	script *redis.Script
	now    func() time.Time
}

// NewRedisLuaLimiter returns nil when rdb is nil; a nil limiter allows everything.
func NewRedisLuaLimiter(rdb redis.Scripter, prefix string, cfg BucketConfig) *RedisLuaLimiter {
	if rdb == nil {
		return nil
	}
	return &RedisLuaLimiter{
		redis:  rdb,
		prefix: prefix,
		cfg:    cfg,
		script: redis.NewScript(luaTokenBucketScript),
		now:    time.Now,
	}
}

const luaTokenBucketScript = `
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local refill_rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local cost = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])

local tokens = capacity
local last_refill = now

local data = redis.call("HMGET", key, "tokens", "last_refill")
if data[1] ~= false and data[1] ~= nil then
  tokens = tonumber(data[1])
end
if data[2] ~= false and data[2] ~= nil then
  last_refill = tonumber(data[2])
end

local delta = now - last_refill
if delta < 0 then
  delta = 0
end

tokens = math.min(capacity, tokens + delta * refill_rate)

local allowed = 0
local retry_after = 0

if tokens >= cost then
  tokens = tokens - cost
  allowed = 1
else
  retry_after = (cost - tokens) / refill_rate
end

redis.call("HSET", key, "tokens", tostring(tokens), "last_refill", tostring(now))
redis.call("EXPIRE", key, ttl)

return { allowed, tostring(retry_after) }
`

// Allow fails open when Redis is unavailable and reports the error to the caller.
func (l *RedisLuaLimiter) Allow(ctx context.Context, key string, cost int64) (bool, time.Duration, error) {
	if l == nil || l.redis == nil || l.cfg.disabled() {
		return true, 0, nil
	}
	if cost <= 0 {
		cost = 1
	}

	nowSec := float64(l.now().UnixNano()) / 1e9
	ttl := int64(math.Ceil(float64(l.cfg.Capacity)/l.cfg.RefillRate)) + 1

	redisKey := "rate:" + l.prefix + ":" + key
	res, err := l.script.Run(ctx, l.redis, []string{redisKey}, l.cfg.Capacity, l.cfg.RefillRate, nowSec, cost, ttl).Result()
	if err != nil {
		slog.Error("redis rate limiter script error", slog.String("key", redisKey), slog.Any("error", err))
		return true, 0, err
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) < 2 {
		slog.Error("redis rate limiter unexpected script result", slog.String("key", redisKey), slog.Any("result", res))
		return true, 0, nil
	}
	allowed := toInt64(vals[0]) == 1
	retryAfter := time.Duration(toFloat64(vals[1]) * float64(time.Second))
	return allowed, retryAfter, nil
}

// MemoryLimiter keeps a golang.org/x/time/rate limiter per key in process.
type MemoryLimiter struct {
	mu       sync.Mutex
	cfg      BucketConfig
	limiters map[string]*rate.Limiter
	now      func() time.Time
}

// NewMemoryLimiter constructs a MemoryLimiter with cfg applied to every key.
func NewMemoryLimiter(cfg BucketConfig) *MemoryLimiter {
	return &MemoryLimiter{cfg: cfg, limiters: map[string]*rate.Limiter{}, now: time.Now}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, cost int64) (bool, time.Duration, error) {
	if l.cfg.disabled() {
		return true, 0, nil
	}
	if cost <= 0 {
		cost = 1
	}
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(l.cfg.RefillRate), int(l.cfg.Capacity))
		l.limiters[key] = lim
	}
	l.mu.Unlock()

	now := l.now()
	r := lim.ReserveN(now, int(cost))
	if !r.OK() {
		return false, 0, nil
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, d, nil
	}
	return true, 0, nil
}

func toInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	default:
		return 0
	}
}

func toFloat64(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case int:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
