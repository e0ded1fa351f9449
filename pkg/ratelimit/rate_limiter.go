package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Category selects the limit bucket a route counts against. Booking
// creation and gate scanning get their own buckets because both spike hard
// (sale opening, doors opening) and must not starve normal browsing.
type Category string

const (
	CategoryDefault Category = "default"
	CategoryAuth    Category = "auth"
	CategoryBooking Category = "booking"
	CategoryScan    Category = "scan"
	CategoryAdmin   Category = "admin"
)

type Config struct {
	Enabled         bool
	WindowDuration  time.Duration
	DefaultRequests int
	AuthRequests    int
	BookingRequests int
	ScanRequests    int
	AdminRequests   int
	WhitelistedIPs  []string
}

// Result is the outcome of a limit check, also surfaced as response headers.
type Result struct {
	Allowed   bool  `json:"allowed"`
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}

// RateLimiter is a redis-backed sliding window limiter. The window
// bookkeeping runs in a Lua script so the trim/count/add sequence is atomic
// across instances.
type RateLimiter struct {
	client *redis.Client
	config *Config
}

func NewRateLimiter(client *redis.Client, config *Config) *RateLimiter {
	return &RateLimiter{client: client, config: config}
}

func (r *RateLimiter) limitFor(category Category) int {
	switch category {
	case CategoryAuth:
		return r.config.AuthRequests
	case CategoryBooking:
		return r.config.BookingRequests
	case CategoryScan:
		return r.config.ScanRequests
	case CategoryAdmin:
		return r.config.AdminRequests
	default:
		return r.config.DefaultRequests
	}
}

func (r *RateLimiter) isWhitelisted(clientIP string) bool {
	for _, ip := range r.config.WhitelistedIPs {
		if ip == clientIP {
			return true
		}
	}
	return false
}

func (r *RateLimiter) IsAllowed(ctx context.Context, clientIP string, category Category) (*Result, error) {
	limit := r.limitFor(category)

	if !r.config.Enabled || r.isWhitelisted(clientIP) {
		return &Result{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit,
			ResetTime: time.Now().Add(r.config.WindowDuration).Unix(),
		}, nil
	}

	key := fmt.Sprintf("srsevents:ratelimit:%s:%s", clientIP, category)
	return r.checkLimit(ctx, key, limit)
}

const slidingWindowScript = `
local key = KEYS[1]
local window_start = tonumber(ARGV[1])
local now = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local window_seconds = tonumber(ARGV[4])

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

local current_count = redis.call('ZCARD', key)
if current_count >= limit then
	redis.call('EXPIRE', key, window_seconds)
	return {0, current_count}
end

redis.call('ZADD', key, now, now)
redis.call('EXPIRE', key, window_seconds)
return {1, current_count + 1}
`

func (r *RateLimiter) checkLimit(ctx context.Context, key string, limit int) (*Result, error) {
	now := time.Now()
	windowStart := now.Add(-r.config.WindowDuration)

	raw, err := r.client.Eval(ctx, slidingWindowScript, []string{key},
		windowStart.UnixNano(),
		now.UnixNano(),
		limit,
		int(r.config.WindowDuration.Seconds()),
	).Result()
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return nil, fmt.Errorf("unexpected rate limit script result: %v", raw)
	}
	allowed := values[0].(int64) == 1
	count := values[1].(int64)

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return &Result{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: remaining,
		ResetTime: now.Add(r.config.WindowDuration).Unix(),
	}, nil
}
