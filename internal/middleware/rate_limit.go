package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// LoginRateLimit allows 10 login attempts per client per 15 minutes.
var LoginRateLimit = RateLimitConfig{Window: 15 * time.Minute, Limit: 10, KeyPrefix: "rate_limit:login"}

// ImportRateLimit allows 20 bulk imports per user per hour.
var ImportRateLimit = RateLimitConfig{Window: time.Hour, Limit: 20, KeyPrefix: "rate_limit:import"}

// Limiter decides whether one more request for key fits in the window.
// Returns: allowed, remaining requests, reset time, error
type Limiter interface {
	IsAllowed(ctx context.Context, key string) (bool, int, time.Time, error)
	Config() RateLimitConfig
}

// KeyFunc extracts the rate limit key of a request. An empty key skips the check.
type KeyFunc func(c *gin.Context) string

// ByClientIP keys requests by client address.
func ByClientIP(c *gin.Context) string {
	return c.ClientIP()
}

// ByUser keys requests by the authenticated user.
func ByUser(c *gin.Context) string {
	userID, exists := c.Get("user_id")
	if !exists {
		return ""
	}
	return fmt.Sprintf("%v", userID)
}

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
	}
}

func (rl *RateLimiter) Config() RateLimitConfig { return rl.config }

// IsAllowed counts the request in the current fixed window.
func (rl *RateLimiter) IsAllowed(ctx context.Context, key string) (bool, int, time.Time, error) {
	now := time.Now()
	windowStart := now.Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	// Use Redis pipeline for atomic operations
	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	resetTime := windowStart.Add(rl.config.Window)
	return count <= rl.config.Limit, remaining, resetTime, nil
}

// MemoryLimiter is an in-process token bucket per key. It refills one token
// every Window/Limit and holds at most Limit tokens.
type MemoryLimiter struct {
	config   RateLimitConfig
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewMemoryLimiter(config RateLimitConfig) *MemoryLimiter {
	return &MemoryLimiter{config: config, limiters: make(map[string]*rate.Limiter)}
}

func (m *MemoryLimiter) Config() RateLimitConfig { return m.config }

func (m *MemoryLimiter) IsAllowed(_ context.Context, key string) (bool, int, time.Time, error) {
	interval := m.config.Window / time.Duration(m.config.Limit)

	m.mu.Lock()
	lim, ok := m.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(interval), m.config.Limit)
		m.limiters[key] = lim
	}
	m.mu.Unlock()

	now := time.Now()
	allowed := lim.AllowN(now, 1)
	tokens := lim.TokensAt(now)
	remaining := int(tokens)
	if remaining < 0 {
		remaining = 0
	}
	reset := now
	if tokens < 1 {
		reset = now.Add(time.Duration((1 - tokens) * float64(interval)))
	}
	return allowed, remaining, reset, nil
}

// FallbackLimiter uses primary and switches to fallback for any request
// whose primary check fails.
type FallbackLimiter struct {
	primary  Limiter
	fallback Limiter
}

func NewFallbackLimiter(primary, fallback Limiter) *FallbackLimiter {
	return &FallbackLimiter{primary: primary, fallback: fallback}
}

func (f *FallbackLimiter) Config() RateLimitConfig { return f.primary.Config() }

func (f *FallbackLimiter) IsAllowed(ctx context.Context, key string) (bool, int, time.Time, error) {
	allowed, remaining, reset, err := f.primary.IsAllowed(ctx, key)
	if err == nil {
		return allowed, remaining, reset, nil
	}
	log.WithError(err).Warn("rate limit store unavailable, using in-memory limiter")
	return f.fallback.IsAllowed(ctx, key)
}

// NewLimiter returns a Redis-backed limiter with an in-memory fallback, or
// just the in-memory limiter when no Redis client is available.
func NewLimiter(redisClient *redis.Client, config RateLimitConfig) Limiter {
	memory := NewMemoryLimiter(config)
	if redisClient == nil {
		return memory
	}
	return NewFallbackLimiter(NewRateLimiter(redisClient, config), memory)
}

// RateLimit returns a Gin middleware that enforces the limiter per key.
func RateLimit(l Limiter, keyFunc KeyFunc) gin.HandlerFunc {
	cfg := l.Config()
	return func(c *gin.Context) {
		key := keyFunc(c)
		if key == "" {
			c.Next()
			return
		}

		allowed, remaining, resetTime, err := l.IsAllowed(c.Request.Context(), key)
		if err != nil {
			// Log error but don't fail the request
			log.WithError(err).Warn("rate limit check failed")
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		// Set rate limit headers
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"message":     fmt.Sprintf("You have exceeded the rate limit of %d requests per %v", cfg.Limit, cfg.Window),
				"retry_after": int(time.Until(resetTime).Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
