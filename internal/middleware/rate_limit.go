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
	"golang.org/x/time/rate"

	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/metrics"
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

// Limiter decides whether one more request for key fits in the budget.
type Limiter interface {
	IsAllowed(ctx context.Context, key string) (allowed bool, remaining int, reset time.Time, err error)
	Config() RateLimitConfig
}

// RateLimiter is a fixed-window counter kept in Redis, shared by every replica.
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

// IsAllowed counts the request and reports whether it is within the limit.
func (rl *RateLimiter) IsAllowed(ctx context.Context, key string) (bool, int, time.Time, error) {
	now := time.Now()
	windowStart := now.Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

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

	return count <= rl.config.Limit, remaining, windowStart.Add(rl.config.Window), nil
}

// LocalRateLimiter is the in-process fallback used when Redis is not
// configured. Each key gets a token bucket refilled at Limit per Window.
type LocalRateLimiter struct {
	config   RateLimitConfig
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewLocalRateLimiter(config RateLimitConfig) *LocalRateLimiter {
	return &LocalRateLimiter{
		config:   config,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *LocalRateLimiter) Config() RateLimitConfig { return l.config }

func (l *LocalRateLimiter) IsAllowed(_ context.Context, key string) (bool, int, time.Time, error) {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		every := l.config.Window / time.Duration(l.config.Limit)
		lim = rate.NewLimiter(rate.Every(every), l.config.Limit)
		l.limiters[key] = lim
	}
	l.mu.Unlock()

	now := time.Now()
	allowed := lim.AllowN(now, 1)
	tokens := lim.TokensAt(now)
	remaining := int(tokens)
	if remaining < 0 {
		remaining = 0
	}

	reset := now
	if missing := float64(l.config.Limit) - tokens; missing > 0 {
		reset = now.Add(time.Duration(missing / float64(lim.Limit()) * float64(time.Second)))
	}
	return allowed, remaining, reset, nil
}

// NewWriteLimiter picks the Redis limiter when a client is available and the
// in-process one otherwise.
func NewWriteLimiter(redisClient *redis.Client, limitPerHour int) Limiter {
	cfg := RateLimitConfig{
		Window:    time.Hour,
		Limit:     limitPerHour,
		KeyPrefix: "rate_limit:recipe_writes",
	}
	if redisClient != nil {
		return NewRateLimiter(redisClient, cfg)
	}
	return NewLocalRateLimiter(cfg)
}

// RateLimit enforces the limiter per authenticated user. It must run after
// OptionalAuth so the user id is known; anonymous requests pass through.
func RateLimit(limiter Limiter) gin.HandlerFunc {
	cfg := limiter.Config()
	return func(c *gin.Context) {
		userID := UserID(c)
		if userID == 0 {
			c.Next()
			return
		}

		allowed, remaining, resetTime, err := limiter.IsAllowed(c.Request.Context(), strconv.FormatUint(uint64(userID), 10))
		if err != nil {
			// fail open
			logging.Ctx(c.Request.Context()).Warn().Err(err).Msg("rate limit check failed")
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			metrics.RateLimitRejections.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"detail":      fmt.Sprintf("Request was throttled. The limit is %d requests per %v.", cfg.Limit, cfg.Window),
				"retry_after": int(time.Until(resetTime).Seconds()),
			})
			return
		}

		c.Next()
	}
}
