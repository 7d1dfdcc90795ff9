// internal/pkg/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/clock"
)

const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Decision is the outcome of one Allow call
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter counts requests per key in fixed windows
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// New builds the limiter selected by RATE_LIMIT_BACKEND
func New(cfg *config.Config, client redis.UniversalClient, clk clock.Clock) (Limiter, error) {
	limit := cfg.Security.RateLimitPerMinute
	window := cfg.Security.RateLimitWindow

	switch cfg.Security.RateLimitBackend {
	case BackendRedis, "":
		if client == nil {
			return nil, fmt.Errorf("redis rate limiter requires a redis client")
		}
		return NewRedisLimiter(client, clk, limit, window), nil
	case BackendMemory:
		return NewMemoryLimiter(clk, limit, window), nil
	default:
		return nil, fmt.Errorf("unknown rate limit backend %q", cfg.Security.RateLimitBackend)
	}
}

func decide(count, limit int, resetAt time.Time) Decision {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}
