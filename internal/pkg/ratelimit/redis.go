// internal/pkg/ratelimit/redis.go
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/pkg/clock"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

// fixedWindow increments the counter and starts the window on the first hit.
// A key left without expiry is repaired rather than counted forever.
var fixedWindow = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if count == 1 or ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisLimiter shares windows between instances through Redis
type RedisLimiter struct {
	client redis.UniversalClient
	clock  clock.Clock
	limit  int
	window time.Duration
}

func NewRedisLimiter(client redis.UniversalClient, clk clock.Clock, limit int, length time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		clock:  clk,
		limit:  limit,
		window: length,
	}
}

// Allow implements Limiter
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	res, err := fixedWindow.Run(ctx, l.client, []string{key}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, errs.Dependency(err, "rate limit")
	}

	count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	return decide(count, l.limit, l.clock.Now().Add(ttl)), nil
}
