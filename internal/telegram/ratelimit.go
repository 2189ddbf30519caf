// README: Per-user message rate limit backed by a Redis counter with a one-minute window.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "rate_limit:"

const rateLimitedText = "Слишком много запросов. Попробуйте через минуту."

// Limiter decides whether a user may send another message.
type Limiter interface {
	Allow(ctx context.Context, userID string) (bool, error)
}

// RedisLimiter counts messages per user in a window that restarts with every
// accepted message. A limit of zero disables it.
type RedisLimiter struct {
	client redis.Cmdable
	limit  int
	window time.Duration
}

func NewRedisLimiter(client redis.Cmdable, limit int, window time.Duration) *RedisLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{client: client, limit: limit, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}
	key := rateLimitPrefix + userID

	n, err := l.client.Get(ctx, key).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return true, fmt.Errorf("read rate limit: %w", err)
	}
	if n >= l.limit {
		return false, nil
	}

	pipe := l.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, fmt.Errorf("count message: %w", err)
	}
	return true, nil
}
