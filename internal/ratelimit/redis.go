package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "emicalc:ratelimit:"

// Redis is a fixed-window counter shared by every server instance that
// points at the same Redis.
type Redis struct {
	client redis.UniversalClient
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

// NewRedis creates a limiter allowing limit requests per window per client.
// A non-positive window becomes DefaultWindow.
func NewRedis(client redis.UniversalClient, limit int, window time.Duration) *Redis {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Redis{
		client: client,
		limit:  limit,
		window: window,
		prefix: defaultKeyPrefix,
		now:    time.Now,
	}
}

// Dial connects to addr and verifies the connection with PING.
func Dial(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return client, nil
}

func (r *Redis) windowKey(key string) string {
	slot := r.now().UnixNano() / int64(r.window)
	return r.prefix + key + ":" + strconv.FormatInt(slot, 10)
}

// Allow increments the client's counter for the current window.
func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	k := r.windowKey(key)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit counter: %w", err)
	}
	return incr.Val() <= int64(r.limit), nil
}
