package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/domain"
)

type RedisCartCache struct {
	client redis.Cmdable
	closer func() error
}

func NewRedisCartCache(addr string, password string, db int) *RedisCartCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisCartCache{client: client, closer: client.Close}
}

// NewRedisCartCacheWithClient wraps an existing client, e.g. a cluster or
// a test double. Close is a no-op for wrapped clients.
func NewRedisCartCacheWithClient(client redis.Cmdable) *RedisCartCache {
	return &RedisCartCache{client: client, closer: func() error { return nil }}
}

func (c *RedisCartCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCartCache) Close() error {
	return c.closer()
}

func (c *RedisCartCache) Get(ctx context.Context, sessionID string) ([]domain.CartLine, bool, error) {
	val, err := c.client.Get(ctx, cartKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var lines []domain.CartLine
	if err := json.Unmarshal([]byte(val), &lines); err != nil {
		return nil, false, err
	}
	return lines, true, nil
}

// Set stores lines under the session key. An empty cart deletes the key so
// abandoned sessions do not linger.
func (c *RedisCartCache) Set(ctx context.Context, sessionID string, lines []domain.CartLine, ttl time.Duration) error {
	if len(lines) == 0 {
		return c.Delete(ctx, sessionID)
	}
	payload, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cartKey(sessionID), payload, ttl).Err()
}

func (c *RedisCartCache) Delete(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, cartKey(sessionID)).Err()
}
