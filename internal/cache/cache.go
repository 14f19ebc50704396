// Package cache holds the per-user post list response cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shortpost/shortpost/internal/models"
)

// PostCache stores the most recently fetched post list per user email.
// Updates are single atomic writes with last-writer-wins semantics;
// concurrent fills of the same key simply overwrite each other.
type PostCache interface {
	// Get returns the cached list for email. found is false on a miss or
	// when the cached list is empty.
	Get(ctx context.Context, email string) (posts []models.Post, found bool, err error)
	Set(ctx context.Context, email string, posts []models.Post) error
	Invalidate(ctx context.Context, email string) error
}

// RedisCache implements PostCache on Redis. Entries carry a TTL so stale
// lists age out server-side without a sweeper.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, addr string, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: ping: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

// NewRedisWithClient wraps an existing client. Used by tests.
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func key(email string) string {
	return "posts:" + email
}

func (c *RedisCache) Get(ctx context.Context, email string) ([]models.Post, bool, error) {
	raw, err := c.client.Get(ctx, key(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get: %w", err)
	}

	var posts []models.Post
	if err := json.Unmarshal(raw, &posts); err != nil {
		return nil, false, fmt.Errorf("cache: decode: %w", err)
	}
	if len(posts) == 0 {
		return nil, false, nil
	}
	return posts, true, nil
}

func (c *RedisCache) Set(ctx context.Context, email string, posts []models.Post) error {
	raw, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("cache: encode: %w", err)
	}
	if err := c.client.Set(ctx, key(email), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, email string) error {
	if err := c.client.Del(ctx, key(email)).Err(); err != nil {
		return fmt.Errorf("cache: invalidate: %w", err)
	}
	return nil
}

var _ PostCache = (*RedisCache)(nil)
