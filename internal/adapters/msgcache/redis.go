package msgcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dotfriends/asca/internal/core"
)

// RedisCache stores recent messages in per-author Redis lists so that burst
// detection works across multiple service instances.
type RedisCache struct {
	client   *redis.Client
	capacity int64
	ttl      time.Duration
	logger   *zap.Logger
}

// NewRedisCache creates a Redis-backed message cache.
func NewRedisCache(addr, password string, db, capacity int, ttl time.Duration, logger *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if capacity <= 0 {
		capacity = 1000
	}
	return &RedisCache{
		client:   client,
		capacity: int64(capacity),
		ttl:      ttl,
		logger:   logger,
	}, nil
}

func cacheKey(tenantID, authorID string) string {
	return fmt.Sprintf("asca:recent:%s:%s", tenantID, authorID)
}

// Add pushes the message onto the author's list, trimming it to capacity and
// refreshing the expiry.
func (c *RedisCache) Add(ctx context.Context, msg *core.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	key := cacheKey(msg.TenantID, msg.Author.ID)
	pipe := c.client.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, c.capacity-1)
	if c.ttl > 0 {
		pipe.Expire(ctx, key, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache message: %w", err)
	}
	return nil
}

// Recent returns the author's cached messages, newest first.
func (c *RedisCache) Recent(ctx context.Context, tenantID, authorID string) ([]*core.Message, error) {
	raw, err := c.client.LRange(ctx, cacheKey(tenantID, authorID), 0, c.capacity-1).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached messages: %w", err)
	}

	msgs := make([]*core.Message, 0, len(raw))
	for _, entry := range raw {
		var msg core.Message
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			c.logger.Warn("Dropping undecodable cached message", zap.Error(err))
			continue
		}
		msgs = append(msgs, &msg)
	}
	return msgs, nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
