// Package cache provides Redis-backed read caches.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	appbilling "github.com/schoolms/backend/internal/application/billing"
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisClient creates and pings a Redis client
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisOutstandingCache caches per-student outstanding balance summaries in
// Redis, suitable for distributed deployments where multiple instances
// serve balance lookups.
type RedisOutstandingCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisOutstandingCache creates a cache with an existing Redis client
func NewRedisOutstandingCache(client *redis.Client, ttl time.Duration) *RedisOutstandingCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisOutstandingCache{
		client:    client,
		keyPrefix: "billing:outstanding:",
		ttl:       ttl,
	}
}

func (c *RedisOutstandingCache) key(studentID uuid.UUID) string {
	return c.keyPrefix + studentID.String()
}

// Get returns the cached summary, or nil on a miss
func (c *RedisOutstandingCache) Get(ctx context.Context, studentID uuid.UUID) (*appbilling.OutstandingSummary, error) {
	data, err := c.client.Get(ctx, c.key(studentID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read outstanding summary: %w", err)
	}

	var summary appbilling.OutstandingSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to decode outstanding summary: %w", err)
	}
	return &summary, nil
}

// Set stores the summary with the configured TTL
func (c *RedisOutstandingCache) Set(ctx context.Context, summary *appbilling.OutstandingSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode outstanding summary: %w", err)
	}
	if err := c.client.Set(ctx, c.key(summary.StudentID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write outstanding summary: %w", err)
	}
	return nil
}

// Invalidate drops the cached summary for a student
func (c *RedisOutstandingCache) Invalidate(ctx context.Context, studentID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(studentID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate outstanding summary: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client
func (c *RedisOutstandingCache) Close() error {
	return c.client.Close()
}

var _ appbilling.OutstandingCache = (*RedisOutstandingCache)(nil)
