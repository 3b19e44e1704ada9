// Package cache keeps computed forecasts in Redis so the dashboard widgets
// that share a horizon do not each recompute it. Invalidation is explicit:
// every write to the underlying data drops the whole forecast keyspace and
// the next read recomputes from fresh snapshots.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/idevisu/fincast/internal/models"
)

// ForecastCache is a Redis-backed cache of forecast results
type ForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and verifies the connection
func New(addr string, ttl time.Duration) (*ForecastCache, error) {
	opt, err := redis.ParseURL(fmt.Sprintf("redis://%s", addr))
	if err != nil {
		// Fallback to simple connection
		opt = &redis.Options{Addr: addr}
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &ForecastCache{client: client, ttl: ttl}, nil
}

// Key builds the cache key for one forecast query shape. The anchor month
// is part of the key so a horizon starting in the past never collides with
// the forward-looking one.
func Key(direction models.Direction, months int, view string, anchor models.MonthKey) string {
	d := string(direction)
	if d == "" {
		d = "all"
	}
	return fmt.Sprintf("forecast:%s:%s:%d:%s", anchor, d, months, view)
}

// Get returns the cached buckets for key, or found=false on a miss or any
// Redis/decoding problem.
func (c *ForecastCache) Get(ctx context.Context, key string) ([]models.MonthBucket, bool) {
	cached, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}
	var buckets []models.MonthBucket
	if err := json.Unmarshal([]byte(cached), &buckets); err != nil {
		return nil, false
	}
	return buckets, true
}

// Set stores buckets under key with the configured TTL
func (c *ForecastCache) Set(ctx context.Context, key string, buckets []models.MonthBucket) error {
	data, err := json.Marshal(buckets)
	if err != nil {
		return fmt.Errorf("failed to marshal forecast: %w", err)
	}
	if err := c.client.SetEx(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache forecast: %w", err)
	}
	return nil
}

// Invalidate drops every cached forecast
func (c *ForecastCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "forecast:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to invalidate forecast cache: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan forecast cache: %w", err)
	}
	return nil
}

// Close releases the Redis connection
func (c *ForecastCache) Close() error {
	return c.client.Close()
}
