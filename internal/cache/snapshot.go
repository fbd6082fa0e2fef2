package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"job-board-go/internal/models"
)

// ErrMiss is returned by Get when no snapshot is stored.
var ErrMiss = errors.New("snapshot not cached")

// SnapshotCache keeps the normalized job collection in Redis so restarts
// skip the slow upstream fetch.
type SnapshotCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

func NewSnapshotCache(client *redis.Client, key string, ttl time.Duration) *SnapshotCache {
	if key == "" {
		key = "jobboard:jobs"
	}
	return &SnapshotCache{client: client, key: key, ttl: ttl}
}

func (c *SnapshotCache) Get(ctx context.Context) ([]models.Job, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", c.key, err)
	}

	var jobs []models.Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return jobs, nil
}

func (c *SnapshotCache) Set(ctx context.Context, jobs []models.Job) error {
	data, err := json.Marshal(jobs)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", c.key, err)
	}
	return nil
}

func (c *SnapshotCache) Close() error {
	return c.client.Close()
}
