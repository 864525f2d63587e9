package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
)

const summaryKey = "stockdash:summary"

// SummaryCache keeps the latest summary table in Redis so API reads skip
// the file or database
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache connects to Redis and verifies the connection
func NewSummaryCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*SummaryCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &SummaryCache{client: client, ttl: ttl}, nil
}

// Get returns the cached summary; ok is false on a miss
func (c *SummaryCache) Get(ctx context.Context) ([]models.SummaryRecord, bool, error) {
	data, err := c.client.Get(ctx, summaryKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read summary cache: %w", err)
	}

	var rows []models.SummaryRecord
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, false, fmt.Errorf("failed to decode summary cache: %w", err)
	}
	return rows, true, nil
}

// Set stores the summary with the configured TTL
func (c *SummaryCache) Set(ctx context.Context, rows []models.SummaryRecord) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := c.client.Set(ctx, summaryKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write summary cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached summary after a rebuild
func (c *SummaryCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, summaryKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate summary cache: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *SummaryCache) Close() error {
	return c.client.Close()
}
