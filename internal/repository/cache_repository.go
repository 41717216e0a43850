package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/okulapps/etut-api/pkg/errors"
)

const reportCachePrefix = "reports:"

// ReportCacheKey builds a namespaced cache key from report parameters.
func ReportCacheKey(parts ...string) string {
	return reportCachePrefix + strings.Join(parts, ":")
}

// ReportCache stores rendered report payloads in Redis. A nil client degrades
// to a pass-through: every Get misses and every Set is a no-op, so the cache
// stays optional.
type ReportCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewReportCache constructs the cache wrapper.
func NewReportCache(client *redis.Client, logger *zap.Logger) *ReportCache {
	return &ReportCache{client: client, logger: logger}
}

// Get retrieves and unmarshals the cached value into dest.
func (c *ReportCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return appErrors.ErrCacheMiss
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return appErrors.ErrCacheMiss
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal cached report %s: %w", key, err)
	}
	return nil
}

// Set marshals value and stores it under key with the given TTL.
func (c *ReportCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cached report %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Invalidate drops every cached report. Called after any session, roster or
// slot mutation since every report derives from the same dataset.
func (c *ReportCache) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}

	iter := c.client.Scan(ctx, 0, reportCachePrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if err := c.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis delete %s: %w", key, err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan report keys: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (c *ReportCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
