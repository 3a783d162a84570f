package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/academic-progression-api/pkg/errors"
)

const scanBatch = 100

// CacheRepository keeps JSON encoded recommendation results in Redis under a
// namespace prefix. A nil client behaves as an always-empty cache.
type CacheRepository struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewCacheRepository constructs a cache repository. Keys are stored as
// "<prefix>:<key>" when prefix is set.
func NewCacheRepository(client *redis.Client, prefix string, logger *zap.Logger) *CacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheRepository{client: client, prefix: prefix, logger: logger}
}

func (r *CacheRepository) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

// Get decodes the entry at key into dest. Missing and undecodable entries
// both report ErrCacheMiss; the latter are dropped.
func (r *CacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	if r.client == nil {
		return appErrors.ErrCacheMiss
	}
	full := r.key(key)
	raw, err := r.client.Get(ctx, full).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return appErrors.ErrCacheMiss
	case err != nil:
		return fmt.Errorf("cache get %s: %w", full, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		r.logger.Warn("dropping undecodable cache entry", zap.String("key", full), zap.Error(err))
		if delErr := r.client.Unlink(ctx, full).Err(); delErr != nil {
			r.logger.Debug("unlink undecodable cache entry", zap.String("key", full), zap.Error(delErr))
		}
		return appErrors.ErrCacheMiss
	}
	return nil
}

// Set stores value with the given TTL.
func (r *CacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	if err := r.client.Set(ctx, r.key(key), payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// DeleteByPattern unlinks every key matching the glob pattern, one scan page
// at a time.
func (r *CacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	if r.client == nil {
		return nil
	}
	match := r.key(pattern)
	var cursor uint64
	removed := 0
	for {
		keys, next, err := r.client.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			return fmt.Errorf("cache scan %s: %w", match, err)
		}
		if len(keys) > 0 {
			if err := r.client.Unlink(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache unlink %s: %w", match, err)
			}
			removed += len(keys)
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	if removed > 0 {
		r.logger.Debug("cache entries invalidated", zap.String("pattern", match), zap.Int("count", removed))
	}
	return nil
}

// Close releases the Redis connection if present.
func (r *CacheRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
