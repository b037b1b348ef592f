package block

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"creatures-server/internal/shared/redis"
)

// Fetcher is the source a cache wraps.
type Fetcher interface {
	FetchByHeight(ctx context.Context, height int64) (*Data, error)
	FetchByHash(ctx context.Context, hash string) (*Data, error)
}

// CachedClient wraps a Fetcher with a Redis-backed cache, falling back
// to an in-memory map when Redis is unavailable. Confirmations go stale
// as the chain grows, so entries expire on a short TTL.
type CachedClient struct {
	fetcher Fetcher
	redis   *redis.Client
	ttl     time.Duration
	logger  *slog.Logger

	mu    sync.RWMutex
	local map[string]localEntry
}

type localEntry struct {
	data      *Data
	expiresAt time.Time
}

func NewCachedClient(fetcher Fetcher, redisClient *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedClient {
	logger.Debug("Initializing cached block client",
		"redis_enabled", redisClient != nil,
		"cache_ttl", ttl,
	)

	return &CachedClient{
		fetcher: fetcher,
		redis:   redisClient,
		ttl:     ttl,
		logger:  logger,
		local:   make(map[string]localEntry),
	}
}

func (c *CachedClient) FetchByHeight(ctx context.Context, height int64) (*Data, error) {
	key := heightKey(height)

	if data := c.lookup(ctx, key); data != nil {
		return data, nil
	}

	data, err := c.fetcher.FetchByHeight(ctx, height)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, data)
	c.store(ctx, hashKey(data.Hash), data)
	return data, nil
}

func (c *CachedClient) FetchByHash(ctx context.Context, hash string) (*Data, error) {
	key := hashKey(hash)

	if data := c.lookup(ctx, key); data != nil {
		return data, nil
	}

	data, err := c.fetcher.FetchByHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, data)
	c.store(ctx, heightKey(data.Height), data)
	return data, nil
}

func (c *CachedClient) lookup(ctx context.Context, key string) *Data {
	logger := c.logger.With("component", "block_cache", "key", key)

	if c.redis != nil {
		raw, err := c.redis.Get(ctx, key).Bytes()
		if err == nil {
			var data Data
			if err := json.Unmarshal(raw, &data); err == nil {
				logger.Debug("Block cache hit (redis)")
				return &data
			}
			logger.Warn("Failed to decode cached block, evicting", "error", err)
			c.redis.Del(ctx, key)
		}
		return nil
	}

	c.mu.RLock()
	entry, ok := c.local[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil
	}

	logger.Debug("Block cache hit (memory)")
	return entry.data
}

func (c *CachedClient) store(ctx context.Context, key string, data *Data) {
	logger := c.logger.With("component", "block_cache", "key", key)

	if c.redis != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			logger.Warn("Failed to encode block for cache", "error", err)
			return
		}
		if err := c.redis.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			logger.Warn("Failed to write block to redis cache", "error", err)
		}
		return
	}

	c.mu.Lock()
	c.local[key] = localEntry{data: data, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func heightKey(height int64) string {
	return "block:height:" + strconv.FormatInt(height, 10)
}

func hashKey(hash string) string {
	return "block:hash:" + hash
}
