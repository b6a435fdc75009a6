package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/seesaw/mfses/pkg/logger"
	"github.com/seesaw/mfses/pkg/redis"
)

// Payload kinds cached per ticker. Each kind carries its own TTL.
const (
	KindFundamentals = "fundamentals"
	KindDividends    = "dividends"
	KindDetails      = "details"
	KindBars         = "bars"
)

// ResponseCache is the cache-aside layer in front of Polygon. An
// expired entry behaves exactly like a missing one.
type ResponseCache interface {
	Get(ctx context.Context, kind, ticker string, dest interface{}) (bool, error)
	Set(ctx context.Context, kind, ticker string, value interface{}, ttl time.Duration) error
	CleanExpired() int
}

// MemoryCache is the in-process ResponseCache for single-node
// deployments.
// SSOT: payload caching for the collector lives only here.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	logger  *logger.Logger
	now     func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache(log *logger.Logger) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		logger:  log,
		now:     time.Now,
	}
}

func cacheKey(kind, ticker string) string {
	return fmt.Sprintf("%s:%s", kind, ticker)
}

// Get returns true and fills dest when a live entry exists.
func (c *MemoryCache) Get(_ context.Context, kind, ticker string, dest interface{}) (bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[cacheKey(kind, ticker)]
	c.mu.RUnlock()

	// An entry expiring exactly now is already gone.
	if !ok || !c.now().Before(entry.expiresAt) {
		return false, nil
	}

	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}
	return true, nil
}

// Set stores value under kind:ticker for ttl.
func (c *MemoryCache) Set(_ context.Context, kind, ticker string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	c.mu.Lock()
	c.entries[cacheKey(kind, ticker)] = memoryEntry{
		data:      data,
		expiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
	return nil
}

// CleanExpired removes lapsed entries and returns how many were
// dropped. Wired to the cache maintenance job.
func (c *MemoryCache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	count := 0
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
			count++
		}
	}

	if count > 0 {
		c.logger.WithField("count", count).Info("Cleaned expired cache entries")
	}
	return count
}

// Len returns the number of entries, live or expired.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// RedisCache is the shared ResponseCache for multi-process
// deployments. Redis expires keys itself, so CleanExpired is a no-op.
type RedisCache struct {
	cache *redis.Cache
}

// NewRedisCache wraps the shared Redis payload cache.
func NewRedisCache(cache *redis.Cache) *RedisCache {
	return &RedisCache{cache: cache}
}

func (c *RedisCache) Get(ctx context.Context, kind, ticker string, dest interface{}) (bool, error) {
	return c.cache.Get(ctx, redis.PayloadKey(kind, ticker), dest)
}

func (c *RedisCache) Set(ctx context.Context, kind, ticker string, value interface{}, ttl time.Duration) error {
	return c.cache.Set(ctx, redis.PayloadKey(kind, ticker), value, ttl)
}

func (c *RedisCache) CleanExpired() int { return 0 }
