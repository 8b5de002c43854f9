package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/raiyan37/Centinel/internal/cache"
	"github.com/raiyan37/Centinel/internal/config"
	"github.com/raiyan37/Centinel/internal/core"
)

// OverviewCache is the overview cache of a process: shared through Redis
// when REDIS_URL is set, an in-process LRU otherwise.
type OverviewCache struct {
	cache.Cache[core.Overview]

	redis   *redis.Client
	manager *cache.Manager
}

func NewOverviewCache(ctx context.Context, cfg *config.Config) (*OverviewCache, error) {
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("overview cache: %w", err)
		}
		return &OverviewCache{
			Cache: cache.NewRedisCache[core.Overview](client, cfg.CacheTTL),
			redis: client,
		}, nil
	}

	lru := cache.NewLRUCache[core.Overview](cfg.CacheSize, cfg.CacheTTL)
	manager := cache.NewManager()
	manager.Register(lru)
	manager.StartCleanup(cfg.CacheTTL)
	return &OverviewCache{Cache: lru, manager: manager}, nil
}

// Shared reports whether other processes see the same entries.
func (c *OverviewCache) Shared() bool {
	return c.redis != nil
}

// Ping checks the Redis connection; the in-process cache is always ready.
func (c *OverviewCache) Ping(ctx context.Context) error {
	if c.redis == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.redis.Ping(ctx).Err()
}

func (c *OverviewCache) Close() error {
	if c.manager != nil {
		c.manager.Stop()
	}
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}
