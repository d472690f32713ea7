package memory

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"kubetodo/internal/core/domain"
	"kubetodo/internal/core/port"
)

type memoryRepository struct {
	cache *gocache.Cache
}

// NewMemoryRepository is the in-process fallback when no redis URL is
// configured. Single replica only: entries are not shared across pods.
func NewMemoryRepository() port.CacheRepository {
	return &memoryRepository{
		cache: gocache.New(5*time.Minute, 10*time.Minute),
	}
}

func (c *memoryRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.cache.Set(key, value, ttl)
	return nil
}

func (c *memoryRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, found := c.cache.Get(key)

	if !found {
		return nil, domain.ErrNotFound
	}

	return val.([]byte), nil
}

func (c *memoryRepository) Delete(ctx context.Context, key string) error {
	c.cache.Delete(key)
	return nil
}

func (c *memoryRepository) DeleteByPrefix(ctx context.Context, prefix string) error {
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Delete(key)
		}
	}
	return nil
}

func (c *memoryRepository) Close() error {
	c.cache.Flush()
	return nil
}
