package cache

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type MemoryCache struct {
	c *gocache.Cache
}

func NewMemoryCache(defaultExpiration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		c: gocache.New(defaultExpiration, cleanupInterval),
	}
}

// Set 存入 JSON 副本，调用方之后修改 value 不会影响缓存内容
func (m *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.c.Set(key, data, ttl)
	return nil
}

func (m *MemoryCache) Get(ctx context.Context, key string, target interface{}) error {
	val, found := m.c.Get(key)
	if !found {
		return ErrCacheMiss
	}
	// 与 Redis 行为保持一致：统一走 JSON
	return json.Unmarshal(val.([]byte), target)
}

func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.c.Delete(key)
	return nil
}
