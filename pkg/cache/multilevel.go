package cache

import (
	"context"
	"errors"
	"time"
)

// MultiLevelCache 实现多级缓存 (L1: Memory, L2: Redis)
type MultiLevelCache struct {
	local  Cache
	remote Cache
}

func NewMultiLevelCache(local, remote Cache) *MultiLevelCache {
	return &MultiLevelCache{
		local:  local,
		remote: remote,
	}
}

func (m *MultiLevelCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	// L1 的 TTL 设为 L2 的一半
	_ = m.local.Set(ctx, key, value, ttl/2)
	return m.remote.Set(ctx, key, value, ttl)
}

func (m *MultiLevelCache) Get(ctx context.Context, key string, target interface{}) error {
	if err := m.local.Get(ctx, key, target); err == nil {
		return nil
	}

	err := m.remote.Get(ctx, key, target)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return ErrCacheMiss
		}
		return err
	}
	// L2 Hit -> 回写 L1，TTL 较短防止 L1 脏数据太久
	_ = m.local.Set(ctx, key, target, time.Minute)
	return nil
}

func (m *MultiLevelCache) Delete(ctx context.Context, key string) error {
	_ = m.local.Delete(ctx, key)
	return m.remote.Delete(ctx, key)
}
