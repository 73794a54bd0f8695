package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"signing-oracle/pkg/cache"
	"signing-oracle/pkg/errno"
)

const keyPrefix = "oracle:attempt:"

// AttemptStore 在缓存中保存尝试结果，过期后自动清除
type AttemptStore struct {
	cache cache.Cache
	ttl   time.Duration
}

func NewAttemptStore(c cache.Cache, ttl time.Duration) *AttemptStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &AttemptStore{cache: c, ttl: ttl}
}

func (s *AttemptStore) Save(ctx context.Context, r Record) error {
	if r.ID == "" {
		return errors.New("record without id")
	}
	if err := s.cache.Set(ctx, keyPrefix+r.ID, r, s.ttl); err != nil {
		return fmt.Errorf("save attempt %s: %w", r.ID, err)
	}
	return nil
}

// Get 返回记录；不存在或已过期时返回 errno.ErrNotFound
func (s *AttemptStore) Get(ctx context.Context, id string) (Record, error) {
	var r Record
	err := s.cache.Get(ctx, keyPrefix+id, &r)
	if errors.Is(err, cache.ErrCacheMiss) {
		return Record{}, errno.ErrNotFound.WithMessage("attempt " + id + " not found")
	}
	if err != nil {
		return Record{}, fmt.Errorf("load attempt %s: %w", id, err)
	}
	return r, nil
}
