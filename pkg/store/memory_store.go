package store

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps session memory in process. Used when no Redis is
// configured; state is lost on restart.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: cache.New(1*time.Hour, 10*time.Minute)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, found := s.cache.Get(key)
	if !found {
		return "", false, nil
	}
	str, ok := val.(string)
	if !ok {
		return "", false, nil
	}
	return str, true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.cache.Set(key, value, ttl)
	return nil
}
