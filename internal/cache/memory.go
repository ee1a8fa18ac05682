package cache

import (
	"context"
	"path"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is the default in-process Store, a thin wrap over
// go-cache. Entries expire per call; the janitor sweep is go-cache's.
type MemoryStore struct {
	inner *gocache.Cache
}

// NewMemoryStore builds a store whose janitor sweeps every hour.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		inner: gocache.New(24*time.Hour, 1*time.Hour),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool) {
	v, ok := s.inner.Get(key)
	if !ok {
		return "", false
	}
	value, ok := v.(string)
	return value, ok
}

func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.inner.Set(key, value, ttl)
	return nil
}

func (s *MemoryStore) DeletePattern(_ context.Context, pattern string) (int, error) {
	deleted := 0
	for key := range s.inner.Items() {
		ok, err := path.Match(pattern, key)
		if err != nil {
			return deleted, err
		}
		if ok {
			s.inner.Delete(key)
			deleted++
		}
	}
	return deleted, nil
}
