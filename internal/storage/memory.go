package storage

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// MemoryStore is the last-resort process-local tier. Values never expire.
type MemoryStore struct {
	cache *cache.Cache
}

// NewMemoryStore creates an empty in-memory tier
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (m *MemoryStore) Name() string {
	return TierMemory
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.cache.Get(key)
	if !ok {
		return "", ErrNotFound
	}
	return v.(string), nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.cache.Set(key, value, cache.NoExpiration)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.cache.Delete(key)
	return nil
}

// Len returns the number of stored keys
func (m *MemoryStore) Len() int {
	return m.cache.ItemCount()
}
