package store

import (
	"context"
	"sync"

	"github.com/patrickmn/go-cache"
)

// MemoryKV is a process-local store; nothing survives a restart.
type MemoryKV struct {
	mu sync.Mutex
	c  *cache.Cache
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{c: cache.New(cache.NoExpiration, 0)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return "", false, nil
	}
	s, _ := v.(string)
	return s, true, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.c.Set(key, value, cache.NoExpiration)
	return nil
}

func (m *MemoryKV) SetMany(_ context.Context, entries map[string]string) error {
	// Batches are serialized against each other.
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range entries {
		m.c.Set(k, v, cache.NoExpiration)
	}
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.c.Delete(k)
	}
	return nil
}

func (m *MemoryKV) Close() error {
	m.c.Flush()
	return nil
}
