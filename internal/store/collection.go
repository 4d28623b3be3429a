package store

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const (
	LeadsKey         = "leadsData"
	OpportunitiesKey = "opportunitiesData"
)

// collection is the in-memory copy of one persisted slot. Every mutation builds a new
// slice and swaps it in, so slices handed out earlier are never modified.
type collection[T any, K comparable] struct {
	key   string
	kv    KV
	log   *zap.Logger
	idOf  func(T) K
	clone func(T) T
	seed  func() ([]T, error)

	mu     sync.Mutex
	loaded bool
	items  []T
}

// loadLocked fills the cache on first use. Caller holds c.mu.
func (c *collection[T, K]) loadLocked(ctx context.Context) error {
	if c.loaded {
		return nil
	}
	raw, ok, err := c.kv.Get(ctx, c.key)
	if err != nil {
		c.log.Warn("read collection failed; using seed data", zap.String("key", c.key), zap.Error(err))
		ok = false
	}
	if ok {
		var items []T
		err := json.Unmarshal([]byte(raw), &items)
		if err == nil {
			c.items = items
			c.loaded = true
			return nil
		}
		c.log.Warn("collection is corrupt; using seed data", zap.String("key", c.key), zap.Error(err))
	}
	items, err := c.seed()
	if err != nil {
		return err
	}
	c.items = items
	c.loaded = true
	c.persistLocked(ctx, items)
	return nil
}

// persistLocked writes the whole collection. Failures are logged; the in-memory state stands.
func (c *collection[T, K]) persistLocked(ctx context.Context, items []T) {
	b, err := encodeItems(items)
	if err != nil {
		c.log.Error("encode collection failed", zap.String("key", c.key), zap.Error(err))
		return
	}
	if err := c.kv.Set(ctx, c.key, b); err != nil {
		c.log.Error("persist collection failed", zap.String("key", c.key), zap.Error(err))
	}
}

func encodeItems[T any](items []T) (string, error) {
	if items == nil {
		return "[]", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *collection[T, K]) copyItems(items []T) []T {
	out := make([]T, len(items))
	for i, it := range items {
		out[i] = c.clone(it)
	}
	return out
}

func (c *collection[T, K]) all(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadLocked(ctx); err != nil {
		return nil, err
	}
	return c.copyItems(c.items), nil
}

func (c *collection[T, K]) find(ctx context.Context, id K) (T, bool, error) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadLocked(ctx); err != nil {
		return zero, false, err
	}
	for _, it := range c.items {
		if c.idOf(it) == id {
			return c.clone(it), true, nil
		}
	}
	return zero, false, nil
}

// update merges via apply, validates the result, then persists. A missing id writes nothing.
func (c *collection[T, K]) update(ctx context.Context, id K, apply func(T) T) (T, bool, error) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadLocked(ctx); err != nil {
		return zero, false, err
	}
	idx := -1
	for i, it := range c.items {
		if c.idOf(it) == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return zero, false, nil
	}
	merged := apply(c.clone(c.items[idx]))
	if err := ValidateRecord(merged); err != nil {
		return zero, true, err
	}
	next := c.copyItems(c.items)
	next[idx] = merged
	c.items = next
	c.persistLocked(ctx, next)
	return c.clone(merged), true, nil
}

// create builds the record from the current items (for id assignment), validates, appends.
func (c *collection[T, K]) create(ctx context.Context, build func(existing []T) (T, error)) (T, error) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadLocked(ctx); err != nil {
		return zero, err
	}
	rec, err := build(c.items)
	if err != nil {
		return zero, err
	}
	if err := ValidateRecord(rec); err != nil {
		return zero, err
	}
	next := append(c.copyItems(c.items), rec)
	c.items = next
	c.persistLocked(ctx, next)
	return c.clone(rec), nil
}

func (c *collection[T, K]) remove(ctx context.Context, id K) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadLocked(ctx); err != nil {
		return false, err
	}
	next := make([]T, 0, len(c.items))
	found := false
	for _, it := range c.items {
		if c.idOf(it) == id {
			found = true
			continue
		}
		next = append(next, c.clone(it))
	}
	if !found {
		return false, nil
	}
	c.items = next
	c.persistLocked(ctx, next)
	return true, nil
}

// reset drops the cache so the next access rereads (and reseeds) the slot.
func (c *collection[T, K]) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.items = nil
}
