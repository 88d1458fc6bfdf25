package core

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// CacheKey identifies a dataset by its archive location and entry name.
type CacheKey struct {
	URL   string
	Entry string
}

func (k CacheKey) String() string { return k.URL + "\x00" + k.Entry }

// LoadFunc produces a fresh dataset for a key.
type LoadFunc func(ctx context.Context) (*Dataset, error)

// DatasetCache holds the last successful dataset per key until Invalidate.
// Concurrent misses on the same key share a single load. Failed loads are
// never stored.
type DatasetCache struct {
	mu         sync.RWMutex
	entries    map[CacheKey]*Dataset
	generation uint64
	group      singleflight.Group

	// OnHit and OnMiss are optional hooks, used for metrics.
	OnHit  func()
	OnMiss func()
}

// NewDatasetCache creates an empty cache.
func NewDatasetCache() *DatasetCache {
	return &DatasetCache{entries: make(map[CacheKey]*Dataset)}
}

// Get returns the cached dataset for key, loading it on a miss.
func (c *DatasetCache) Get(ctx context.Context, key CacheKey, load LoadFunc) (*Dataset, error) {
	c.mu.RLock()
	ds, ok := c.entries[key]
	gen := c.generation
	c.mu.RUnlock()

	if ok {
		if c.OnHit != nil {
			c.OnHit()
		}
		return ds, nil
	}
	if c.OnMiss != nil {
		c.OnMiss()
	}

	// Loads started after an Invalidate must not join a stale flight.
	flight := strconv.FormatUint(gen, 10) + "/" + key.String()
	v, err, _ := c.group.Do(flight, func() (interface{}, error) {
		// A flight that finished between the lookup above and Do already
		// stored the dataset.
		if ds, ok := c.Peek(key); ok {
			return ds, nil
		}

		ds, err := load(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		// An Invalidate during the load means ds may be stale; return it
		// to the waiting callers but do not keep it.
		if c.generation == gen {
			c.entries[key] = ds
		}
		c.mu.Unlock()
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dataset), nil
}

// Peek returns the cached dataset without loading.
func (c *DatasetCache) Peek(key CacheKey) (*Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ds, ok := c.entries[key]
	return ds, ok
}

// Invalidate drops every cached dataset.
func (c *DatasetCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[CacheKey]*Dataset)
	c.generation++
}
