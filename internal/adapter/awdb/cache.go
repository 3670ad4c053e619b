package awdb

import (
	"context"
	"sync"

	"github.com/couchcryptid/snotel-shef-etl/internal/domain"
	"github.com/couchcryptid/snotel-shef-etl/internal/observability"
)

// MetadataFetcher returns station metadata for a batch of triplets.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, triplets []domain.StationTriplet) ([]domain.StationMeta, error)
}

// CachedMetadata wraps a MetadataFetcher with an in-memory LRU cache keyed by
// triplet. Only misses are requested from the inner fetcher.
type CachedMetadata struct {
	inner   MetadataFetcher
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedMetadata creates a cache decorator around a metadata fetcher.
func NewCachedMetadata(inner MetadataFetcher, maxEntries int, metrics *observability.Metrics) *CachedMetadata {
	return &CachedMetadata{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedMetadata) FetchMetadata(ctx context.Context, triplets []domain.StationTriplet) ([]domain.StationMeta, error) {
	out := make([]domain.StationMeta, 0, len(triplets))
	var misses []domain.StationTriplet
	for _, t := range triplets {
		if m, ok := c.cache.get(t); ok {
			out = append(out, m)
			continue
		}
		misses = append(misses, t)
	}
	c.metrics.MetadataCache.WithLabelValues("hit").Add(float64(len(out)))
	c.metrics.MetadataCache.WithLabelValues("miss").Add(float64(len(misses)))

	if len(misses) == 0 {
		return out, nil
	}

	fetched, err := c.inner.FetchMetadata(ctx, misses)
	if err != nil {
		return nil, err
	}
	for _, m := range fetched {
		// Stations without a SHEF id are not cached so a later fix upstream is picked up.
		if m.PublishID != "" {
			c.cache.put(m.Triplet, m)
		}
	}
	return append(out, fetched...), nil
}

// lruCache is a simple thread-safe LRU cache of station metadata.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[domain.StationTriplet]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   domain.StationTriplet
	value domain.StationMeta
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[domain.StationTriplet]*entry),
	}
}

func (c *lruCache) get(key domain.StationTriplet) (domain.StationMeta, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.StationMeta{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key domain.StationTriplet, value domain.StationMeta) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
