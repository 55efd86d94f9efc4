// Package cache provides a thread-safe TTL cache with a size limit and metrics.
package cache

import (
	"strings"
	"sync"
	"time"
)

// Entry is a cached value with its expiration time
type Entry[V any] struct {
	Value     V
	ExpiresAt time.Time
}

// IsExpired checks if the entry has expired
func (e *Entry[V]) IsExpired() bool {
	return time.Now().After(e.ExpiresAt)
}

// Metrics tracks cache performance statistics
type Metrics struct {
	Hits       int64
	Misses     int64
	Evictions  int64
	TotalReads int64
	TotalSize  int64
}

// HitRate calculates the cache hit rate as a percentage
func (m *Metrics) HitRate() float64 {
	if m.TotalReads == 0 {
		return 0.0
	}
	return float64(m.Hits) / float64(m.TotalReads) * 100.0
}

// Cache maps string keys to values of type V until their TTL runs out.
type Cache[V any] struct {
	entries map[string]*Entry[V]
	ttl     time.Duration
	maxSize int
	mu      sync.Mutex
	metrics Metrics
	stopCh  chan struct{}
	once    sync.Once
}

// New creates a cache with the given TTL and maximum size and starts its
// background cleanup. Call Close to stop it.
func New[V any](ttl time.Duration, maxSize int) *Cache[V] {
	if maxSize <= 0 {
		maxSize = 1
	}

	c := &Cache[V]{
		entries: make(map[string]*Entry[V]),
		ttl:     ttl,
		maxSize: maxSize,
		stopCh:  make(chan struct{}),
	}

	go c.cleanupLoop()

	return c
}

// Get returns the value for key and whether it was present and fresh.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics.TotalReads++

	entry, exists := c.entries[key]
	if !exists || entry.IsExpired() {
		c.metrics.Misses++
		var zero V
		return zero, false
	}

	c.metrics.Hits++
	return entry.Value, true
}

// Set stores a value under key
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictExpiredEntries()

		if len(c.entries) >= c.maxSize {
			c.evictOldestEntry()
		}
	}

	c.entries[key] = &Entry[V]{
		Value:     value,
		ExpiresAt: time.Now().Add(c.ttl),
	}

	c.metrics.TotalSize = int64(len(c.entries))
}

// Delete removes a specific key
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	c.metrics.TotalSize = int64(len(c.entries))
}

// DeletePrefix removes every key starting with prefix
func (c *Cache[V]) DeletePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.metrics.TotalSize = int64(len(c.entries))
}

// Clear removes all entries
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*Entry[V])
	c.metrics.TotalSize = 0
}

func (c *Cache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Metrics returns a copy of the current metrics
func (c *Cache[V]) Metrics() Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metrics
}

// Close stops the background cleanup goroutine
func (c *Cache[V]) Close() {
	c.once.Do(func() {
		close(c.stopCh)
	})
}

func (c *Cache[V]) cleanupLoop() {
	interval := c.ttl / 2
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopCh:
			return
		}
	}
}

func (c *Cache[V]) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictExpiredEntries()
	c.metrics.TotalSize = int64(len(c.entries))
}

// evictExpiredEntries must be called with the lock held
func (c *Cache[V]) evictExpiredEntries() {
	for key, entry := range c.entries {
		if entry.IsExpired() {
			delete(c.entries, key)
			c.metrics.Evictions++
		}
	}
}

// evictOldestEntry must be called with the lock held
func (c *Cache[V]) evictOldestEntry() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.ExpiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.ExpiresAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.metrics.Evictions++
	}
}
