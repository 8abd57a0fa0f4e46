// Package cachex provides a small TTL'd key-value capability for short-lived
// staging data (e.g. a 2FA secret awaiting confirmation). The in-memory
// implementation is the default for single-instance deployments; the Redis
// implementation externalises the same contract when running more than one
// process.
package cachex

import (
	"context"
	"sync"
	"time"
)

// Cache stores string values under string keys with a per-entry TTL.
// Expired entries behave exactly like absent ones.
type Cache interface {
	// Set stores value under key, replacing any prior entry. A ttl <= 0 is
	// rejected by implementations since staging data must always expire.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the value and true if present and unexpired.
	Get(ctx context.Context, key string) (string, bool, error)

	// Delete removes key if present. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any underlying resources.
	Close() error
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is a process-local Cache with lazy eviction: expired entries
// are dropped when touched, no background sweep.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{value: value, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false, nil
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *MemoryCache) Close() error { return nil }
