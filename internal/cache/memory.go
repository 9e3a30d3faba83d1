package cache

import (
	"context"
	"sync"
	"time"

	"latex-speech/internal/types"
)

type memoryEntry struct {
	result    types.SpeechText
	expiresAt time.Time
}

// MemoryCache is an in-process Cache with per-entry TTL. Expired entries
// are dropped lazily on read; there is no background sweeper.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates a MemoryCache. A non-positive ttl falls back to
// DefaultTTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		entries: map[string]memoryEntry{},
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get implements Cache. The returned result is a copy; callers may mutate
// it freely.
func (c *MemoryCache) Get(ctx context.Context, key string) (*types.SpeechText, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}

	result := entry.result
	result.AppliedPatternIDs = append([]string(nil), entry.result.AppliedPatternIDs...)
	if entry.result.ErrorTally != nil {
		result.ErrorTally = make(map[string]int, len(entry.result.ErrorTally))
		for k, v := range entry.result.ErrorTally {
			result.ErrorTally[k] = v
		}
	}
	return &result, true, nil
}

// Set implements Cache.
func (c *MemoryCache) Set(ctx context.Context, key string, result *types.SpeechText) error {
	stored := *result
	stored.AppliedPatternIDs = append([]string(nil), result.AppliedPatternIDs...)
	if result.ErrorTally != nil {
		stored.ErrorTally = make(map[string]int, len(result.ErrorTally))
		for k, v := range result.ErrorTally {
			stored.ErrorTally[k] = v
		}
	}

	c.mu.Lock()
	c.entries[key] = memoryEntry{result: stored, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

// Len returns the number of live entries, counting expired ones not yet
// evicted.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
