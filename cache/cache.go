// Package cache holds resolved video metadata for a freshness window, keyed
// by source URL. Expiry is logical: an expired entry reads as a miss and the
// caller re-fetches and overwrites. There is no size bound; a pathological
// number of distinct URLs grows the map, which the original deployment scale
// accepts.
package cache

import (
	"sync"
	"time"

	"yt-clip/models"
)

type MetadataCache struct {
	mu      sync.RWMutex
	entries map[string]*models.VideoMetadata

	window time.Duration
	clock  func() time.Time
}

func New(window time.Duration) *MetadataCache {
	return &MetadataCache{
		entries: make(map[string]*models.VideoMetadata),
		window:  window,
		clock:   time.Now,
	}
}

// NewWithClock is used by tests to control expiry without real delays.
func NewWithClock(window time.Duration, clock func() time.Time) *MetadataCache {
	c := New(window)
	c.clock = clock
	return c
}

// Get returns the cached metadata for url, or ok=false on a miss or an
// expired entry. Expired entries are not removed, only ignored; the next Put
// supersedes them.
func (c *MetadataCache) Get(url string) (*models.VideoMetadata, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[url]
	if !ok || !entry.IsFresh(c.clock(), c.window) {
		return nil, false
	}
	return entry, true
}

// Put stores metadata for url, stamping it with the current time. Entries are
// replaced whole, never mutated in place, so concurrent readers cannot see a
// torn entry.
func (c *MetadataCache) Put(url string, meta *models.VideoMetadata) {
	stamped := *meta
	stamped.FetchedAt = c.clock()

	c.mu.Lock()
	c.entries[url] = &stamped
	c.mu.Unlock()
}

// Len reports the number of stored entries, fresh or not.
func (c *MetadataCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
