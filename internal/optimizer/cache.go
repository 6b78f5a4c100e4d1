package optimizer

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/polica/planogram-service/internal/planogram"
)

// ResultCache memoizes allocation runs keyed by a request digest. A hit
// restores the cached shelf layout onto the store and returns a copy of the
// cached result, skipping the run entirely. Entries expire after the TTL;
// when the cache is full the stalest entry is evicted.
//
// Cached results are shared between callers and must not be mutated.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry

	ttl        time.Duration
	maxEntries int

	metrics *MetricsRecorder
	logger  zerolog.Logger
}

// cacheEntry captures one finished run: the result plus the placements it
// produced, per shelf, so a hit can rebuild the layout.
type cacheEntry struct {
	result     Result
	placements map[string][]planogram.Placement
	storedAt   time.Time
}

// NewResultCache returns a cache holding at most maxEntries runs for up to
// ttl each.
func NewResultCache(ttl time.Duration, maxEntries int) *ResultCache {
	return &ResultCache{
		entries:    make(map[string]*cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		metrics:    NewMetricsRecorder(),
		logger:     log.With().Str("component", "result_cache").Logger(),
	}
}

// Get looks up the digest and, on a fresh hit, restores the cached layout
// onto the store and returns a copy of the cached result.
func (c *ResultCache) Get(key string, store *planogram.Store) (*Result, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Since(entry.storedAt) > c.ttl {
		if ok {
			c.mu.Lock()
			if e, still := c.entries[key]; still && time.Since(e.storedAt) > c.ttl {
				delete(c.entries, key)
			}
			c.mu.Unlock()
		}
		c.metrics.RecordCacheMiss()
		return nil, false
	}

	store.Reset()
	for shelfID, placements := range entry.placements {
		shelf := store.ShelfByID(shelfID)
		if shelf == nil {
			// Digest collision across incompatible layouts; treat as a miss.
			store.Reset()
			c.metrics.RecordCacheMiss()
			return nil, false
		}
		shelf.Placements = append([]planogram.Placement(nil), placements...)
	}

	c.metrics.RecordCacheHit()
	result := entry.result
	return &result, true
}

// Put stores a finished run under the digest, snapshotting the store's
// current placements.
func (c *ResultCache) Put(key string, result *Result, store *planogram.Store) {
	if c.maxEntries == 0 || result == nil {
		return
	}

	placements := make(map[string][]planogram.Placement, len(store.Shelves))
	for _, shelf := range store.Shelves {
		if len(shelf.Placements) == 0 {
			continue
		}
		placements[shelf.ID] = append([]planogram.Placement(nil), shelf.Placements...)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictStalest()
	}
	c.entries[key] = &cacheEntry{
		result:     *result,
		placements: placements,
		storedAt:   time.Now(),
	}
}

// evictStalest drops the oldest entry. Callers must hold the write lock.
func (c *ResultCache) evictStalest() {
	var (
		stalest   string
		stalestAt time.Time
	)
	for key, entry := range c.entries {
		if stalest == "" || entry.storedAt.Before(stalestAt) {
			stalest = key
			stalestAt = entry.storedAt
		}
	}
	if stalest != "" {
		delete(c.entries, stalest)
		c.logger.Debug().Str("key", stalest).Msg("evicted stalest cache entry")
	}
}

// Len returns the number of live entries, expired ones included.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Purge drops every entry.
func (c *ResultCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}
