package manifest

import (
	"sync"

	"github.com/streamlens/streamlens/internal/models"
)

// Cache memoizes parse results per manifest URL for the detection session.
// Entries are written at most once with idempotent content and are never
// mutated after insert; callers compute derived data from them, never write
// back. The cache is injectable so tests can reset state between runs.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*models.ParsedManifest
}

// NewCache creates an empty session-scoped manifest cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*models.ParsedManifest)}
}

// Get returns the cached parse for url, or nil.
func (c *Cache) Get(url string) *models.ParsedManifest {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[url]
}

// Put stores a parse result for url. The first write wins.
func (c *Cache) Put(url string, m *models.ParsedManifest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[url]; !ok {
		c.entries[url] = m
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*models.ParsedManifest)
}
