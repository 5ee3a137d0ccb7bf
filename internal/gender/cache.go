package gender

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// cacheVersion invalidates persisted entries when tier semantics change.
const cacheVersion = 1

// Cache is an in-memory name-to-result store persisted as a JSON file. Safe
// for concurrent use. A missing, unreadable, or out-of-date file starts the
// cache empty rather than failing.
type Cache struct {
	mu      sync.RWMutex
	path    string
	entries map[string]Result
	dirty   bool
}

type cacheFile struct {
	Version int               `json:"version"`
	Entries map[string]Result `json:"entries"`
}

// OpenCache loads the cache at path. An empty path keeps the cache
// memory-only and makes Flush a no-op.
func OpenCache(path string) *Cache {
	c := &Cache{path: path, entries: make(map[string]Result)}
	if path == "" {
		return c
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}

	var f cacheFile
	if err := json.Unmarshal(data, &f); err != nil || f.Version != cacheVersion {
		return c
	}
	if f.Entries != nil {
		c.entries = f.Entries
	}
	return c
}

// Get returns the cached result for a name.
func (c *Cache) Get(name string) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[name]
	return r, ok
}

// Put stores a result, replacing any previous entry for the name.
func (c *Cache) Put(name string, r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = r
	c.dirty = true
}

// Len returns the number of cached names.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// RemoveBySource deletes all entries recorded by the given source and
// returns their names. Retry passes use this to clear unparsed LLM outcomes.
func (c *Cache) RemoveBySource(source string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var names []string
	for name, r := range c.entries {
		if r.Source == source {
			delete(c.entries, name)
			names = append(names, name)
		}
	}
	if len(names) > 0 {
		c.dirty = true
	}
	return names
}

// Flush writes the cache to disk if anything changed since the last flush.
func (c *Cache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.path == "" || !c.dirty {
		return nil
	}

	data, err := json.MarshalIndent(cacheFile{Version: cacheVersion, Entries: c.entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling gender cache: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("writing gender cache: %w", err)
	}

	c.dirty = false
	return nil
}
