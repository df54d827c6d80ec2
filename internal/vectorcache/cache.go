// Package vectorcache persists passage vectors between runs so the index
// does not re-embed unchanged text. A missing or unreadable cache is never
// fatal: callers fall back to computing vectors.
package vectorcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Key derives the cache key for text embedded by the named vectorizer.
func Key(vectorizer, text string) string {
	return vectorizer + ":" + strconv.FormatUint(xxhash.Sum64String(text), 16)
}

// FileCache is a JSON-file backed cache. Writes are staged in memory and
// flushed by Save.
type FileCache struct {
	mu    sync.RWMutex
	path  string
	data  map[string][]float64
	dirty bool
}

// OpenFile loads the cache at path. A missing file yields an empty cache;
// an unreadable one is logged and ignored.
func OpenFile(path string, logger *slog.Logger) *FileCache {
	if logger == nil {
		logger = slog.Default()
	}
	c := &FileCache{path: path, data: make(map[string][]float64)}
	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("vector cache unreadable, starting empty", "path", path, "error", err)
		}
		return c
	}
	if err := json.Unmarshal(raw, &c.data); err != nil {
		logger.Warn("vector cache corrupt, starting empty", "path", path, "error", err)
		c.data = make(map[string][]float64)
	}
	return c
}

func (c *FileCache) Get(key string) ([]float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[key]
	return v, ok
}

func (c *FileCache) Put(key string, vec []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = vec
	c.dirty = true
}

// Len returns the number of cached vectors.
func (c *FileCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Save writes the cache atomically if anything changed since the last save.
func (c *FileCache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("vectorcache: create dir: %w", err)
	}
	raw, err := json.Marshal(c.data)
	if err != nil {
		return fmt.Errorf("vectorcache: encode: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("vectorcache: write: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("vectorcache: rename: %w", err)
	}
	c.dirty = false
	return nil
}

func (c *FileCache) Close() error { return c.Save() }

// Nop caches nothing.
type Nop struct{}

func (Nop) Get(string) ([]float64, bool) { return nil, false }
func (Nop) Put(string, []float64)        {}
func (Nop) Save() error                  { return nil }
func (Nop) Close() error                 { return nil }
