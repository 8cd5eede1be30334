// Package cache stores feed documents between requests and across runs.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileCache implements a file-based cache with TTL. Expired entries stay
// on disk until Cleanup so the last good feed can still be read with
// GetStale.
type FileCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// cacheEntry represents a cached item with expiration
type cacheEntry struct {
	Data      []byte    `json:"data"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewFileCache creates a new file cache
func NewFileCache(dir string, ttl time.Duration) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, err
	}

	return &FileCache{
		dir: dir,
		ttl: ttl,
		now: time.Now,
	}, nil
}

// DefaultCacheDir returns the default cache directory
func DefaultCacheDir() string {
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return filepath.Join(xdgCache, "moko-board")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "moko-board-cache")
	}

	return filepath.Join(home, ".cache", "moko-board")
}

// Dir returns the cache directory
func (c *FileCache) Dir() string {
	return c.dir
}

// keyToFilename converts a cache key (URL) to a filename
func (c *FileCache) keyToFilename(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(hash[:])+".json")
}

func (c *FileCache) read(key string) (*cacheEntry, bool) {
	filename := c.keyToFilename(key)

	// #nosec G304 -- filename is derived from hash of cache key, not user input
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = os.Remove(filename)
		return nil, false
	}
	return &entry, true
}

// Get retrieves an unexpired value from the cache
func (c *FileCache) Get(key string) ([]byte, bool) {
	entry, ok := c.read(key)
	if !ok || c.now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Data, true
}

// GetStale retrieves a value whether or not it has expired, with the
// time it was stored
func (c *FileCache) GetStale(key string) ([]byte, time.Time, bool) {
	entry, ok := c.read(key)
	if !ok {
		return nil, time.Time{}, false
	}
	return entry.Data, entry.StoredAt, true
}

// Set stores a value in the cache
func (c *FileCache) Set(key string, value []byte) error {
	now := c.now()
	entry := cacheEntry{
		Data:      value,
		StoredAt:  now,
		ExpiresAt: now.Add(c.ttl),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	// Write then rename so a reader never sees a partial entry
	filename := c.keyToFilename(key)
	tmp := filename + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, filename)
}

// Clear removes all cache entries
func (c *FileCache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			_ = os.Remove(filepath.Join(c.dir, entry.Name()))
		}
	}

	return nil
}

// Cleanup removes entries that expired more than maxStale ago
func (c *FileCache) Cleanup(maxStale time.Duration) error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}

	cutoff := c.now().Add(-maxStale)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		filename := filepath.Join(c.dir, entry.Name())
		// #nosec G304 -- filename is from ReadDir within cache directory
		data, err := os.ReadFile(filename)
		if err != nil {
			continue
		}

		var ce cacheEntry
		if err := json.Unmarshal(data, &ce); err != nil {
			_ = os.Remove(filename)
			continue
		}

		if ce.ExpiresAt.Before(cutoff) {
			_ = os.Remove(filename)
		}
	}

	return nil
}
