package cache

import (
	"time"

	"github.com/bluele/gcache"
)

// DefaultMemorySize is the number of feed documents kept in memory
const DefaultMemorySize = 64

// MemoryCache is an in-process LRU cache with a TTL
type MemoryCache struct {
	c gcache.Cache
}

// NewMemoryCache creates a memory cache holding up to size entries
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	return newMemoryCache(size, ttl, gcache.NewRealClock())
}

func newMemoryCache(size int, ttl time.Duration, clock gcache.Clock) *MemoryCache {
	if size <= 0 {
		size = DefaultMemorySize
	}
	return &MemoryCache{
		c: gcache.New(size).
			LRU().
			Expiration(ttl).
			Clock(clock).
			Build(),
	}
}

// Get retrieves a value from the cache
func (m *MemoryCache) Get(key string) ([]byte, bool) {
	v, err := m.c.Get(key)
	if err != nil {
		return nil, false
	}
	data, ok := v.([]byte)
	return data, ok
}

// Set stores a copy of value in the cache
func (m *MemoryCache) Set(key string, value []byte) error {
	return m.c.Set(key, append([]byte(nil), value...))
}
