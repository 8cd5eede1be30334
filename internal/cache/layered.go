package cache

// Store is the cache interface shared by every cache in this package
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
}

// Layered checks a fast cache before a slow one and fills the fast
// cache on a slow hit
type Layered struct {
	fast Store
	slow Store
}

// NewLayered stacks fast in front of slow
func NewLayered(fast, slow Store) *Layered {
	return &Layered{fast: fast, slow: slow}
}

// Get retrieves a value from the first layer that has it
func (l *Layered) Get(key string) ([]byte, bool) {
	if data, ok := l.fast.Get(key); ok {
		return data, true
	}
	data, ok := l.slow.Get(key)
	if !ok {
		return nil, false
	}
	_ = l.fast.Set(key, data)
	return data, true
}

// Set stores the value in both layers
func (l *Layered) Set(key string, value []byte) error {
	if err := l.fast.Set(key, value); err != nil {
		return err
	}
	return l.slow.Set(key, value)
}
