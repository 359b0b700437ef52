// Package offline implements the offline cache lifecycle of the app shell:
// a versioned cache of shell assets sitting between local clients and the
// remote origin, with install/waiting/activate generations and network-first
// fetch routing with cache fallback.
package offline

import (
	"net/http"
	"slices"
	"sync"
)

// Snapshot is a stored copy of an upstream response.
type Snapshot struct {
	Status int
	Header http.Header
	Body   []byte
}

// Clone returns a deep copy so a cached snapshot can be served while the
// original keeps being written to the cache, and vice versa.
func (s *Snapshot) Clone() *Snapshot {
	body := make([]byte, len(s.Body))
	copy(body, s.Body)
	return &Snapshot{Status: s.Status, Header: s.Header.Clone(), Body: body}
}

// Cache is one named store of request-key to response-snapshot pairs.
// Individual operations are atomic; no further synchronization is layered on
// top.
type Cache interface {
	Match(key string) (*Snapshot, bool)
	Put(key string, snap *Snapshot) error
	Keys() []string
}

// Storage manages named cache stores across generations. One store exists
// per cache version; superseded stores are deleted wholesale at activation.
type Storage interface {
	// Open returns the store with the given name, creating it if absent.
	Open(name string) (Cache, error)
	// Keys lists the names of all existing stores.
	Keys() ([]string, error)
	// Delete removes a store and reports whether it existed.
	Delete(name string) (bool, error)
}

// MemoryStorage is the in-memory Storage used by the gateway.
type MemoryStorage struct {
	mu     sync.Mutex
	stores map[string]*memoryCache
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{stores: make(map[string]*memoryCache)}
}

func (s *MemoryStorage) Open(name string) (Cache, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.stores[name]
	if !ok {
		c = &memoryCache{entries: make(map[string]*Snapshot)}
		s.stores[name] = c
	}
	return c, nil
}

func (s *MemoryStorage) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.stores))
	for k := range s.stores {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

func (s *MemoryStorage) Delete(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.stores[name]
	delete(s.stores, name)
	return ok, nil
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*Snapshot
}

func (c *memoryCache) Match(key string) (*Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return snap.Clone(), true
}

func (c *memoryCache) Put(key string, snap *Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = snap.Clone()
	return nil
}

func (c *memoryCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
