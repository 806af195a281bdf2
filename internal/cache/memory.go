package cache

import (
	"container/list"
	"sync"
	"time"
)

// MemoryCache is an LRU bounded by total value size.
type MemoryCache struct {
	capacity int64
	size     int64

	items    map[string]*list.Element
	eviction *list.List

	mu    sync.Mutex
	stats Stats
}

type memoryEntry struct {
	key       string
	value     []byte
	timestamp time.Time
	hits      int64
}

// NewMemoryCache creates a memory cache holding up to capacity bytes.
func NewMemoryCache(capacity int64) *MemoryCache {
	return &MemoryCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
		stats:    Stats{Capacity: capacity},
	}
}

// Get returns a value and marks it most recently used.
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	c.eviction.MoveToFront(elem)
	entry := elem.Value.(*memoryEntry)
	entry.hits++

	c.stats.Hits++
	c.stats.LastAccess = time.Now()
	return entry.value, true
}

// Put stores a value, evicting the least recently used entries to fit.
func (c *MemoryCache) Put(key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := int64(len(value))
	if n > c.capacity {
		return ErrItemTooLarge
	}

	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
	for c.size+n > c.capacity && c.eviction.Len() > 0 {
		c.remove(c.eviction.Back())
		c.stats.Evictions++
		c.stats.LastEvict = time.Now()
	}

	c.items[key] = c.eviction.PushFront(&memoryEntry{
		key:       key,
		value:     value,
		timestamp: time.Now(),
	})
	c.size += n
	return nil
}

// Delete removes a key.
func (c *MemoryCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
	return nil
}

// Clear drops every entry.
func (c *MemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.eviction.Init()
	c.size = 0
	return nil
}

// Contains reports whether key is cached without touching its recency.
func (c *MemoryCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

// Size returns the total size of cached values.
func (c *MemoryCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Stats returns a snapshot of the counters.
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Size = c.size
	s.ItemCount = int64(len(c.items))
	s.updateHitRate()
	return s
}

// Metadata returns the metadata of a cached key.
func (c *MemoryCache) Metadata(key string) (Metadata, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return Metadata{}, false
	}
	entry := elem.Value.(*memoryEntry)
	return Metadata{
		Key:        key,
		Size:       int64(len(entry.value)),
		Timestamp:  entry.timestamp,
		LastAccess: entry.timestamp,
		Hits:       entry.hits,
		Level:      LevelMemory,
	}, true
}

// Prune removes entries older than maxAge and returns how many it removed.
func (c *MemoryCache) Prune(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for elem := c.eviction.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*memoryEntry).timestamp.Before(cutoff) {
			c.remove(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

func (c *MemoryCache) remove(elem *list.Element) {
	entry := elem.Value.(*memoryEntry)
	c.eviction.Remove(elem)
	delete(c.items, entry.key)
	c.size -= int64(len(entry.value))
}
