package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Store layers a MemoryCache over a DiskCache. Disk hits are promoted to
// memory.
type Store struct {
	memory *MemoryCache
	disk   *DiskCache
	config Config

	stop chan struct{}
	wg   sync.WaitGroup

	mu    sync.Mutex
	stats StoreStats
}

// StoreStats aggregates hits across tiers.
type StoreStats struct {
	MemoryHits  int64
	DiskHits    int64
	Misses      int64
	Promotions  int64
	CleanupRuns int64
	LastCleanup time.Time
	Memory      Stats
	Disk        Stats
}

// NewStore opens a store in cfg.Dir.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("cache directory is not set")
	}

	disk, err := NewDiskCache(cfg.Dir, cfg.DiskCapacity, cfg.CompressionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create disk cache: %w", err)
	}

	s := &Store{
		memory: NewMemoryCache(cfg.MemoryCapacity),
		disk:   disk,
		config: cfg,
		stop:   make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		s.wg.Add(1)
		go s.cleanupLoop()
	}
	return s, nil
}

// Get looks in memory, then on disk.
func (s *Store) Get(key string) ([]byte, Level, bool) {
	if data, ok := s.memory.Get(key); ok {
		s.mu.Lock()
		s.stats.MemoryHits++
		s.mu.Unlock()
		return data, LevelMemory, true
	}

	if data, ok := s.disk.Get(key); ok {
		s.mu.Lock()
		s.stats.DiskHits++
		s.stats.Promotions++
		s.mu.Unlock()
		_ = s.memory.Put(key, data)
		return data, LevelDisk, true
	}

	s.mu.Lock()
	s.stats.Misses++
	s.mu.Unlock()
	return nil, 0, false
}

// Put writes to both tiers. A value too large for memory still lands on
// disk.
func (s *Store) Put(key string, value []byte) error {
	if err := s.memory.Put(key, value); err != nil && err != ErrItemTooLarge {
		return fmt.Errorf("memory cache: %w", err)
	}
	if err := s.disk.Put(key, value); err != nil {
		return fmt.Errorf("disk cache: %w", err)
	}
	return nil
}

// Delete removes key from both tiers.
func (s *Store) Delete(key string) error {
	_ = s.memory.Delete(key)
	return s.disk.Delete(key)
}

// Clear empties both tiers.
func (s *Store) Clear() error {
	_ = s.memory.Clear()
	return s.disk.Clear()
}

// Stats returns aggregated counters.
func (s *Store) Stats() StoreStats {
	s.mu.Lock()
	st := s.stats
	s.mu.Unlock()

	st.Memory = s.memory.Stats()
	st.Disk = s.disk.Stats()
	return st
}

// Cleanup expires entries past the TTL.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	s.stats.CleanupRuns++
	s.stats.LastCleanup = time.Now()
	s.mu.Unlock()

	if s.config.TTL <= 0 {
		return 0
	}
	removed := s.disk.RemoveOlderThan(time.Now().Add(-s.config.TTL))
	removed += s.memory.Prune(s.config.TTL)
	if removed > 0 {
		log.Debug("Expired cached takes", "removed", removed)
	}
	return removed
}

// Close stops cleanup and persists the disk index.
func (s *Store) Close() error {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	s.wg.Wait()

	if err := s.disk.Close(); err != nil {
		return fmt.Errorf("failed to close disk cache: %w", err)
	}
	return nil
}

func (s *Store) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Cleanup()
		case <-s.stop:
			return
		}
	}
}
