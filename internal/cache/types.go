package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

var (
	// ErrItemTooLarge is returned when an item exceeds the cache capacity.
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCacheMiss is returned when an item is not found in cache.
	ErrCacheMiss = errors.New("cache miss")
)

// Level is the cache tier an item came from.
type Level int

const (
	// LevelMemory is the in-process LRU.
	LevelMemory Level = iota

	// LevelDisk is the persistent store.
	LevelDisk
)

func (l Level) String() string {
	switch l {
	case LevelMemory:
		return "memory"
	case LevelDisk:
		return "disk"
	default:
		return "unknown"
	}
}

// Stats holds cache counters.
type Stats struct {
	Capacity  int64
	Size      int64
	ItemCount int64

	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64

	LastAccess time.Time
	LastEvict  time.Time
}

func (s *Stats) updateHitRate() {
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
}

// Metadata describes a cached item.
type Metadata struct {
	Key        string
	Size       int64 // uncompressed
	Timestamp  time.Time
	LastAccess time.Time
	Hits       int64
	Level      Level
}

// Config holds Store settings.
type Config struct {
	MemoryCapacity   int64  // bytes
	DiskCapacity     int64  // bytes
	Dir              string // directory for cache files
	CompressionLevel int    // zstd level, 0 disables compression

	TTL             time.Duration // age after which items expire, 0 keeps forever
	CleanupInterval time.Duration // 0 disables the cleanup goroutine
}

// DefaultConfig returns the settings used when the config file is silent.
func DefaultConfig() Config {
	return Config{
		MemoryCapacity:   64 * 1024 * 1024,
		DiskCapacity:     512 * 1024 * 1024,
		CompressionLevel: 3,
		TTL:              7 * 24 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}

// Cache is implemented by each tier.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
	Delete(key string) error
	Clear() error
	Contains(key string) bool
	Size() int64
	Stats() Stats
}

// TakeKey derives the key for a render of the source identified by
// sourceHash with the effect configuration described by effect.
func TakeKey(sourceHash, effect string) string {
	sum := sha256.Sum256([]byte(sourceHash + "|" + effect))
	return hex.EncodeToString(sum[:16])
}

// HashFile returns the hex sha256 of a file's contents.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for hashing: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
