package cache

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"
)

const (
	indexFile = "takes.index"

	// Values at or below this size are stored uncompressed.
	minCompressSize = 1024
)

// DiskCache persists values as files under a directory, compressing them
// with zstd. A gob index survives restarts.
type DiskCache struct {
	dir      string
	capacity int64
	size     int64

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	index map[string]*diskEntry

	mu    sync.Mutex
	stats Stats
}

type diskEntry struct {
	Key          string
	FilePath     string
	Size         int64 // on disk
	OriginalSize int64
	Timestamp    time.Time
	LastAccess   time.Time
	Hits         int64
	Compressed   bool
}

// NewDiskCache opens or creates a disk cache in dir. A compressionLevel of 0
// stores values as-is.
func NewDiskCache(dir string, capacity int64, compressionLevel int) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dc := &DiskCache{
		dir:      dir,
		capacity: capacity,
		index:    make(map[string]*diskEntry),
		stats:    Stats{Capacity: capacity},
	}

	if compressionLevel > 0 {
		var err error
		dc.encoder, err = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		dc.decoder, err = zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
	}

	if err := dc.loadIndex(); err != nil {
		log.Warn("Discarding unreadable cache index", "dir", dir, "error", err)
		dc.index = make(map[string]*diskEntry)
	}
	dc.dropMissing()
	for _, e := range dc.index {
		dc.size += e.Size
	}

	return dc, nil
}

// Get reads a value from disk. Entries whose file vanished or fails to
// decompress are dropped and count as misses.
func (dc *DiskCache) Get(key string) ([]byte, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	data, ok := dc.readLocked(key)
	if !ok {
		dc.stats.Misses++
		return nil, false
	}
	dc.stats.Hits++
	dc.stats.LastAccess = time.Now()
	return data, true
}

func (dc *DiskCache) readLocked(key string) ([]byte, bool) {
	entry, ok := dc.index[key]
	if !ok {
		return nil, false
	}

	data, err := os.ReadFile(entry.FilePath)
	if err == nil && entry.Compressed {
		if dc.decoder == nil {
			err = errors.New("compressed entry without decoder")
		} else {
			data, err = dc.decoder.DecodeAll(data, nil)
		}
	}
	if err != nil {
		log.Debug("Dropping unreadable cache entry", "key", key, "error", err)
		dc.removeLocked(key, entry)
		return nil, false
	}

	entry.LastAccess = time.Now()
	entry.Hits++
	return data, true
}

// Put writes a value, evicting least recently used entries to fit.
func (dc *DiskCache) Put(key string, value []byte) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	data := value
	compressed := false
	if dc.encoder != nil && len(value) > minCompressSize {
		if c := dc.encoder.EncodeAll(value, nil); len(c) < len(value) {
			data = c
			compressed = true
		}
	}

	n := int64(len(data))
	if n > dc.capacity {
		return ErrItemTooLarge
	}

	if existing, ok := dc.index[key]; ok {
		dc.removeLocked(key, existing)
	}
	for dc.size+n > dc.capacity && len(dc.index) > 0 {
		dc.evictOldestLocked()
	}

	path := dc.pathFor(key)
	if err := writeAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	now := time.Now()
	dc.index[key] = &diskEntry{
		Key:          key,
		FilePath:     path,
		Size:         n,
		OriginalSize: int64(len(value)),
		Timestamp:    now,
		LastAccess:   now,
		Compressed:   compressed,
	}
	dc.size += n
	return nil
}

// Delete removes a key.
func (dc *DiskCache) Delete(key string) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if entry, ok := dc.index[key]; ok {
		dc.removeLocked(key, entry)
	}
	return nil
}

// Clear removes every entry and persists the empty index.
func (dc *DiskCache) Clear() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	for key, entry := range dc.index {
		dc.removeLocked(key, entry)
	}
	return dc.saveIndex()
}

// Contains reports whether key is indexed.
func (dc *DiskCache) Contains(key string) bool {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	_, ok := dc.index[key]
	return ok
}

// Size returns the bytes used on disk.
func (dc *DiskCache) Size() int64 {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.size
}

// Stats returns a snapshot of the counters.
func (dc *DiskCache) Stats() Stats {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	s := dc.stats
	s.Size = dc.size
	s.ItemCount = int64(len(dc.index))
	s.updateHitRate()
	return s
}

// Metadata returns the metadata of a cached key.
func (dc *DiskCache) Metadata(key string) (Metadata, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	entry, ok := dc.index[key]
	if !ok {
		return Metadata{}, false
	}
	return entry.metadata(), true
}

// LRU returns up to n entries, least recently used first.
func (dc *DiskCache) LRU(n int) []Metadata {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	entries := make([]*diskEntry, 0, len(dc.index))
	for _, e := range dc.index {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastAccess.Before(entries[j].LastAccess)
	})

	out := make([]Metadata, 0, min(n, len(entries)))
	for i := 0; i < n && i < len(entries); i++ {
		out = append(out, entries[i].metadata())
	}
	return out
}

// RemoveOlderThan removes entries written before cutoff.
func (dc *DiskCache) RemoveOlderThan(cutoff time.Time) int {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	removed := 0
	for key, entry := range dc.index {
		if entry.Timestamp.Before(cutoff) {
			dc.removeLocked(key, entry)
			removed++
		}
	}
	return removed
}

// Close persists the index.
func (dc *DiskCache) Close() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.encoder != nil {
		_ = dc.encoder.Close()
	}
	if dc.decoder != nil {
		dc.decoder.Close()
	}
	return dc.saveIndex()
}

func (e *diskEntry) metadata() Metadata {
	return Metadata{
		Key:        e.Key,
		Size:       e.OriginalSize,
		Timestamp:  e.Timestamp,
		LastAccess: e.LastAccess,
		Hits:       e.Hits,
		Level:      LevelDisk,
	}
}

func (dc *DiskCache) pathFor(key string) string {
	return filepath.Join(dc.dir, key+".take")
}

func (dc *DiskCache) removeLocked(key string, entry *diskEntry) {
	_ = os.Remove(entry.FilePath)
	delete(dc.index, key)
	dc.size -= entry.Size
}

func (dc *DiskCache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, e := range dc.index {
		if oldestKey == "" || e.LastAccess.Before(oldest) {
			oldestKey, oldest = key, e.LastAccess
		}
	}
	if oldestKey == "" {
		return
	}
	dc.removeLocked(oldestKey, dc.index[oldestKey])
	dc.stats.Evictions++
	dc.stats.LastEvict = time.Now()
}

func (dc *DiskCache) dropMissing() {
	for key, e := range dc.index {
		if _, err := os.Stat(e.FilePath); err != nil {
			delete(dc.index, key)
		}
	}
}

func (dc *DiskCache) loadIndex() error {
	f, err := os.Open(filepath.Join(dc.dir, indexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	return gob.NewDecoder(f).Decode(&dc.index)
}

func (dc *DiskCache) saveIndex() error {
	path := filepath.Join(dc.dir, indexFile)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	err = gob.NewEncoder(f).Encode(dc.index)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// writeAtomic writes to a temp file and renames it into place.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
