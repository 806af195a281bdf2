package cache

import (
	"errors"
	"testing"
	"time"
)

func TestMemoryCache_LRUEviction(t *testing.T) {
	c := NewMemoryCache(10)

	_ = c.Put("a", []byte("aaaa"))
	_ = c.Put("b", []byte("bbbb"))
	if _, ok := c.Get("a"); !ok {
		t.Fatal("Get(a) missed")
	}
	// b is now least recently used.
	if err := c.Put("c", []byte("cccc")); err != nil {
		t.Fatalf("Put(c) error = %v", err)
	}

	if c.Contains("b") {
		t.Error("b should have been evicted")
	}
	if !c.Contains("a") || !c.Contains("c") {
		t.Error("a and c should remain")
	}
	if got := c.Size(); got != 8 {
		t.Errorf("Size() = %d, want 8", got)
	}
	if got := c.Stats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
}

func TestMemoryCache_Replace(t *testing.T) {
	c := NewMemoryCache(100)
	_ = c.Put("k", []byte("short"))
	_ = c.Put("k", []byte("a bit longer"))

	got, ok := c.Get("k")
	if !ok || string(got) != "a bit longer" {
		t.Errorf("Get(k) = %q, %v", got, ok)
	}
	if c.Size() != int64(len("a bit longer")) {
		t.Errorf("Size() = %d after replace", c.Size())
	}
}

func TestMemoryCache_TooLarge(t *testing.T) {
	c := NewMemoryCache(4)
	if err := c.Put("k", []byte("12345")); !errors.Is(err, ErrItemTooLarge) {
		t.Errorf("Put() error = %v, want ErrItemTooLarge", err)
	}
}

func TestMemoryCache_StatsAndPrune(t *testing.T) {
	c := NewMemoryCache(100)
	_ = c.Put("k", []byte("v"))
	c.Get("k")
	c.Get("missing")

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.HitRate != 0.5 {
		t.Errorf("Stats() = %+v", s)
	}

	if meta, ok := c.Metadata("k"); !ok || meta.Hits != 1 || meta.Level != LevelMemory {
		t.Errorf("Metadata(k) = %+v, %v", meta, ok)
	}

	if n := c.Prune(time.Hour); n != 0 {
		t.Errorf("Prune(1h) = %d, want 0", n)
	}
	if n := c.Prune(-time.Second); n != 1 {
		t.Errorf("Prune(-1s) = %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d after prune", c.Size())
	}
}
