// Package cache stores rendered takes. A Store layers an in-memory LRU (L1)
// over a zstd-compressed disk cache (L2) with TTL cleanup.
package cache
