package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching raw upstream responses
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey derives a cache key from a request payload (e.g. the
// canonical JSON of an assessment form)
func CacheKey(payload []byte) string {
	hash := sha256.Sum256(payload)
	return "vitalscan:v1:" + hex.EncodeToString(hash[:])
}

// Noop is a Cache that stores nothing
type Noop struct{}

// Get always misses
func (Noop) Get(string) ([]byte, bool) { return nil, false }

// Set discards the value
func (Noop) Set(string, []byte, time.Duration) error { return nil }

// Delete does nothing
func (Noop) Delete(string) error { return nil }

// Clear does nothing
func (Noop) Clear() error { return nil }
