// Package cache stores search responses and fetched page text so repeated
// keyword hunts do not burn provider quota.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a namespaced cache key from an arbitrary value (a search
// query, a page URL)
func Key(namespace, value string) string {
	hash := sha256.Sum256([]byte(value))
	return "leadscout:v1:" + namespace + ":" + hex.EncodeToString(hash[:])
}
