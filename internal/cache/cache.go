package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching normalized documents
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// KeyVersion changes whenever normalization output changes for the same input
const KeyVersion = "v2"

// CacheKey generates a cache key from the parts that determine a normalized
// document: typically the strict flag and the raw document content.
func CacheKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return "scriptcorpus-" + KeyVersion + "-" + hex.EncodeToString(h.Sum(nil))
}
