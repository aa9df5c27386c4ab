package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// NoExpiration stores a value until it is deleted
const NoExpiration time.Duration = -1

// Cache is a key-value substrate. The ledger persists its whole history as one
// serialized blob under a single key, so no query capability is assumed.
//
// Get distinguishes a missing key (found=false, err=nil) from a failed read
// (err!=nil); callers must not treat a failed read as an empty value.
type Cache interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a namespaced key from its parts
func Key(parts ...string) string {
	return "wastewise:v1:" + strings.Join(parts, ":")
}

// HashKey builds a namespaced key from arbitrary content
func HashKey(prefix string, content []byte) string {
	hash := sha256.Sum256(content)
	return Key(prefix, hex.EncodeToString(hash[:]))
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
