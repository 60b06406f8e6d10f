package chain

import (
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// CodeHashCache maps contract addresses to code hashes. Code hashes only change
// on migration, so entries live for a long TTL.
type CodeHashCache struct {
	entries *cache.Cache
}

// NewCodeHashCache creates a cache whose entries expire after ttl. A ttl of
// zero or less keeps entries forever.
func NewCodeHashCache(ttl time.Duration) *CodeHashCache {
	if ttl <= 0 {
		return &CodeHashCache{entries: cache.New(cache.NoExpiration, 0)}
	}
	return &CodeHashCache{entries: cache.New(ttl, 2*ttl)}
}

// Get returns the cached hash for address.
func (c *CodeHashCache) Get(address string) (string, bool) {
	v, ok := c.entries.Get(address)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Set stores hash for address, normalized to lowercase without a 0x prefix.
func (c *CodeHashCache) Set(address, hash string) {
	c.entries.Set(address, NormalizeCodeHash(hash), cache.DefaultExpiration)
}

// Delete drops address from the cache.
func (c *CodeHashCache) Delete(address string) {
	c.entries.Delete(address)
}

// Len returns the number of live entries.
func (c *CodeHashCache) Len() int {
	return c.entries.ItemCount()
}

// NormalizeCodeHash lowercases hash and strips a 0x prefix.
func NormalizeCodeHash(hash string) string {
	hash = strings.ToLower(strings.TrimSpace(hash))
	return strings.TrimPrefix(hash, "0x")
}
