package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// Hasher derives the OSDb hash and byte size of a local file.
type Hasher interface {
	Hash(filePath string) (hash string, byteSize int64, err error)
}

type hashEntry struct {
	hash string
	size int64
}

// CachingHasher memoizes another Hasher. Entries are keyed by absolute path,
// size and modification time, so a rewritten file is hashed again.
type CachingHasher struct {
	inner Hasher
	cache *lru.LRU[string, hashEntry]
}

// NewCachingHasher wraps inner with an expirable LRU of the given size and TTL.
// A zero ttl keeps entries until they are evicted by size.
func NewCachingHasher(inner Hasher, size int, ttl time.Duration) *CachingHasher {
	if inner == nil {
		inner = OSDbHasher{}
	}
	if size <= 0 {
		size = 256
	}
	return &CachingHasher{
		inner: inner,
		cache: lru.NewLRU[string, hashEntry](size, nil, ttl),
	}
}

// Hash returns the cached hash for filePath or computes and stores it.
func (c *CachingHasher) Hash(filePath string) (string, int64, error) {
	key, err := cacheKey(filePath)
	if err != nil {
		return "", 0, err
	}
	if entry, ok := c.cache.Get(key); ok {
		return entry.hash, entry.size, nil
	}

	hash, size, err := c.inner.Hash(filePath)
	if err != nil {
		return "", 0, err
	}
	c.cache.Add(key, hashEntry{hash: hash, size: size})
	return hash, size, nil
}

// Len reports the number of cached entries.
func (c *CachingHasher) Len() int {
	return c.cache.Len()
}

func cacheKey(filePath string) (string, error) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path '%s': %w", filePath, err)
	}
	stat, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("failed to stat file '%s': %w", filePath, err)
	}
	return fmt.Sprintf("%s|%d|%d", abs, stat.Size(), stat.ModTime().UnixNano()), nil
}
