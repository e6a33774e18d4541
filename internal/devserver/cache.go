package devserver

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/sfckit/sfcc/internal/compiler"
)

// DefaultCacheSize bounds the number of compile results kept in memory.
const DefaultCacheSize = 256

// Cache memoizes compile results by filename and content.
type Cache struct {
	results *lru.Cache[string, cacheEntry]
}

type cacheEntry struct {
	source string
	result *compiler.Result
}

// cacheKey hashes the filename and content with the full 64-bit digest.
func cacheKey(filename, source string) string {
	return fmt.Sprintf("%s\x00%016x", filename, xxhash.Sum64String(filename+source))
}

// NewCache creates a cache holding up to size results.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	results, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("creating compile cache: %w", err)
	}
	return &Cache{results: results}, nil
}

// Compile returns the cached result for (filename, source) or compiles it.
// hit reports whether the result came from the cache. An entry whose
// source differs from source is a hash collision and is recompiled.
func (c *Cache) Compile(source string, opts compiler.Options) (res *compiler.Result, hit bool) {
	key := cacheKey(opts.Filename, source)
	if e, ok := c.results.Get(key); ok && e.source == source {
		return e.result, true
	}
	res = compiler.Compile(source, opts)
	c.results.Add(key, cacheEntry{source: source, result: res})
	return res, false
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	return c.results.Len()
}
