package search

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of matchers a Cache holds by default.
const DefaultCacheSize = 128

// cacheKey identifies a built matcher.
type cacheKey struct {
	alg     Algorithm
	config  Config
	pattern string
}

// Cache keeps recently built single-pattern matchers so repeated searches
// for the same pattern skip preprocessing. It is safe for concurrent use.
type Cache struct {
	matchers *lru.Cache[cacheKey, Matcher]
	config   Config
	hits     atomic.Uint64
	misses   atomic.Uint64
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Size   int    `json:"size" yaml:"size"`
	Hits   uint64 `json:"hits" yaml:"hits"`
	Misses uint64 `json:"misses" yaml:"misses"`
}

// NewCache creates a cache holding up to size matchers built with config.
// A non-positive size selects DefaultCacheSize.
func NewCache(size int, config Config) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	matchers, err := lru.New[cacheKey, Matcher](size)
	if err != nil {
		return nil, err
	}
	return &Cache{matchers: matchers, config: config}, nil
}

// Get returns a matcher for pattern and alg, building and caching it on a miss.
func (c *Cache) Get(pattern []byte, alg Algorithm) (Matcher, error) {
	key := cacheKey{alg: alg, config: c.config, pattern: string(pattern)}
	if m, ok := c.matchers.Get(key); ok {
		c.hits.Add(1)
		return m, nil
	}
	c.misses.Add(1)

	m, err := BuildSinglePatternMatcherWithConfig(pattern, alg, c.config)
	if err != nil {
		return nil, err
	}
	c.matchers.Add(key, m)
	return m, nil
}

// Len returns the number of cached matchers.
func (c *Cache) Len() int {
	return c.matchers.Len()
}

// Purge drops every cached matcher.
func (c *Cache) Purge() {
	c.matchers.Purge()
}

// Stats returns the current size and hit counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Size:   c.matchers.Len(),
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}
