package graph

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of files a ParseCache remembers.
const DefaultCacheSize = 4096

// cacheKey identifies one version of a file on disk.
type cacheKey struct {
	path    string
	modTime int64 // UnixNano
	size    int64
}

// cacheEntry is what a file yields before resolution. Resolution is never
// cached because it depends on the rest of the tree.
type cacheEntry struct {
	imports []RawImport
	loc     int
}

// ParseCache remembers extracted imports per (path, mtime, size). It is safe
// for concurrent use and only changes how fast a build runs, never its result.
type ParseCache struct {
	entries *lru.Cache[cacheKey, cacheEntry]
}

// NewParseCache creates a cache holding up to size files.
func NewParseCache(size int) (*ParseCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[cacheKey, cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &ParseCache{entries: c}, nil
}

func (c *ParseCache) get(k cacheKey) (cacheEntry, bool) {
	if c == nil {
		return cacheEntry{}, false
	}
	return c.entries.Get(k)
}

func (c *ParseCache) put(k cacheKey, e cacheEntry) {
	if c == nil {
		return
	}
	c.entries.Add(k, e)
}

// Len returns the number of cached files.
func (c *ParseCache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}
