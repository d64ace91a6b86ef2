package nltkdata

import (
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"
)

type cacheKey struct {
	url    string
	format Format
}

// ResourceCache stores loaded resource values keyed by (normalized URL,
// format). Entries are never evicted automatically; Clear drops them all.
//
// The cache is safe for concurrent use, and concurrent loads of the same
// key are collapsed into a single underlying load.
type ResourceCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]any
	group   singleflight.Group
}

// NewResourceCache returns an empty cache.
func NewResourceCache() *ResourceCache {
	return &ResourceCache{entries: make(map[cacheKey]any)}
}

// Get returns the cached value for the given URL and format.
func (c *ResourceCache) Get(url string, format Format) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[cacheKey{url, format}]
	return v, ok
}

// Put stores a value. Values without a stable identity (functions and
// channels) are silently not cached.
func (c *ResourceCache) Put(url string, format Format, value any) {
	if !cacheable(value) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{url, format}] = value
}

// Clear removes all cached values.
func (c *ResourceCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]any)
}

// Len returns the number of cached values.
func (c *ResourceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// do runs fn once for concurrent callers sharing the same key, consulting
// the cache first and inserting on success.
func (c *ResourceCache) do(url string, format Format, fn func() (any, error)) (any, error) {
	if v, ok := c.Get(url, format); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(fmt.Sprintf("%s\x00%s", url, format), func() (any, error) {
		if v, ok := c.Get(url, format); ok {
			return v, nil
		}
		v, err := fn()
		if err != nil {
			return nil, err
		}
		c.Put(url, format, v)
		return v, nil
	})
	return v, err
}

func cacheable(value any) bool {
	switch reflect.ValueOf(value).Kind() {
	case reflect.Func, reflect.Chan, reflect.Invalid:
		return false
	default:
		return true
	}
}
