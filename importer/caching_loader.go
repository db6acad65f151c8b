package importer

import (
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"
)

var errFetchMissing = errors.New("importer: resource not found")

// CachingLoader wraps a Loader with a singleflight.Group so that repeated
// fetches of the same canonical path — common across a large import graph
// with a shared dependency — collapse into a single underlying call, and
// the result (hit or miss) is remembered for later fetches.
type CachingLoader struct {
	inner Loader
	group singleflight.Group

	mu     sync.Mutex
	hits   map[string][]byte
	misses map[string]bool
}

// NewCachingLoader wraps inner.
func NewCachingLoader(inner Loader) *CachingLoader {
	return &CachingLoader{
		inner:  inner,
		hits:   make(map[string][]byte),
		misses: make(map[string]bool),
	}
}

// Fetch implements Loader.
func (c *CachingLoader) Fetch(path string) ([]byte, bool) {
	c.mu.Lock()
	if b, ok := c.hits[path]; ok {
		c.mu.Unlock()
		return b, true
	}
	if c.misses[path] {
		c.mu.Unlock()
		return nil, false
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(path, func() (any, error) {
		b, ok := c.inner.Fetch(path)
		if !ok {
			return nil, errFetchMissing
		}
		return b, nil
	})

	if err != nil {
		c.mu.Lock()
		c.misses[path] = true
		c.mu.Unlock()
		return nil, false
	}

	b := v.([]byte)
	c.mu.Lock()
	c.hits[path] = b
	c.mu.Unlock()
	return b, true
}
