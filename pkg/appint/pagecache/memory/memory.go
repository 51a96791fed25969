package memory

import (
	"context"
	"sync"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/internalerr"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/pagecache"
)

// Cache is an in-memory implementation of pagecache.Cache for tests.
type Cache struct {
	mu     sync.RWMutex
	pages  map[string]pagecache.Page
	closed bool
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{pages: make(map[string]pagecache.Page)}
}

// Close implements pagecache.Cache.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Get implements pagecache.Cache.
func (c *Cache) Get(ctx context.Context, url string) (pagecache.Page, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return pagecache.Page{}, false, internalerr.ErrCacheClosed
	}
	p, ok := c.pages[url]
	return p, ok, nil
}

// Put implements pagecache.Cache. Pages without a URL are ignored.
func (c *Cache) Put(ctx context.Context, p pagecache.Page) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return internalerr.ErrCacheClosed
	}
	if p.URL == "" {
		return nil
	}
	c.pages[p.URL] = p
	return nil
}

// Delete implements pagecache.Cache.
func (c *Cache) Delete(ctx context.Context, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return internalerr.ErrCacheClosed
	}
	delete(c.pages, url)
	return nil
}

// Len returns the number of cached pages.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pages)
}
