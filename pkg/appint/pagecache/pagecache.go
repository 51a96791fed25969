// Package pagecache stores fetched app listing pages keyed by URL so that
// repeated runs do not hit the app store again.
package pagecache

import (
	"context"
	"time"
)

// Cache is the page store used by the fetcher.
type Cache interface {
	Close() error

	// Get returns the cached page for url. found is false on a miss.
	Get(ctx context.Context, url string) (p Page, found bool, err error)

	// Put inserts or replaces the page for p.URL.
	Put(ctx context.Context, p Page) error

	// Delete removes the page for url. Deleting a missing page is not an error.
	Delete(ctx context.Context, url string) error
}

// Page is a cached fetch response.
type Page struct {
	URL        string
	StatusCode int
	Content    string
	FetchedAt  time.Time
}

// Fresh reports whether the page is younger than maxAge at now.
// A non-positive maxAge means pages never expire.
func (p Page) Fresh(now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return true
	}
	return now.Sub(p.FetchedAt) < maxAge
}
