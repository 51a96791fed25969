package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/internalerr"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/pagecache"
)

// Caching serves fetches from a page cache and stores successful and
// not-found responses. Cache failures are logged and bypassed.
type Caching struct {
	Fetcher Fetcher
	Cache   pagecache.Cache
	MaxAge  time.Duration // zero keeps pages forever
	Now     func() time.Time
	Logger  *slog.Logger
}

func (c *Caching) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Caching) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Fetch implements Fetcher.
func (c *Caching) Fetch(ctx context.Context, req Request) Result {
	page, found, err := c.Cache.Get(ctx, req.URL)
	if err != nil {
		c.logger().Warn("page cache read failed", "url", req.URL, "err", err)
	}
	if found && page.Fresh(c.now(), c.MaxAge) {
		return cachedResult(page)
	}

	res := c.Fetcher.Fetch(ctx, req)
	if res.Success || res.StatusCode == http.StatusNotFound {
		err := c.Cache.Put(ctx, pagecache.Page{
			URL:        req.URL,
			StatusCode: res.StatusCode,
			Content:    res.Content,
			FetchedAt:  c.now(),
		})
		if err != nil {
			c.logger().Warn("page cache write failed", "url", req.URL, "err", err)
		}
	}
	return res
}

func cachedResult(p pagecache.Page) Result {
	res := Result{URL: p.URL, StatusCode: p.StatusCode, Cached: true}
	if p.StatusCode >= 200 && p.StatusCode < 300 {
		res.Success = true
		res.Content = p.Content
		return res
	}
	res.Error = fmt.Errorf("cached status %d: %w", p.StatusCode, internalerr.ErrFetchFailed)
	return res
}
