// Package fetch retrieves app listing pages over HTTP and extracts the
// text sections that mention integrations.
//
// Fetching is the only concurrent and the only networked part of the
// pipeline. Failures are reported per request in Result and never abort a
// batch.
package fetch

import (
	"context"
	"time"
)

// Request describes one page fetch.
type Request struct {
	URL     string
	Headers map[string]string // merged over the fetcher's default headers
	Timeout time.Duration     // per attempt; zero uses the fetcher default
}

// Result is the outcome of a fetch. Error is nil iff Success.
type Result struct {
	URL        string
	Success    bool
	StatusCode int
	Content    string
	Error      error
	Attempts   int
	Cached     bool
}

// Fetcher retrieves pages.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) Result
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, req Request) Result

func (f FetcherFunc) Fetch(ctx context.Context, req Request) Result {
	return f(ctx, req)
}
