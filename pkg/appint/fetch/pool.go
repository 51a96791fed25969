package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/internalerr"
)

// DefaultConcurrency bounds simultaneous requests to the app store.
const DefaultConcurrency = 2

// Pool fetches batches of URLs with bounded concurrency.
type Pool struct {
	Fetcher     Fetcher
	Concurrency int
	Logger      *slog.Logger
}

// FetchAll fetches every request and returns results in request order.
// Individual failures stay in their Result; only context cancellation is
// returned as an error.
func (p *Pool) FetchAll(ctx context.Context, reqs []Request) ([]Result, error) {
	limit := p.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}

	results := make([]Result, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{URL: req.URL, Error: err}
				return err
			}
			results[i] = p.Fetcher.Fetch(gctx, req)
			if !results[i].Success {
				log.Debug("fetch unsuccessful", "url", req.URL, "err", results[i].Error)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

// Lookup is the outcome of one FindPages entry.
type Lookup struct {
	Candidates []string
	Page       Page // zero unless Err is nil
	Err        error
}

// FindPages runs FindAppPage over every candidate list with bounded
// concurrency and returns lookups in input order. A missing listing stays
// in its Lookup; only context cancellation is returned as an error.
func (p *Pool) FindPages(ctx context.Context, candidates [][]string) ([]Lookup, error) {
	limit := p.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}

	out := make([]Lookup, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, urls := range candidates {
		out[i].Candidates = urls
		g.Go(func() error {
			page, err := FindAppPage(gctx, p.Fetcher, urls)
			if err != nil && gctx.Err() != nil {
				out[i].Err = gctx.Err()
				return gctx.Err()
			}
			out[i].Page, out[i].Err = page, err
			if err != nil {
				log.Debug("no listing page", "candidates", len(urls), "err", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, ctx.Err()
}

// FindAppPage tries urls in order and returns the first one that parses
// as an app listing.
func FindAppPage(ctx context.Context, f Fetcher, urls []string) (Page, error) {
	var errs []error
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return Page{}, err
		}
		res := f.Fetch(ctx, Request{URL: u})
		if !res.Success {
			if res.Error != nil {
				errs = append(errs, res.Error)
			}
			continue
		}
		page, err := ParsePage([]byte(res.Content), "text/html")
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", u, err))
			continue
		}
		if !page.Valid {
			continue
		}
		page.URL = u
		return page, nil
	}
	return Page{}, fmt.Errorf("no app page among %d candidates: %w", len(urls), errors.Join(append([]error{internalerr.ErrNotFound}, errs...)...))
}
