package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/internalerr"
)

// DefaultUserAgents are rotated per request.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) Edge/120.0.0.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// browserHeaders are sent with every request. Accept-Encoding is left to
// the transport so compressed bodies are decoded transparently.
var browserHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.5",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
	"Cache-Control":             "no-cache",
	"Pragma":                    "no-cache",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
	"DNT":                       "1",
}

// Options tune an HTTPFetcher. Zero fields take the defaults shown.
type Options struct {
	MinDelay       time.Duration // 5s; politeness delay before every attempt
	MaxDelay       time.Duration // 10s
	MaxRetries     int           // 5; negative disables retries
	MaxTotalDelay  time.Duration // 10m; cumulative backoff budget per request
	Timeout        time.Duration // 30s per attempt
	InitialBackoff time.Duration // 1s
	MaxBackoff     time.Duration // 5m
	UserAgents     []string
	Logger         *slog.Logger

	// Sleep waits for d or until ctx is done. Tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (o Options) withDefaults() Options {
	if o.MinDelay == 0 {
		o.MinDelay = 5 * time.Second
	}
	if o.MaxDelay == 0 {
		o.MaxDelay = 10 * time.Second
	}
	if o.MaxDelay < o.MinDelay {
		o.MaxDelay = o.MinDelay
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = 5
	}
	if o.MaxTotalDelay == 0 {
		o.MaxTotalDelay = 10 * time.Minute
	}
	if o.Timeout == 0 {
		o.Timeout = 30 * time.Second
	}
	if o.InitialBackoff == 0 {
		o.InitialBackoff = time.Second
	}
	if o.MaxBackoff == 0 {
		o.MaxBackoff = 5 * time.Minute
	}
	if len(o.UserAgents) == 0 {
		o.UserAgents = DefaultUserAgents
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Sleep == nil {
		o.Sleep = sleepCtx
	}
	return o
}

// HTTPFetcher fetches pages with politeness delays and bounded retries.
// Safe for concurrent use.
type HTTPFetcher struct {
	http *resty.Client
	opts Options
}

// NewHTTPFetcher creates a fetcher.
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	opts = opts.withDefaults()

	client := resty.New()
	client.SetTimeout(opts.Timeout)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	client.SetHeaders(browserHeaders)

	return &HTTPFetcher{http: client, opts: opts}
}

// Fetch retrieves req.URL. 429, 5xx and transport errors are retried with
// exponential backoff until MaxRetries or the MaxTotalDelay budget runs
// out; other non-2xx statuses fail immediately.
func (f *HTTPFetcher) Fetch(ctx context.Context, req Request) Result {
	o := f.opts
	res := Result{URL: req.URL}
	log := o.Logger.With("url", req.URL)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = o.InitialBackoff
	b.MaxInterval = o.MaxBackoff
	b.MaxElapsedTime = 0
	b.Reset()

	var waited time.Duration
	for {
		if err := o.Sleep(ctx, f.politeness()); err != nil {
			res.Error = err
			return res
		}

		res.Attempts++
		status, body, err := f.do(ctx, req)
		res.StatusCode = status

		switch {
		case err == nil && status >= 200 && status < 300:
			res.Success = true
			res.Content = body
			res.Error = nil
			return res
		case err == nil && !retryable(status):
			res.Error = fmt.Errorf("status %d: %w", status, internalerr.ErrFetchFailed)
			log.Warn("fetch failed", "status", status)
			return res
		case err != nil:
			if ctx.Err() != nil {
				res.Error = ctx.Err()
				return res
			}
			res.Error = fmt.Errorf("%v: %w", err, internalerr.ErrFetchFailed)
		default:
			res.Error = fmt.Errorf("status %d: %w", status, internalerr.ErrFetchFailed)
		}

		if res.Attempts > o.MaxRetries {
			res.Error = fmt.Errorf("%d attempts, last: %v: %w", res.Attempts, res.Error, internalerr.ErrRetryBudget)
			log.Warn("giving up", "attempts", res.Attempts)
			return res
		}
		delay := b.NextBackOff()
		if waited+delay > o.MaxTotalDelay {
			res.Error = fmt.Errorf("backoff budget %s spent, last: %v: %w", o.MaxTotalDelay, res.Error, internalerr.ErrRetryBudget)
			log.Warn("giving up", "attempts", res.Attempts, "waited", waited)
			return res
		}
		waited += delay
		log.Info("retrying", "attempt", res.Attempts, "status", status, "backoff", delay)
		if err := o.Sleep(ctx, delay); err != nil {
			res.Error = err
			return res
		}
	}
}

func (f *HTTPFetcher) do(ctx context.Context, req Request) (int, string, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	r := f.http.R().
		SetContext(ctx).
		SetHeader("User-Agent", f.userAgent()).
		SetHeaders(req.Headers)
	resp, err := r.Get(req.URL)
	if err != nil {
		return 0, "", err
	}
	return resp.StatusCode(), resp.String(), nil
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func (f *HTTPFetcher) politeness() time.Duration {
	lo, hi := f.opts.MinDelay, f.opts.MaxDelay
	if hi <= lo {
		return lo
	}
	return lo + rand.N(hi-lo+1)
}

func (f *HTTPFetcher) userAgent() string {
	ua := f.opts.UserAgents
	return ua[rand.IntN(len(ua))]
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
