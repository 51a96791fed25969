package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/internalerr"
)

// SitemapPath is the app store sitemap, relative to AppStoreBase.
const SitemapPath = "/sitemap.xml"

// top-level store paths that are not listings
var reservedPaths = map[string]struct{}{
	"categories":        {},
	"collections":       {},
	"stories":           {},
	"partners":          {},
	"built-in-features": {},
}

// IsDirectAppURL reports whether raw is a top-level listing such as
// https://apps.shopify.com/klaviyo-email-marketing. Category, collection,
// story and partner pages and anything nested below a listing are
// rejected.
func IsDirectAppURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !strings.EqualFold(u.Hostname(), "apps.shopify.com") {
		return false
	}
	path := strings.Trim(u.Path, "/")
	if path == "" || strings.Contains(path, "/") {
		return false
	}
	_, reserved := reservedPaths[strings.ToLower(path)]
	return !reserved
}

// Sitemap is a parsed sitemap document.
type Sitemap struct {
	Pages    []string // <url><loc> entries
	Children []string // <sitemap><loc> entries of a sitemap index
}

// ParseSitemap reads a sitemap or a sitemap index. Image and other
// namespaced locations are ignored.
func ParseSitemap(content []byte) (Sitemap, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return Sitemap{}, fmt.Errorf("parse sitemap: %w", err)
	}
	var sm Sitemap
	doc.Find("url > loc").Each(func(_ int, s *goquery.Selection) {
		if u := strings.TrimSpace(s.Text()); u != "" {
			sm.Pages = append(sm.Pages, u)
		}
	})
	doc.Find("sitemap > loc").Each(func(_ int, s *goquery.Selection) {
		if u := strings.TrimSpace(s.Text()); u != "" {
			sm.Children = append(sm.Children, u)
		}
	})
	return sm, nil
}

// SitemapURLs fetches the sitemap at sitemapURL, follows one level of
// sitemap index and returns the direct listing URLs in document order,
// cleaned and without duplicates.
//
// An unreadable child sitemap is skipped; the call fails with
// internalerr.ErrNotFound only when no listing was found at all.
func SitemapURLs(ctx context.Context, f Fetcher, sitemapURL string) ([]string, error) {
	root, err := fetchSitemap(ctx, f, sitemapURL)
	if err != nil {
		return nil, err
	}

	pages := root.Pages
	var errs []error
	for _, child := range root.Children {
		sm, err := fetchSitemap(ctx, f, child)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			errs = append(errs, err)
			continue
		}
		pages = append(pages, sm.Pages...)
	}

	seen := make(map[string]struct{}, len(pages))
	var out []string
	for _, p := range pages {
		if !IsDirectAppURL(p) {
			continue
		}
		clean, ok := CleanURL(p)
		if !ok {
			continue
		}
		if _, dup := seen[clean]; dup {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	if len(out) == 0 {
		errs = append([]error{internalerr.ErrNotFound}, errs...)
		return nil, fmt.Errorf("sitemap %s lists no app pages: %w", sitemapURL, errors.Join(errs...))
	}
	return out, nil
}

func fetchSitemap(ctx context.Context, f Fetcher, u string) (Sitemap, error) {
	res := f.Fetch(ctx, Request{URL: u})
	if !res.Success {
		return Sitemap{}, fmt.Errorf("sitemap %s: %w", u, res.Error)
	}
	return ParseSitemap([]byte(res.Content))
}
