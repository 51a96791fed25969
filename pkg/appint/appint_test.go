package appint

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/autotune/aliases"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/config"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/fetch"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/internalerr"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/record"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/relation"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func loadComponents(t *testing.T) *config.Components {
	t.Helper()
	comp, err := (&config.Loader{}).Load()
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	return comp
}

const orderSyncPage = `<html><body><div class="app-details">
<div class="app-details__description">Connects to Stripe and Mailchimp.</div>
<h3>Works with</h3><ul><li>Klaviyo</li></ul>
</div></body></html>`

// storeFetcher serves pages from a map and 404s everything else.
type storeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	seen  []string
}

func (s *storeFetcher) Fetch(_ context.Context, req fetch.Request) fetch.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, req.URL)
	if body, ok := s.pages[req.URL]; ok {
		return fetch.Result{URL: req.URL, Success: true, StatusCode: http.StatusOK, Content: body, Attempts: 1}
	}
	return fetch.Result{URL: req.URL, StatusCode: http.StatusNotFound, Error: internalerr.ErrFetchFailed, Attempts: 1}
}

func TestBuildRecordsEndToEnd(t *testing.T) {
	store := &storeFetcher{pages: map[string]string{
		"https://apps.shopify.com/order-sync": orderSyncPage,
	}}
	e := FromComponents(loadComponents(t), store, discard)

	attrs := []record.AppAttrs{
		{AppID: "1", AppName: "Klaviyo Sync", Description: "Integrates with Facebook and Stripe.", Structured: []string{"fb", "Klaviyo"}},
		{AppID: "2", AppName: "Order Sync"},
		{AppID: "3", AppName: "Gone", Structured: []string{"Stripe", "Acme Widgets"}},
		{AppID: "", AppName: "No ID"},
	}
	records, skipped, err := e.BuildRecords(context.Background(), attrs)
	if err != nil {
		t.Fatalf("BuildRecords: %v", err)
	}
	if len(skipped) != 1 || !errors.Is(skipped[0], internalerr.ErrMissingField) {
		t.Errorf("skipped = %v, want one missing-field error", skipped)
	}

	got := make(map[string][]string)
	for _, r := range records {
		got[r.AppID] = r.Canonical
	}
	want := map[string][]string{
		"1": {"Facebook", "Klaviyo", "Stripe"},
		"2": {"Klaviyo", "Mailchimp", "Stripe"},
		"3": {"Acme Widgets", "Stripe"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("canonical sets mismatch (-want +got):\n%s", diff)
	}
	if records[1].SourceURL != "https://apps.shopify.com/order-sync" {
		t.Errorf("SourceURL = %q", records[1].SourceURL)
	}
	if diff := cmp.Diff([]string{"Acme Widgets"}, records[2].Unverified); diff != "" {
		t.Errorf("Unverified mismatch (-want +got):\n%s", diff)
	}
	// app 1 has a description and is never looked up
	for _, u := range store.seen {
		if strings.Contains(u, "klaviyo-sync") {
			t.Errorf("app with description was fetched: %s", u)
		}
	}

	table, errs := e.BuildTable(records)
	if len(errs) != 0 || table.Len() != 3 {
		t.Fatalf("BuildTable: %d rows, errs %v", table.Len(), errs)
	}
	res, err := e.Analyze(context.Background(), table)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Analysis.Count("Stripe") != 3 || res.Analysis.Count("Klaviyo") != 2 {
		t.Errorf("unexpected frequencies %+v", res.Analysis.Frequencies)
	}
	if diff := cmp.Diff([]string{"Acme Widgets"}, res.Unverified); diff != "" {
		t.Errorf("Unverified mismatch (-want +got):\n%s", diff)
	}
	segmented := 0
	for _, seg := range res.Segments.Segments {
		segmented += len(seg.Apps)
	}
	if res.Segments.K != 2 || segmented != 3 {
		t.Errorf("segments = %+v, want 2 covering all 3 apps", res.Segments)
	}
	if _, ok := e.Report(res, len(skipped)).Section("App segments"); !ok {
		t.Error("report has no app segments section")
	}
}

func TestBuildRecordsWithoutFetcher(t *testing.T) {
	e := FromComponents(loadComponents(t), nil, discard)
	records, _, err := e.BuildRecords(context.Background(), []record.AppAttrs{
		{AppID: "1", AppName: "Quiet", Structured: []string{"ig"}},
	})
	if err != nil {
		t.Fatalf("BuildRecords: %v", err)
	}
	if diff := cmp.Diff([]string{"Instagram"}, records[0].Canonical); diff != "" {
		t.Errorf("Canonical mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildRecordsCanceled(t *testing.T) {
	e := FromComponents(loadComponents(t), &storeFetcher{}, discard)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := e.BuildRecords(ctx, []record.AppAttrs{{AppID: "1", AppName: "Order Sync"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestAnalyzeSuggestsAliases(t *testing.T) {
	e := FromComponents(loadComponents(t), nil, discard)
	table, _ := relation.FromRows([]relation.Row{
		{AppID: "1", Integrations: []string{"Google Analytics", "Stripe", "Mailchimp"}},
		{AppID: "2", Integrations: []string{"Google Analytics", "Klaviyo", "Mailchimp"}},
		{AppID: "3", Integrations: []string{"Google Analytics 4", "MailChimp Email", "Facebook Ads"}},
		{AppID: "4", Integrations: []string{"Facebook Pixel", "Stripe"}},
	})

	res, err := e.Analyze(context.Background(), table)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	want := []aliases.Suggestion{
		{Cluster: "google_analytics", Canonical: "Google Analytics", Variant: "Google Analytics 4", Apps: 1},
		{Cluster: "mailchimp", Canonical: "Mailchimp", Variant: "MailChimp Email", Apps: 1},
	}
	if diff := cmp.Diff(want, res.Suggestions, cmpopts.IgnoreFields(aliases.Suggestion{}, "Confidence")); diff != "" {
		t.Errorf("suggestions mismatch (-want +got):\n%s", diff)
	}
	wantUnverified := []string{"Facebook Ads", "Facebook Pixel", "Google Analytics 4", "MailChimp Email"}
	if diff := cmp.Diff(wantUnverified, res.Unverified); diff != "" {
		t.Errorf("Unverified mismatch (-want +got):\n%s", diff)
	}

	r := e.Report(res, 0)
	md := r.Markdown()
	for _, s := range []string{"Google Analytics 4*", "google_analytics", r.ID} {
		if !strings.Contains(md, s) {
			t.Errorf("report missing %q", s)
		}
	}
}

func listingPage(title, description string) string {
	return `<html><head><title>` + title + ` | Shopify App Store</title></head><body>
<div class="app-details"><div class="app-details__description">` + description + `</div></div>
</body></html>`
}

func collectStore() *storeFetcher {
	return &storeFetcher{pages: map[string]string{
		"https://apps.shopify.com/sitemap.xml": `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://apps.shopify.com/klaviyo-sync</loc></url>
  <url><loc>https://apps.shopify.com/categories/marketing</loc></url>
  <url><loc>https://apps.shopify.com/order-sync</loc></url>
  <url><loc>https://apps.shopify.com/gone</loc></url>
  <url><loc>https://apps.shopify.com/quiet-theme</loc></url>
</urlset>`,
		"https://apps.shopify.com/klaviyo-sync": listingPage("Klaviyo Sync", "Integrates with Facebook and Stripe."),
		"https://apps.shopify.com/order-sync":   orderSyncPage,
		"https://apps.shopify.com/quiet-theme":  listingPage("Quiet Theme", "A calm storefront theme."),
	}}
}

func TestCollect(t *testing.T) {
	tests := []struct {
		name string
		opts CollectOptions
		want []string
	}{
		{"all named listings", CollectOptions{}, []string{"klaviyo-sync", "quiet-theme"}},
		{"integrations only", CollectOptions{WithIntegrationsOnly: true}, []string{"klaviyo-sync"}},
		{"limit", CollectOptions{Limit: 1}, []string{"klaviyo-sync"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := FromComponents(loadComponents(t), collectStore(), discard)
			apps, err := e.Collect(context.Background(), tt.opts)
			if err != nil {
				t.Fatalf("Collect: %v", err)
			}
			var ids []string
			for _, a := range apps {
				ids = append(ids, a.AppID)
				if a.SourceURL != "https://apps.shopify.com/"+a.AppID {
					t.Errorf("%s: SourceURL = %q", a.AppID, a.SourceURL)
				}
			}
			if diff := cmp.Diff(tt.want, ids); diff != "" {
				t.Errorf("app IDs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCollectRowsBuild(t *testing.T) {
	e := FromComponents(loadComponents(t), collectStore(), discard)
	apps, err := e.Collect(context.Background(), CollectOptions{WithIntegrationsOnly: true})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(apps) != 1 || apps[0].AppName != "Klaviyo Sync" {
		t.Fatalf("apps = %+v", apps)
	}
	records, skipped, err := e.BuildRecords(context.Background(), apps)
	if err != nil || len(skipped) != 0 {
		t.Fatalf("BuildRecords: %v, skipped %v", err, skipped)
	}
	if diff := cmp.Diff([]string{"Facebook", "Stripe"}, records[0].Canonical); diff != "" {
		t.Errorf("Canonical mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectErrors(t *testing.T) {
	e := FromComponents(loadComponents(t), nil, discard)
	if _, err := e.Collect(context.Background(), CollectOptions{}); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("no fetcher: err = %v, want ErrInvalidConfig", err)
	}

	e = FromComponents(loadComponents(t), &storeFetcher{}, discard)
	if _, err := e.Collect(context.Background(), CollectOptions{}); !errors.Is(err, internalerr.ErrFetchFailed) {
		t.Errorf("missing sitemap: err = %v, want ErrFetchFailed", err)
	}
}
