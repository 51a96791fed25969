// Package appint is the entry point for integration analysis: it turns
// app listings into canonical integration sets and analyzes how those
// integrations co-occur.
package appint

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/assoc"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/autotune/aliases"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/category"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/cluster"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/config"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/fetch"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/internalerr"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/record"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/relation"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/report"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/segment"
)

// Engine runs the pipeline. Everything except listing enrichment is
// single-threaded and deterministic.
type Engine struct {
	builder     *record.Builder
	vocabulary  aliases.Vocabulary
	fetcher     fetch.Fetcher
	concurrency int
	thresholds  assoc.Thresholds
	clusterer   cluster.Clusterer
	segmenter   segment.Segmenter
	categories  *category.Categorizer
	purposes    *category.Categorizer
	suggest     aliases.Thresholds
	reviewer    aliases.Reviewer
	reports     *report.Builder
	reportTop   config.ReportSettings
	log         *slog.Logger
}

// Options configures an Engine. Builder is required.
type Options struct {
	Builder     *record.Builder
	Vocabulary  aliases.Vocabulary // curated labels; used for suggestions and unverified marks
	Fetcher     fetch.Fetcher      // optional; fills in missing descriptions
	Concurrency int                // listing fetches in flight, default fetch.DefaultConcurrency
	Thresholds  assoc.Thresholds
	Clusterer   cluster.Clusterer
	Segmenter   segment.Segmenter
	Categories  *category.Categorizer // defaults to category.Default()
	Purposes    *category.Categorizer // defaults to category.DefaultPurposes()
	Suggest     aliases.Thresholds
	Reviewer    aliases.Reviewer // optional; approves each alias suggestion
	Report      config.ReportSettings
	Logger      *slog.Logger
}

// New creates an engine with the given dependencies.
func New(opts Options) *Engine {
	e := &Engine{
		builder:     opts.Builder,
		vocabulary:  opts.Vocabulary,
		fetcher:     opts.Fetcher,
		concurrency: opts.Concurrency,
		thresholds:  opts.Thresholds,
		clusterer:   opts.Clusterer,
		segmenter:   opts.Segmenter,
		categories:  opts.Categories,
		purposes:    opts.Purposes,
		suggest:     opts.Suggest,
		reviewer:    opts.Reviewer,
		reports:     report.New(),
		reportTop:   opts.Report,
		log:         opts.Logger,
	}
	if e.concurrency <= 0 {
		e.concurrency = fetch.DefaultConcurrency
	}
	if e.categories == nil {
		e.categories = category.Default()
	}
	if e.purposes == nil {
		e.purposes = category.DefaultPurposes()
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	return e
}

// FromComponents creates an engine from loaded configuration. f may be nil.
func FromComponents(c *config.Components, f fetch.Fetcher, log *slog.Logger) *Engine {
	s := c.Settings
	return New(Options{
		Builder:     record.NewBuilder(c.Extractor, c.Normalizer),
		Vocabulary:  c.Normalizer,
		Fetcher:     f,
		Concurrency: s.Fetch.Concurrency,
		Thresholds:  s.Analysis.Thresholds(),
		Clusterer:   s.Cluster.Clusterer(),
		Segmenter:   s.Segment.Segmenter(),
		Categories:  c.Categories,
		Purposes:    c.Purposes,
		Suggest:     aliases.Thresholds{MinConfidence: s.Suggest.MinConfidence},
		Report:      s.Report,
		Logger:      log,
	})
}

// SetReviewer installs a reviewer for alias suggestions.
func (e *Engine) SetReviewer(r aliases.Reviewer) {
	e.reviewer = r
}

// BuildRecords validates rows and resolves each app's canonical integration
// set. Invalid rows are skipped and returned. When a fetcher is configured,
// apps without a description are looked up on the app store first; a
// failed lookup leaves the app with its structured integrations only.
func (e *Engine) BuildRecords(ctx context.Context, attrs []record.AppAttrs) ([]record.AppRecord, []error, error) {
	var skipped []error
	valid := make([]record.AppAttrs, 0, len(attrs))
	for _, a := range attrs {
		if err := a.Validate(); err != nil {
			e.log.Warn("skipping row", "app_id", a.AppID, "err", err)
			skipped = append(skipped, err)
			continue
		}
		valid = append(valid, a)
	}

	if e.fetcher != nil {
		if err := e.enrich(ctx, valid); err != nil {
			return nil, skipped, err
		}
	}

	records := make([]record.AppRecord, 0, len(valid))
	for _, a := range valid {
		records = append(records, e.builder.Build(a))
	}
	e.log.Info("built records", "apps", len(records), "skipped", len(skipped))
	return records, skipped, nil
}

// enrich fills empty descriptions from the app listing pages, in place.
func (e *Engine) enrich(ctx context.Context, apps []record.AppAttrs) error {
	var (
		idx        []int
		candidates [][]string
	)
	for i, a := range apps {
		if a.Description != "" {
			continue
		}
		idx = append(idx, i)
		candidates = append(candidates, fetch.CandidateURLs(a.AppName, a.AppID, a.SourceURL))
	}
	if len(idx) == 0 {
		return nil
	}

	pool := &fetch.Pool{Fetcher: e.fetcher, Concurrency: e.concurrency, Logger: e.log}
	lookups, err := pool.FindPages(ctx, candidates)
	if err != nil {
		return err
	}
	for j, l := range lookups {
		a := &apps[idx[j]]
		if l.Err != nil {
			e.log.Warn("listing not found, using structured integrations only", "app_id", a.AppID, "err", l.Err)
			continue
		}
		a.Description = l.Page.Text()
		a.Structured = append(a.Structured, l.Page.WorksWith...)
		if a.SourceURL == "" {
			a.SourceURL = l.Page.URL
		}
		e.log.Debug("listing fetched", "app_id", a.AppID, "url", l.Page.URL)
	}
	return nil
}

// CollectOptions bound a sitemap crawl.
type CollectOptions struct {
	SitemapURL string // defaults to the app store sitemap
	Limit      int    // stop once this many apps are kept; 0 keeps all

	// WithIntegrationsOnly keeps only listings that resolve to at least
	// one integration.
	WithIntegrationsOnly bool
}

// Collect discovers listings through the app store sitemap and turns each
// listing page into an input row, in sitemap order. The listing slug is
// used as app ID. Pages that cannot be fetched or carry no app name are
// skipped.
func (e *Engine) Collect(ctx context.Context, opts CollectOptions) ([]record.AppAttrs, error) {
	if e.fetcher == nil {
		return nil, fmt.Errorf("collect needs a fetcher: %w", internalerr.ErrInvalidConfig)
	}
	src := opts.SitemapURL
	if src == "" {
		src = fetch.AppStoreBase + fetch.SitemapPath
	}
	urls, err := fetch.SitemapURLs(ctx, e.fetcher, src)
	if err != nil {
		return nil, err
	}
	e.log.Info("sitemap read", "sitemap", src, "listings", len(urls))

	pool := &fetch.Pool{Fetcher: e.fetcher, Concurrency: e.concurrency, Logger: e.log}
	batch := e.concurrency * 4
	var out []record.AppAttrs
	for start := 0; start < len(urls); start += batch {
		end := min(start+batch, len(urls))
		candidates := make([][]string, 0, end-start)
		for _, u := range urls[start:end] {
			candidates = append(candidates, []string{u})
		}
		lookups, err := pool.FindPages(ctx, candidates)
		if err != nil {
			return out, err
		}
		for _, l := range lookups {
			if l.Err != nil {
				e.log.Warn("skipping listing", "url", l.Candidates[0], "err", l.Err)
				continue
			}
			a := attrsFromPage(l.Page)
			if a.AppName == "" {
				e.log.Warn("skipping listing without a name", "url", l.Page.URL)
				continue
			}
			if opts.WithIntegrationsOnly && e.builder.Build(a).Count() == 0 {
				continue
			}
			out = append(out, a)
			if opts.Limit > 0 && len(out) >= opts.Limit {
				e.log.Info("collect limit reached", "apps", len(out))
				return out, nil
			}
		}
	}
	e.log.Info("collected listings", "apps", len(out), "listings", len(urls))
	return out, nil
}

func attrsFromPage(p fetch.Page) record.AppAttrs {
	return record.AppAttrs{
		AppID:       strings.TrimPrefix(p.URL, fetch.AppStoreBase+"/"),
		AppName:     p.Name,
		SourceURL:   p.URL,
		Description: p.Text(),
		Structured:  p.WorksWith,
	}
}

// BuildTable assembles the relation. Duplicate app IDs are skipped and
// returned.
func (e *Engine) BuildTable(records []record.AppRecord) (*relation.Table, []error) {
	t, errs := relation.Build(records)
	for _, err := range errs {
		e.log.Warn("skipping record", "err", err)
	}
	return t, errs
}

// Result is everything computed from one relation.
type Result struct {
	Analysis    *assoc.Analysis
	Clusters    []cluster.Cluster
	Segments    segment.Result
	Categories  []category.Group
	Suggestions []aliases.Suggestion
	Unverified  []string // labels outside the curated vocabulary, sorted
}

// Analyze runs association analysis, label clustering, app segmentation,
// categorization and alias suggestion over src.
func (e *Engine) Analyze(ctx context.Context, src *relation.Table) (*Result, error) {
	labels := src.Labels()
	res := &Result{
		Analysis:   assoc.AnalyzeTable(src, e.thresholds),
		Clusters:   e.clusterer.Cluster(labels),
		Segments:   e.segmenter.Segment(src.Rows()),
		Categories: e.categories.Group(labels),
		Unverified: e.unverified(labels),
	}

	tuner := &aliases.AutoTuner{
		Provider:   aliases.FromClusters(res.Clusters, res.Analysis.Count),
		Vocabulary: e.vocabulary,
		Thresholds: e.suggest,
		Reviewer:   e.reviewer,
	}
	suggs, err := tuner.Run(ctx)
	if err != nil {
		return nil, err
	}
	res.Suggestions = suggs

	e.log.Info("analysis complete",
		"apps", res.Analysis.TotalApps,
		"integrations", len(res.Analysis.Frequencies),
		"pairs", len(res.Analysis.Pairs),
		"clusters", len(res.Clusters),
		"segments", res.Segments.K,
		"suggestions", len(res.Suggestions))
	return res, nil
}

func (e *Engine) unverified(labels []string) []string {
	if e.vocabulary == nil {
		return nil
	}
	var out []string
	for _, l := range labels {
		if !e.vocabulary.IsCanonical(l) {
			out = append(out, l)
		}
	}
	sort.Strings(out)
	return out
}

// Report renders a result. skipped counts input rows dropped upstream.
func (e *Engine) Report(res *Result, skipped int) report.Report {
	unverified := make(map[string]bool, len(res.Unverified))
	for _, l := range res.Unverified {
		unverified[l] = true
	}
	return e.reports.Build(report.Input{
		Analysis:     res.Analysis,
		Clusters:     res.Clusters,
		Segments:     res.Segments,
		Categories:   e.categories,
		Purposes:     e.purposes,
		Unverified:   unverified,
		Suggestions:  res.Suggestions,
		Skipped:      skipped,
		Top:          e.reportTop.Top,
		TopRelations: e.reportTop.TopRelations,
	})
}
