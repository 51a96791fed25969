// Package report renders an analysis as a markdown document.
package report

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/assoc"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/autotune/aliases"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/category"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/cluster"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/segment"
)

// Defaults for Input fields left at zero.
const (
	DefaultTop          = 20
	DefaultTopRelations = 10
)

// Input is everything a report is built from. Only Analysis is required.
type Input struct {
	Analysis    *assoc.Analysis
	Clusters    []cluster.Cluster
	Segments    segment.Result
	Categories  *category.Categorizer
	Purposes    *category.Categorizer
	Unverified  map[string]bool // labels minted by the title-case fallback
	Suggestions []aliases.Suggestion
	Skipped     int // input rows dropped before analysis

	Top          int // rows in ranking tables
	TopRelations int // rows in relationship tables
}

// Report is a rendered analysis.
type Report struct {
	ID        string
	CreatedAt time.Time
	Sections  []Section
}

// Section is one titled block of markdown.
type Section struct {
	Title string
	Body  string
}

// Builder assembles reports. Safe for concurrent use.
type Builder struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// New creates a report builder.
func New() *Builder {
	return &Builder{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

func (b *Builder) stamp() (string, time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now().UTC()
	return ulid.MustNew(ulid.Timestamp(now), b.entropy).String(), now
}

// Build renders every section of the report.
func (b *Builder) Build(in Input) Report {
	if in.Top <= 0 {
		in.Top = DefaultTop
	}
	if in.TopRelations <= 0 {
		in.TopRelations = DefaultTopRelations
	}
	if in.Analysis == nil {
		in.Analysis = &assoc.Analysis{}
	}

	id, now := b.stamp()
	r := Report{ID: id, CreatedAt: now}
	r.Sections = []Section{
		{Title: "Overview", Body: overview(in)},
		{Title: "Integration frequency", Body: frequencies(in)},
		{Title: "Co-occurring pairs", Body: pairTable(in.Analysis.TopPairs(in.Top))},
		{Title: "Categories", Body: categories(in)},
		{Title: "App complexity", Body: complexity(in.Analysis)},
		{Title: "Complementary integrations", Body: pairTable(in.Analysis.TopComplementary(in.TopRelations))},
		{Title: "Exclusive integrations", Body: pairTable(in.Analysis.TopExclusive(in.TopRelations))},
		{Title: "Primary integrations", Body: standaloneTable(head(in.Analysis.Primary, in.TopRelations))},
		{Title: "Dependent integrations", Body: standaloneTable(head(in.Analysis.Dependent, in.TopRelations))},
		{Title: "Integration stacks", Body: stacks(head(in.Analysis.Stacks, in.TopRelations))},
		{Title: "Rare integrations", Body: rare(in)},
		{Title: "Similar labels", Body: clusters(in)},
		{Title: "App segments", Body: segments(in)},
		{Title: "Alias suggestions", Body: suggestions(in.Suggestions)},
	}
	return r
}

// Markdown renders the whole document.
func (r Report) Markdown() string {
	var sb strings.Builder
	sb.WriteString("# Integration analysis\n\n")
	fmt.Fprintf(&sb, "Run `%s`, generated %s.\n", r.ID, r.CreatedAt.Format(time.RFC3339))
	for _, s := range r.Sections {
		fmt.Fprintf(&sb, "\n## %s\n\n%s\n", s.Title, strings.TrimRight(s.Body, "\n"))
	}
	return sb.String()
}

// WriteTo implements io.WriterTo.
func (r Report) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, r.Markdown())
	return int64(n), err
}

// Section returns the section with the given title.
func (r Report) Section(title string) (Section, bool) {
	for _, s := range r.Sections {
		if s.Title == title {
			return s, true
		}
	}
	return Section{}, false
}

func head[T any](s []T, k int) []T {
	if k > 0 && len(s) > k {
		return s[:k]
	}
	return s
}
