package normalize

import (
	"errors"
	"strings"
	"testing"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/internalerr"
)

func testNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	table := NewAliasTable()
	groups := []AliasGroup{
		{Canonical: "Facebook", Variants: []string{"fb"}},
		{Canonical: "Instagram", Variants: []string{"insta"}, ExactVariants: []string{"ig"}},
		{Canonical: "Google Analytics", ExactVariants: []string{"ga"}},
		{Canonical: "Klaviyo"},
		{Canonical: "Shopify POS", Variants: []string{"point of sale"}, ExactVariants: []string{"pos"}},
		{Canonical: "Shopify Flow", ExactVariants: []string{"flow"}},
		{Canonical: "eBay"},
		{Canonical: "Facebook Shop", Variants: []string{"fb shop"}},
	}
	for _, g := range groups {
		if err := table.Add(g); err != nil {
			t.Fatalf("Add(%s): %v", g.Canonical, err)
		}
	}
	n, err := New(table, NewDenyList([]string{"shopify", "your store", "and more"}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return n
}

func TestNormalizeResolutionOrder(t *testing.T) {
	n := testNormalizer(t)

	tests := []struct {
		raw    string
		want   string
		source Source
	}{
		{"fb", "Facebook", SourceAlias},
		{"  FB  ", "Facebook", SourceAlias},
		{"Facebook", "Facebook", SourceAlias},
		{"fb shop", "Facebook Shop", SourceAlias},
		{"EBAY", "eBay", SourceAlias},
		{"pos", "Shopify POS", SourceAlias},
		{"Point  of\nSale", "Shopify POS", SourceAlias},
		{"shopify", "", SourceDenied},
		{"Your Store", "", SourceDenied},
		{"", "", SourceEmpty},
		{"   ", "", SourceEmpty},
		{"--", "", SourceEmpty},
		{"fb pixel", "Facebook Pixel", SourceSubstring},
		{"klaviyo email flows", "Klaviyo Email Flows", SourceSubstring},
		{"acme order sync", "Acme Order Sync", SourceFallback},
		{"tools for sellers and makers", "Tools for Sellers and Makers", SourceFallback},
	}

	for _, tt := range tests {
		got := n.Resolve(tt.raw)
		if got.Label != tt.want {
			t.Errorf("Resolve(%q).Label = %q, want %q", tt.raw, got.Label, tt.want)
		}
		if got.Source != tt.source {
			t.Errorf("Resolve(%q).Source = %s, want %s", tt.raw, got.Source, tt.source)
		}
	}
}

func TestNormalizeExactOnlyVariantsNotReplacedInside(t *testing.T) {
	n := testNormalizer(t)

	// "pos" and "flow" must not rewrite longer names
	if got := n.Normalize("pos printer"); got != "Pos Printer" {
		t.Errorf("Normalize(pos printer) = %q, want %q", got, "Pos Printer")
	}
	if got := n.Normalize("cash flow"); got != "Cash Flow" {
		t.Errorf("Normalize(cash flow) = %q, want %q", got, "Cash Flow")
	}
}

func TestNormalizeWordBoundaries(t *testing.T) {
	n := testNormalizer(t)

	// "fb" inside "fbx" is not an alias occurrence
	if got := n.Normalize("fbx exporter"); got != "Fbx Exporter" {
		t.Errorf("Normalize(fbx exporter) = %q", got)
	}
}

func TestNormalizeLongestAliasWins(t *testing.T) {
	n := testNormalizer(t)

	if got := n.Normalize("fb shop feed"); got != "Facebook Shop Feed" {
		t.Errorf("Normalize(fb shop feed) = %q, want %q", got, "Facebook Shop Feed")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := testNormalizer(t)

	inputs := []string{
		"fb", "FB Pixel", "Shopify", "pos", "point of sale", "acme order sync",
		"fb shop feed", "klaviyo email flows", "Café Connect", "insta stories",
		"tools for sellers and makers", "eBay", "Google Analytics 4", "ga", "x",
	}
	for _, in := range inputs {
		once := n.Normalize(in)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestNormalizeOutputHasNoSurroundingWhitespace(t *testing.T) {
	n := testNormalizer(t)

	for _, in := range []string{" fb pixel\n", "\tacme\n sync ", "klaviyo "} {
		got := n.Normalize(in)
		if got != strings.TrimSpace(got) || strings.ContainsAny(got, "\n\r\t") {
			t.Errorf("Normalize(%q) = %q has stray whitespace", in, got)
		}
	}
}

func TestNormalizeCanonicalsAreFixedPoints(t *testing.T) {
	n := testNormalizer(t)

	for _, c := range n.Aliases().Canonicals() {
		if got := n.Normalize(c); got != c {
			t.Errorf("Normalize(%q) = %q, canonical must map to itself", c, got)
		}
	}
}

func TestNewRejectsDeniedCanonical(t *testing.T) {
	table := NewAliasTable()
	if err := table.Add(AliasGroup{Canonical: "Shopify"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	_, err := New(table, NewDenyList([]string{"shopify"}))
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNewNilComponents(t *testing.T) {
	n, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New(nil, nil): %v", err)
	}
	if got := n.Normalize("some tool"); got != "Some Tool" {
		t.Errorf("Normalize = %q", got)
	}
}

func TestSourceString(t *testing.T) {
	if SourceFallback.String() != "fallback" || SourceEmpty.String() != "empty" {
		t.Error("unexpected Source names")
	}
}
