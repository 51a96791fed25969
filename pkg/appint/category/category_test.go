package category

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/internalerr"
)

func TestDefaultCategories(t *testing.T) {
	c := Default()

	tests := map[string]string{
		"Shopify POS":      ShopifyNative,
		"shopify flow":     ShopifyNative,
		"Amazon":           Marketplace,
		"Amazon Pay":       Marketplace,
		"Klaviyo":          Marketing,
		"Email Marketing":  Marketing,
		"FedEx":            Shipping,
		"Stripe":           Payment,
		"Google Analytics": Analytics,
		"Facebook Pixel":   Analytics,
		"Instagram":        Social,
		"Zapier":           Other,
		"":                 Other,
	}
	for label, want := range tests {
		if got := c.Categorize(label); got != want {
			t.Errorf("Categorize(%q) = %q, want %q", label, got, want)
		}
	}
}

func TestDefaultPurposes(t *testing.T) {
	p := DefaultPurposes()

	tests := []struct {
		label string
		co    []string
		want  string
	}{
		{"Gorgias Chat", nil, "Customer Support"},
		{"Facebook Ads", nil, "Marketing"},
		{"Inventory Planner", nil, "Business Operations"},
		{"Order Sync", []string{"Shopify Flow"}, "Data Synchronization"},
		{"Omnisend", []string{"Klaviyo", "Shopify Flow"}, "Shopify Extension"},
		{"Zapier", nil, "API/SDK Integration"},
		{"Omnisend", []string{"Klaviyo"}, DefaultPurposeFallback},
		{"Omnisend", nil, DefaultPurposeFallback},
	}
	for _, tt := range tests {
		if got := p.CategorizeWith(tt.label, tt.co); got != tt.want {
			t.Errorf("CategorizeWith(%q, %q) = %q, want %q", tt.label, tt.co, got, tt.want)
		}
	}
}

func TestFirstRuleWins(t *testing.T) {
	c, err := New([]Rule{
		{Name: "first", Keywords: []string{"Box"}},
		{Name: "second", Prefixes: []string{"drop"}},
	}, "rest")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Categorize("Dropbox"); got != "first" {
		t.Errorf("Categorize(Dropbox) = %q, want first", got)
	}
	if got := c.Categorize("Dropcart"); got != "second" {
		t.Errorf("Categorize(Dropcart) = %q, want second", got)
	}
}

func TestGroup(t *testing.T) {
	got := Default().Group([]string{"Stripe", "Amazon", "Shopify POS", "Zapier", "PayPal", "Amazon", " "})
	want := []Group{
		{Name: ShopifyNative, Labels: []string{"Shopify POS"}},
		{Name: Marketplace, Labels: []string{"Amazon"}},
		{Name: Payment, Labels: []string{"PayPal", "Stripe"}},
		{Name: Other, Labels: []string{"Zapier"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Group mismatch (-want +got):\n%s", diff)
	}
}

func TestNames(t *testing.T) {
	want := []string{ShopifyNative, Marketplace, Marketing, Shipping, Payment, Analytics, Social, Other}
	if diff := cmp.Diff(want, Default().Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRejectsBadRules(t *testing.T) {
	cases := []struct {
		name     string
		rules    []Rule
		fallback string
	}{
		{"empty fallback", nil, " "},
		{"unnamed rule", []Rule{{Keywords: []string{"x"}}}, "other"},
		{"rule without matchers", []Rule{{Name: "x", Keywords: []string{" "}}}, "other"},
	}
	for _, tc := range cases {
		if _, err := New(tc.rules, tc.fallback); !errors.Is(err, internalerr.ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", tc.name, err)
		}
	}
}
