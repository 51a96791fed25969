package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/internalerr"
)

func newDefault(t *testing.T) *Extractor {
	t.Helper()
	e, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestExtract(t *testing.T) {
	e := newDefault(t)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "simple list",
			text: "Integrates with Shopify POS and Klaviyo.",
			want: []string{"Shopify POS", "Klaviyo"},
		},
		{
			name: "word cap drops long fragment",
			text: "Works with Facebook, Instagram and Klaviyo for email marketing",
			want: []string{"Facebook", "Instagram"},
		},
		{
			name: "case insensitive trigger",
			text: "WORKS WITH Stripe; PayPal & Klarna",
			want: []string{"Stripe", "PayPal", "Klarna"},
		},
		{
			name: "several triggers keep text order",
			text: "Syncs with Gorgias. Also compatible with Zendesk! Exports to Google Sheets",
			want: []string{"Gorgias", "Zendesk", "Google Sheets"},
		},
		{
			name: "window ends at next trigger",
			text: "Works with Shopify Flow and integrates with Klaviyo",
			want: []string{"Shopify Flow", "Klaviyo"},
		},
		{
			name: "dot inside name is not a terminator",
			text: "Integrates with Judge.me and Yotpo. Great support.",
			want: []string{"Judge.me", "Yotpo"},
		},
		{
			name: "oxford comma and articles",
			text: "Connects to the Amazon, eBay, and Etsy marketplaces",
			want: []string{"Amazon", "eBay", "Etsy marketplaces"},
		},
		{
			name: "generic mentions skipped",
			text: "Works with your store and other apps, plus Zapier",
			want: []string{"plus Zapier"},
		},
		{
			name: "duplicates kept",
			text: "Works with Klaviyo. Syncs with Klaviyo.",
			want: []string{"Klaviyo", "Klaviyo"},
		},
		{
			name: "newline terminates window",
			text: "Compatible with Mailchimp\nSee our docs for Omnisend",
			want: []string{"Mailchimp"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Extract(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestExtractNegation(t *testing.T) {
	e := newDefault(t)

	for _, text := range []string{
		"This app is not compatible with Amazon.",
		"It isn't compatible with Shopify POS.",
		"This app isn’t compatible with Shopify POS.",
		"It isn‘t compatible with Amazon.",
		"Only compatible with stores that use Shopify Payments.",
		"Does not integrate with Etsy.",
	} {
		if got := e.Extract(text); len(got) != 0 {
			t.Errorf("Extract(%q) = %v, want none", text, got)
		}
	}
}

func TestExtractNegationOnlyCancelsItsTrigger(t *testing.T) {
	e := newDefault(t)

	got := e.Extract("Not compatible with Amazon. Works with eBay.")
	if diff := cmp.Diff([]string{"eBay"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractNoTrigger(t *testing.T) {
	e := newDefault(t)

	for _, text := range []string{"", "   ", "A beautiful product review widget."} {
		if got := e.Extract(text); len(got) != 0 {
			t.Errorf("Extract(%q) = %v, want empty", text, got)
		}
	}
}

func TestExtractWindowCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WindowChars = 10
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got := e.Extract("Works with Klaviyo, Mailchimp, Omnisend")
	// window is " Klaviyo, "
	if diff := cmp.Diff([]string{"Klaviyo"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractWindowNeverEmitsPartialItems(t *testing.T) {
	names := []string{
		"Facebook", "Instagram", "TikTok", "Pinterest", "Google Shopping", "Klaviyo",
		"Mailchimp", "Judge.me", "Privy", "Attentive", "Postscript",
	}
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	text := "Works with Facebook, Instagram, TikTok, Pinterest, Google Shopping, Klaviyo, " +
		"Mailchimp, Judge.me, Privy, Attentive and Postscript."

	for window := 1; window <= 120; window++ {
		cfg := DefaultConfig()
		cfg.WindowChars = window
		e, err := New(cfg)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		for _, c := range e.Extract(text) {
			if !known[c] {
				t.Errorf("window %d: emitted truncated candidate %q", window, c)
			}
		}
	}
}

func TestExtractWindowCutMidWord(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WindowChars = 14
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// window is " Klaviyo, Mail"
	got := e.Extract("Works with Klaviyo, Mailchimp, Omnisend")
	if diff := cmp.Diff([]string{"Klaviyo"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	// the cut lands on an item boundary, so nothing is lost
	cfg.WindowChars = 19
	e, err = New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got = e.Extract("Works with Klaviyo, Mailchimp, Omnisend")
	if diff := cmp.Diff([]string{"Klaviyo", "Mailchimp"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractCandidatesAreTrimmed(t *testing.T) {
	e := newDefault(t)

	long := "Works with " + strings.Repeat("x", 20) + " , \"Stripe\" , (PayPal)"
	for _, c := range e.Extract(long) {
		if c != strings.TrimSpace(c) || c == "" {
			t.Errorf("candidate %q not trimmed", c)
		}
		if strings.ContainsAny(c, "\"()") {
			t.Errorf("candidate %q kept wrapping punctuation", c)
		}
	}
}

func TestNewRequiresTriggers(t *testing.T) {
	_, err := New(Config{})
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
