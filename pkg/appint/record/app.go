package record

import (
	"fmt"
	"sort"
	"strings"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/internalerr"
)

// AppAttrs is one raw input row: an app listing as exported from the store.
type AppAttrs struct {
	AppID       string
	AppName     string
	SourceURL   string
	Description string
	Structured  []string // integrations already listed by the source, raw
}

// Validate checks if the row has its required fields.
func (a *AppAttrs) Validate() error {
	if strings.TrimSpace(a.AppID) == "" {
		return fmt.Errorf("app_id: %w", internalerr.ErrMissingField)
	}
	if strings.TrimSpace(a.AppName) == "" {
		return fmt.Errorf("app_name for %s: %w", a.AppID, internalerr.ErrMissingField)
	}
	return nil
}

// AppRecord is an app with its resolved canonical integration set.
// Records are built once and not mutated afterwards.
type AppRecord struct {
	AppID       string
	AppName     string
	SourceURL   string
	Description string
	Structured  []string

	// Canonical is sorted and free of empty or case-only duplicate labels.
	Canonical []string

	// Unverified lists the labels in Canonical that came from the title-case
	// fallback rather than the alias vocabulary.
	Unverified []string
}

// Has reports whether the record carries label.
func (r AppRecord) Has(label string) bool {
	i := sort.SearchStrings(r.Canonical, label)
	return i < len(r.Canonical) && r.Canonical[i] == label
}

// Count returns the number of canonical integrations.
func (r AppRecord) Count() int {
	return len(r.Canonical)
}

// SplitStructured splits a delimited integrations field into raw names.
// Commas and pipes separate items; list brackets and quotes left over
// from serialized arrays are stripped.
//
// Example:
//   - SplitStructured("['fb', 'Klaviyo'] | Stripe") -> ["fb", "Klaviyo", "Stripe"]
func SplitStructured(field string) []string {
	parts := strings.FieldsFunc(field, func(r rune) bool {
		return r == ',' || r == '|'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, " \t\r\n[]\"'")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
