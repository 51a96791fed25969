package record

import (
	"sort"
	"strings"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/normalize"
)

// Extractor finds raw integration mentions in free text.
type Extractor interface {
	Extract(text string) []string
}

// Resolver maps raw names to canonical labels.
type Resolver interface {
	Resolve(raw string) normalize.Result
	IsCanonical(label string) bool
}

// Builder turns input rows into app records:
// description → mentions ∪ structured list → canonical labels → set
type Builder struct {
	extractor Extractor
	resolver  Resolver
}

// NewBuilder creates a record builder with the given components.
func NewBuilder(extractor Extractor, resolver Resolver) *Builder {
	return &Builder{
		extractor: extractor,
		resolver:  resolver,
	}
}

type choice struct {
	label    string
	verified bool
}

// Build resolves the canonical integration set of one app. The caller is
// expected to have validated the row.
//
// Structured items are split again on list delimiters, so no canonical
// label ever carries a comma or pipe into the written relation.
func (b *Builder) Build(a AppAttrs) AppRecord {
	raw := make([]string, 0, len(a.Structured))
	for _, s := range a.Structured {
		raw = append(raw, SplitStructured(s)...)
	}
	if b.extractor != nil {
		raw = append(raw, b.extractor.Extract(a.Description)...)
	}

	// folded label -> chosen spelling
	chosen := make(map[string]choice)
	for _, r := range raw {
		res := b.resolver.Resolve(r)
		if res.Label == "" {
			continue
		}
		verified := res.Source != normalize.SourceFallback
		fold := strings.ToLower(res.Label)
		prev, ok := chosen[fold]
		if !ok {
			chosen[fold] = choice{label: res.Label, verified: verified}
			continue
		}
		chosen[fold] = choice{
			label:    b.preferred(prev.label, res.Label),
			verified: prev.verified || verified,
		}
	}

	rec := AppRecord{
		AppID:       strings.TrimSpace(a.AppID),
		AppName:     strings.TrimSpace(a.AppName),
		SourceURL:   strings.TrimSpace(a.SourceURL),
		Description: a.Description,
		Structured:  a.Structured,
		Canonical:   make([]string, 0, len(chosen)),
	}
	for _, c := range chosen {
		rec.Canonical = append(rec.Canonical, c.label)
		if !c.verified {
			rec.Unverified = append(rec.Unverified, c.label)
		}
	}
	sort.Strings(rec.Canonical)
	sort.Strings(rec.Unverified)
	return rec
}

// preferred picks between two spellings of the same label: vocabulary
// labels first, then the lexicographically smaller one.
func (b *Builder) preferred(x, y string) string {
	cx, cy := b.resolver.IsCanonical(x), b.resolver.IsCanonical(y)
	switch {
	case cx && !cy:
		return x
	case cy && !cx:
		return y
	case y < x:
		return y
	default:
		return x
	}
}
