// Package normalize maps raw integration names onto canonical labels.
//
// Resolution order for a raw name:
//  1. fold to a lookup key (lowercase, accents stripped, whitespace collapsed)
//  2. deny-list hit -> discard
//  3. exact alias hit -> canonical label
//  4. known aliases inside the name -> replaced by their canonical labels
//  5. otherwise -> title-cased name, minor words kept lowercase
//
// An empty label means "discard". Normalize is deterministic and idempotent.
package normalize

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/internalerr"
)

// Source records which resolution step produced a label.
type Source int

const (
	SourceEmpty     Source = iota // nothing usable in the input
	SourceDenied                  // deny-list hit
	SourceAlias                   // exact alias match
	SourceSubstring               // aliases replaced inside the name
	SourceFallback                // title-case fallback, not in the vocabulary
)

func (s Source) String() string {
	switch s {
	case SourceDenied:
		return "denied"
	case SourceAlias:
		return "alias"
	case SourceSubstring:
		return "substring"
	case SourceFallback:
		return "fallback"
	default:
		return "empty"
	}
}

// Result is a resolved label with its provenance.
type Result struct {
	Label  string
	Source Source
}

// DefaultMinorWords stay lowercase in title-cased labels.
var DefaultMinorWords = []string{"and", "or", "in", "on", "at", "to", "for", "with", "by"}

// maxPasses bounds the re-resolution loop in Resolve.
const maxPasses = 4

// Normalizer resolves raw integration names. It is read-only after
// construction and safe for concurrent use.
type Normalizer struct {
	aliases *AliasTable
	deny    *DenyList
	minor   map[string]struct{}
}

// New creates a normalizer. Nil arguments are treated as empty.
//
// Returns internalerr.ErrInvalidConfig when a canonical label is itself
// denied.
func New(aliases *AliasTable, deny *DenyList) (*Normalizer, error) {
	if aliases == nil {
		aliases = NewAliasTable()
	}
	if deny == nil {
		deny = NewDenyList(nil)
	}
	for _, c := range aliases.Canonicals() {
		if deny.IsDenied(Key(c)) {
			return nil, fmt.Errorf("canonical %q is on the deny-list: %w", c, internalerr.ErrInvalidConfig)
		}
	}
	minor := make(map[string]struct{}, len(DefaultMinorWords))
	for _, w := range DefaultMinorWords {
		minor[w] = struct{}{}
	}
	return &Normalizer{aliases: aliases, deny: deny, minor: minor}, nil
}

// Aliases exposes the alias table.
func (n *Normalizer) Aliases() *AliasTable {
	return n.aliases
}

// IsCanonical reports whether label is part of the curated vocabulary.
func (n *Normalizer) IsCanonical(label string) bool {
	return n.aliases.IsCanonical(label)
}

// Normalize returns the canonical label for raw, or "" to discard it.
//
// Examples:
//   - Normalize("fb") -> "Facebook"
//   - Normalize("FB Pixel") -> "Facebook Pixel"
//   - Normalize("acme order sync") -> "Acme Order Sync"
//   - Normalize("shopify") -> ""
func (n *Normalizer) Normalize(raw string) string {
	return n.Resolve(raw).Label
}

// Resolve is Normalize with provenance. The output is re-resolved until it
// is stable, so Resolve(Resolve(x).Label).Label == Resolve(x).Label.
func (n *Normalizer) Resolve(raw string) Result {
	res := n.step(raw)
	if res.Label == "" || res.Source == SourceAlias {
		return res
	}
	for i := 0; i < maxPasses; i++ {
		next := n.step(res.Label)
		if next.Label == res.Label {
			break
		}
		if next.Source == SourceFallback {
			next.Source = res.Source
		}
		res = next
		if res.Label == "" || res.Source == SourceAlias {
			break
		}
	}
	return res
}

func (n *Normalizer) step(raw string) Result {
	key := Key(raw)
	if key == "" || !hasWordRune(key) {
		return Result{Source: SourceEmpty}
	}
	if n.deny.IsDenied(key) {
		return Result{Source: SourceDenied}
	}
	if c, ok := n.aliases.Lookup(key); ok {
		return Result{Label: c, Source: SourceAlias}
	}
	if segs, ok := n.aliases.replace(key); ok {
		var b strings.Builder
		for _, s := range segs {
			if s.canonical {
				b.WriteString(s.text)
			} else {
				b.WriteString(n.titleCase(s.text))
			}
		}
		return Result{Label: strings.Join(strings.Fields(b.String()), " "), Source: SourceSubstring}
	}
	return Result{Label: n.titleCase(key), Source: SourceFallback}
}

// titleCase upper-cases the first rune of every whitespace-separated word
// except minor words. Separators are preserved.
func (n *Normalizer) titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		b.WriteString(n.titleWord(s[start:end]))
		start = -1
	}
	for i, r := range s {
		if unicode.IsSpace(r) {
			flush(i)
			b.WriteRune(r)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(s))
	return b.String()
}

func (n *Normalizer) titleWord(w string) string {
	if _, ok := n.minor[w]; ok {
		return w
	}
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return w
	}
	return string(unicode.ToUpper(r)) + w[size:]
}
