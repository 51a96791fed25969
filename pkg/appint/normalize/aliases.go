package normalize

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/internalerr"
)

// AliasGroup declares one canonical integration label and the raw forms
// that resolve to it.
//
// Variants resolve on exact match and are also replaced when they occur
// inside a longer name ("fb pixel" -> "Facebook Pixel"). ExactVariants
// resolve on exact match only; use them for short or ambiguous words such
// as "pos" or "flow" that would otherwise rewrite unrelated names.
type AliasGroup struct {
	Canonical     string
	Variants      []string
	ExactVariants []string
}

// AliasTable maps lookup keys to canonical labels.
//
// Every canonical label is reachable from its own key, so resolving a
// canonical label always returns the label unchanged.
type AliasTable struct {
	// key -> canonical label
	// Example: "fb" -> "Facebook", "facebook" -> "Facebook"
	exact map[string]string

	// canonical label -> variant keys (canonical key first)
	groups map[string][]string

	// substring-eligible keys, longest first
	phrases []phrase
}

type phrase struct {
	key       string
	canonical string
}

// NewAliasTable creates an empty alias table.
func NewAliasTable() *AliasTable {
	return &AliasTable{
		exact:  make(map[string]string),
		groups: make(map[string][]string),
	}
}

// Add registers an alias group. Adding the same canonical twice merges the
// variant lists.
//
// Returns internalerr.ErrInvalidConfig when the canonical label is empty,
// contains a list delimiter or line break, or when any key is already
// claimed by a different canonical label.
func (t *AliasTable) Add(g AliasGroup) error {
	canonical := strings.Join(strings.Fields(g.Canonical), " ")
	if canonical == "" {
		return fmt.Errorf("alias group with empty canonical: %w", internalerr.ErrInvalidConfig)
	}
	if strings.ContainsAny(g.Canonical, ",|\n\r") {
		return fmt.Errorf("canonical %q contains a delimiter: %w", g.Canonical, internalerr.ErrInvalidConfig)
	}

	if err := t.claim(Key(canonical), canonical, true); err != nil {
		return err
	}
	for _, v := range g.Variants {
		if err := t.claim(Key(v), canonical, true); err != nil {
			return err
		}
	}
	for _, v := range g.ExactVariants {
		if err := t.claim(Key(v), canonical, false); err != nil {
			return err
		}
	}
	t.sortPhrases()
	return nil
}

func (t *AliasTable) claim(key, canonical string, substring bool) error {
	if key == "" {
		return nil
	}
	if owner, ok := t.exact[key]; ok {
		if owner != canonical {
			return fmt.Errorf("alias %q maps to both %q and %q: %w", key, owner, canonical, internalerr.ErrInvalidConfig)
		}
		return nil
	}
	t.exact[key] = canonical
	t.groups[canonical] = append(t.groups[canonical], key)
	if substring {
		t.phrases = append(t.phrases, phrase{key: key, canonical: canonical})
	}
	return nil
}

// Lookup returns the canonical label for an exact key match.
func (t *AliasTable) Lookup(key string) (string, bool) {
	c, ok := t.exact[key]
	return c, ok
}

// IsCanonical reports whether label is one of the table's canonical labels.
func (t *AliasTable) IsCanonical(label string) bool {
	_, ok := t.groups[label]
	return ok
}

// Canonicals returns all canonical labels, sorted.
func (t *AliasTable) Canonicals() []string {
	out := make([]string, 0, len(t.groups))
	for c := range t.groups {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Variants returns the keys that resolve to canonical, canonical key first.
// Returns nil for unknown labels.
func (t *AliasTable) Variants(canonical string) []string {
	keys := t.groups[canonical]
	if keys == nil {
		return nil
	}
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// segment is a piece of a rewritten key: either a canonical label or
// untouched text.
type segment struct {
	text      string
	canonical bool
}

// replace scans key left to right and swaps every substring-eligible alias
// found at word boundaries for its canonical label. Longer aliases win;
// matches never overlap.
func (t *AliasTable) replace(key string) ([]segment, bool) {
	var (
		segs     []segment
		free     strings.Builder
		replaced bool
	)
	for i := 0; i < len(key); {
		if p, ok := t.matchAt(key, i); ok {
			if free.Len() > 0 {
				segs = append(segs, segment{text: free.String()})
				free.Reset()
			}
			segs = append(segs, segment{text: p.canonical, canonical: true})
			i += len(p.key)
			replaced = true
			continue
		}
		_, size := utf8.DecodeRuneInString(key[i:])
		free.WriteString(key[i : i+size])
		i += size
	}
	if free.Len() > 0 {
		segs = append(segs, segment{text: free.String()})
	}
	return segs, replaced
}

func (t *AliasTable) matchAt(key string, i int) (phrase, bool) {
	if !isBoundary(key, i) {
		return phrase{}, false
	}
	rest := key[i:]
	for _, p := range t.phrases {
		if strings.HasPrefix(rest, p.key) && isBoundary(key, i+len(p.key)) {
			return p, true
		}
	}
	return phrase{}, false
}

func (t *AliasTable) sortPhrases() {
	sort.SliceStable(t.phrases, func(i, j int) bool {
		if len(t.phrases[i].key) != len(t.phrases[j].key) {
			return len(t.phrases[i].key) > len(t.phrases[j].key)
		}
		return t.phrases[i].key < t.phrases[j].key
	})
}

// isBoundary reports whether pos sits between a word rune and a non-word
// rune (or at either end of s).
func isBoundary(s string, pos int) bool {
	if pos <= 0 || pos >= len(s) {
		return true
	}
	before, _ := utf8.DecodeLastRuneInString(s[:pos])
	after, _ := utf8.DecodeRuneInString(s[pos:])
	return !(isWordRune(before) && isWordRune(after))
}

// Stats returns statistics about the table contents.
func (t *AliasTable) Stats() AliasStats {
	return AliasStats{
		Canonicals: len(t.groups),
		Keys:       len(t.exact),
		Substring:  len(t.phrases),
	}
}

// AliasStats holds statistics about alias table contents.
type AliasStats struct {
	Canonicals int // number of canonical labels
	Keys       int // number of keys resolving to a canonical
	Substring  int // keys eligible for in-name replacement
}
