// Package extract finds candidate integration names in free-text app
// descriptions.
//
// The extractor looks for trigger phrases ("integrates with", "works with",
// ...), reads the clause that follows each one and splits it into list
// items. Candidates are raw strings; canonicalization belongs to the
// normalize package.
package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/internalerr"
)

// Config controls the extraction heuristic.
type Config struct {
	Triggers     []string // phrases that introduce an integration list
	Negations    []string // contexts that cancel a trigger ("not compatible")
	SkipPrefixes []string // first words that mark a generic mention ("your", "other")
	MaxWords     int      // fragments longer than this are dropped
	WindowChars  int      // maximum clause length read after a trigger
}

// DefaultConfig returns the built-in trigger vocabulary.
func DefaultConfig() Config {
	return Config{
		Triggers: []string{
			"integrates with", "integrated with", "integration with", "integrations with",
			"works with", "compatible with",
			"connects to", "connects with", "connected to", "connect to", "connect with",
			"syncs with", "sync with", "synchronizes with",
			"plugin for", "extension for", "add-on for", "addon for", "connector for",
			"imports from", "import from", "exports to", "export to",
			"partners with", "ecosystem includes",
		},
		Negations: []string{
			"not compatible", "isn't compatible", "is not compatible", "incompatible with",
			"not integrate", "doesn't integrate", "does not integrate",
			"not work with", "doesn't work with", "does not work with",
			"only compatible with stores that",
		},
		SkipPrefixes: []string{"your", "other", "others", "many", "various", "any", "most"},
		MaxWords:     3,
		WindowChars:  100,
	}
}

// Extractor is read-only after construction and safe for concurrent use.
type Extractor struct {
	triggers  []*regexp.Regexp
	negations []*regexp.Regexp
	skip      map[string]struct{}
	maxWords  int
	window    int
}

var (
	listSplit = regexp.MustCompile(`(?i)\s*(?:[,;&]|\band\b)\s*`)
	articles  = map[string]struct{}{"the": {}, "a": {}, "an": {}}
)

// New compiles an extractor. Zero MaxWords and WindowChars fall back to
// the defaults.
func New(cfg Config) (*Extractor, error) {
	if len(cfg.Triggers) == 0 {
		return nil, fmt.Errorf("extractor needs at least one trigger phrase: %w", internalerr.ErrInvalidConfig)
	}
	def := DefaultConfig()
	if cfg.MaxWords <= 0 {
		cfg.MaxWords = def.MaxWords
	}
	if cfg.WindowChars <= 0 {
		cfg.WindowChars = def.WindowChars
	}

	e := &Extractor{
		skip:     make(map[string]struct{}, len(cfg.SkipPrefixes)),
		maxWords: cfg.MaxWords,
		window:   cfg.WindowChars,
	}
	for _, p := range cfg.Triggers {
		re, err := phrasePattern(p)
		if err != nil {
			return nil, fmt.Errorf("trigger %q: %w", p, err)
		}
		e.triggers = append(e.triggers, re)
	}
	for _, p := range cfg.Negations {
		re, err := phrasePattern(p)
		if err != nil {
			return nil, fmt.Errorf("negation %q: %w", p, err)
		}
		e.negations = append(e.negations, re)
	}
	for _, w := range cfg.SkipPrefixes {
		e.skip[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return e, nil
}

// phrasePattern builds a case-insensitive, whitespace-tolerant matcher for
// a phrase, anchored on word boundaries. An apostrophe in the phrase also
// matches the typographic forms.
func phrasePattern(p string) (*regexp.Regexp, error) {
	words := strings.Fields(p)
	if len(words) == 0 {
		return nil, internalerr.ErrInvalidConfig
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		w = strings.NewReplacer("’", "'", "‘", "'").Replace(w)
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(w), "'", "['‘’]")
	}
	expr := `(?i)` + strings.Join(quoted, `\s+`)
	if r, _ := utf8.DecodeRuneInString(words[0]); isWordRune(r) {
		expr = `(?i)\b` + expr[4:]
	}
	if r, _ := utf8.DecodeLastRuneInString(words[len(words)-1]); isWordRune(r) {
		expr += `\b`
	}
	return regexp.Compile(expr)
}

type span struct{ start, end int }

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

// Extract returns candidate integration names in order of first appearance.
// Duplicates are kept. Text without any trigger phrase yields no candidates.
//
// Example:
//
//	Extract("Works with Facebook, Instagram and Klaviyo.")
//	  -> ["Facebook", "Instagram", "Klaviyo"]
func (e *Extractor) Extract(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	occ := e.occurrences(text)
	if len(occ) == 0 {
		return nil
	}
	neg := e.negationSpans(text)

	var out []string
	for i, o := range occ {
		if negated(o, neg) {
			continue
		}
		limit := len(text)
		if i+1 < len(occ) {
			limit = occ[i+1].start
		}
		clause := e.clause(text, o.end, limit)
		for _, frag := range listSplit.Split(clause, -1) {
			if c, ok := e.clean(frag); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

// occurrences returns non-overlapping trigger matches sorted by position.
// When two triggers overlap the earlier (then longer) one wins.
func (e *Extractor) occurrences(text string) []span {
	var all []span
	for _, re := range e.triggers {
		for _, m := range re.FindAllStringIndex(text, -1) {
			all = append(all, span{m[0], m[1]})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].start != all[j].start {
			return all[i].start < all[j].start
		}
		return all[i].end > all[j].end
	})

	var out []span
	for _, s := range all {
		if len(out) > 0 && out[len(out)-1].overlaps(s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (e *Extractor) negationSpans(text string) []span {
	var out []span
	for _, re := range e.negations {
		for _, m := range re.FindAllStringIndex(text, -1) {
			out = append(out, span{m[0], m[1]})
		}
	}
	return out
}

func negated(o span, neg []span) bool {
	for _, n := range neg {
		if o.overlaps(n) {
			return true
		}
	}
	return false
}

// clause returns text[from:limit] cut at the first sentence terminator or
// after the window length, whichever comes first. A window that ends inside
// a list item loses that item.
func (e *Extractor) clause(text string, from, limit int) string {
	count := 0
	for i, r := range text[from:limit] {
		pos := from + i
		if count >= e.window {
			return dropPartial(text[from:pos], text[pos:limit])
		}
		switch r {
		case '!', '?', '\n', '\r':
			return text[from:pos]
		case '.':
			next, _ := utf8.DecodeRuneInString(text[pos+1:])
			if pos+1 >= len(text) || unicode.IsSpace(next) {
				return text[from:pos]
			}
		}
		count++
	}
	return text[from:limit]
}

var leadingAnd = regexp.MustCompile(`(?i)^and\b`)

// dropPartial trims the last list item from window unless rest begins at
// an item boundary.
func dropPartial(window, rest string) string {
	next := strings.TrimLeft(rest, " \t")
	if next == "" || leadingAnd.MatchString(next) {
		return window
	}
	switch r, size := utf8.DecodeRuneInString(next); r {
	case ',', ';', '&', '!', '?', '\n', '\r':
		return window
	case '.':
		after, _ := utf8.DecodeRuneInString(next[size:])
		if size == len(next) || unicode.IsSpace(after) {
			return window
		}
	}
	seps := listSplit.FindAllStringIndex(window, -1)
	if len(seps) == 0 {
		return ""
	}
	return window[:seps[len(seps)-1][0]]
}

const trimSet = " \t\r\n\"'`“”‘’«»()[]{}<>:*•·–—-.!?"

// clean trims a fragment and applies the discard rules.
func (e *Extractor) clean(frag string) (string, bool) {
	frag = strings.Trim(frag, trimSet)
	words := strings.Fields(frag)
	for len(words) > 0 {
		if _, ok := articles[strings.ToLower(words[0])]; !ok {
			break
		}
		words = words[1:]
	}
	if len(words) == 0 || len(words) > e.maxWords {
		return "", false
	}
	if _, ok := e.skip[strings.ToLower(words[0])]; ok {
		return "", false
	}
	out := strings.Trim(strings.Join(words, " "), trimSet)
	if !hasWordRune(out) {
		return "", false
	}
	return out, true
}

func hasWordRune(s string) bool {
	for _, r := range s {
		if isWordRune(r) {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
