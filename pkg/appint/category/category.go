// Package category assigns integration labels to named groups using
// ordered keyword rules.
package category

import (
	"fmt"
	"sort"
	"strings"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/internalerr"
)

// Rule matches a label when it starts with one of Prefixes or contains one
// of Keywords. CoKeywords match against the integrations an app carries
// alongside the label and are only consulted after every label rule missed.
// All comparisons ignore case.
type Rule struct {
	Name       string   `yaml:"name"`
	Prefixes   []string `yaml:"prefixes,omitempty"`
	Keywords   []string `yaml:"keywords,omitempty"`
	CoKeywords []string `yaml:"co_keywords,omitempty"`
}

// Categorizer evaluates rules in order; the first match wins.
type Categorizer struct {
	rules    []Rule
	fallback string
}

// New validates rules and returns a Categorizer. Rules without any matcher
// or without a name, and an empty fallback, are configuration errors.
func New(rules []Rule, fallback string) (*Categorizer, error) {
	fallback = strings.TrimSpace(fallback)
	if fallback == "" {
		return nil, fmt.Errorf("category: empty fallback: %w", internalerr.ErrInvalidConfig)
	}
	c := &Categorizer{fallback: fallback}
	for i, r := range rules {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return nil, fmt.Errorf("category: rule %d has no name: %w", i, internalerr.ErrInvalidConfig)
		}
		lowered := Rule{
			Name:       name,
			Prefixes:   lowerAll(r.Prefixes),
			Keywords:   lowerAll(r.Keywords),
			CoKeywords: lowerAll(r.CoKeywords),
		}
		if len(lowered.Prefixes)+len(lowered.Keywords)+len(lowered.CoKeywords) == 0 {
			return nil, fmt.Errorf("category: rule %q matches nothing: %w", name, internalerr.ErrInvalidConfig)
		}
		c.rules = append(c.rules, lowered)
	}
	return c, nil
}

func lowerAll(in []string) []string {
	var out []string
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Fallback is the name assigned when no rule matches.
func (c *Categorizer) Fallback() string { return c.fallback }

// Names lists rule names in evaluation order, deduplicated, fallback last.
func (c *Categorizer) Names() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range c.rules {
		if _, ok := seen[r.Name]; ok {
			continue
		}
		seen[r.Name] = struct{}{}
		out = append(out, r.Name)
	}
	if _, ok := seen[c.fallback]; !ok {
		out = append(out, c.fallback)
	}
	return out
}

// Categorize returns the name of the first rule matching label.
func (c *Categorizer) Categorize(label string) string {
	return c.CategorizeWith(label, nil)
}

// CategorizeWith is Categorize with the label's co-integrations as context.
func (c *Categorizer) CategorizeWith(label string, co []string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	for _, r := range c.rules {
		if matchLabel(r, l) {
			return r.Name
		}
	}
	if len(co) > 0 {
		ctx := strings.ToLower(strings.Join(co, " "))
		for _, r := range c.rules {
			if containsAny(ctx, r.CoKeywords) {
				return r.Name
			}
		}
	}
	return c.fallback
}

func matchLabel(r Rule, l string) bool {
	for _, p := range r.Prefixes {
		if strings.HasPrefix(l, p) {
			return true
		}
	}
	return containsAny(l, r.Keywords)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Group is a category and the labels assigned to it.
type Group struct {
	Name   string
	Labels []string // sorted
}

// Group categorizes labels and returns the non-empty groups in the order
// of Names.
func (c *Categorizer) Group(labels []string) []Group {
	byName := make(map[string][]string)
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if _, ok := seen[l]; ok || strings.TrimSpace(l) == "" {
			continue
		}
		seen[l] = struct{}{}
		name := c.Categorize(l)
		byName[name] = append(byName[name], l)
	}

	var out []Group
	for _, name := range c.Names() {
		ls, ok := byName[name]
		if !ok {
			continue
		}
		sort.Strings(ls)
		out = append(out, Group{Name: name, Labels: ls})
	}
	return out
}
