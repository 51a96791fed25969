package normalize

import "sort"

// DenyList holds names that are never integrations: the host platform
// itself, generic phrases, filler words.
type DenyList struct {
	terms map[string]struct{}
}

// NewDenyList creates a deny-list from raw terms. Terms are folded with Key.
func NewDenyList(terms []string) *DenyList {
	d := &DenyList{terms: make(map[string]struct{}, len(terms))}
	for _, t := range terms {
		d.Add(t)
	}
	return d
}

// IsDenied checks whether a folded key is denied.
func (d *DenyList) IsDenied(key string) bool {
	if d == nil {
		return false
	}
	_, ok := d.terms[key]
	return ok
}

// Add denies a term.
func (d *DenyList) Add(term string) {
	if k := Key(term); k != "" {
		d.terms[k] = struct{}{}
	}
}

// Remove lifts a term from the deny-list.
func (d *DenyList) Remove(term string) {
	delete(d.terms, Key(term))
}

// All returns all denied keys, sorted.
func (d *DenyList) All() []string {
	if d == nil {
		return nil
	}
	out := make([]string, 0, len(d.terms))
	for t := range d.terms {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
