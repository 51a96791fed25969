// Package relation holds the app-to-integrations table produced by the
// record builder. The table is built once and read-only afterwards.
package relation

import (
	"fmt"
	"sort"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/internalerr"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/record"
)

// Row is one app and its canonical integrations.
type Row struct {
	AppID        string
	Integrations []string // sorted, unique
}

// Table maps app IDs to canonical integration sets, in insertion order.
type Table struct {
	rows  []Row
	index map[string]int
}

// Build creates a table from records. A record whose app ID was already
// seen is skipped and reported as an internalerr.ErrDuplicate error.
func Build(records []record.AppRecord) (*Table, []error) {
	t := &Table{index: make(map[string]int, len(records))}
	var errs []error
	for _, r := range records {
		if err := t.add(r.AppID, r.Canonical); err != nil {
			errs = append(errs, err)
		}
	}
	return t, errs
}

// FromRows creates a table from already-resolved rows, e.g. a relation read
// back from disk.
func FromRows(rows []Row) (*Table, []error) {
	t := &Table{index: make(map[string]int, len(rows))}
	var errs []error
	for _, r := range rows {
		if err := t.add(r.AppID, r.Integrations); err != nil {
			errs = append(errs, err)
		}
	}
	return t, errs
}

func (t *Table) add(appID string, labels []string) error {
	if appID == "" {
		return fmt.Errorf("relation row without app_id: %w", internalerr.ErrMissingField)
	}
	if _, ok := t.index[appID]; ok {
		return fmt.Errorf("app %s: %w", appID, internalerr.ErrDuplicate)
	}
	t.index[appID] = len(t.rows)
	t.rows = append(t.rows, Row{AppID: appID, Integrations: uniqueSorted(labels)})
	return nil
}

func uniqueSorted(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of apps, including apps without integrations.
func (t *Table) Len() int {
	return len(t.rows)
}

// AppIDs returns app IDs in insertion order.
func (t *Table) AppIDs() []string {
	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.AppID
	}
	return out
}

// Integrations returns a copy of the integration set of an app.
func (t *Table) Integrations(appID string) ([]string, bool) {
	i, ok := t.index[appID]
	if !ok {
		return nil, false
	}
	src := t.rows[i].Integrations
	out := make([]string, len(src))
	copy(out, src)
	return out, true
}

// Each calls fn for every row in insertion order. fn must not modify the
// integrations slice.
func (t *Table) Each(fn func(appID string, integrations []string)) {
	for _, r := range t.rows {
		fn(r.AppID, r.Integrations)
	}
}

// Labels returns every distinct integration label in the table, sorted.
func (t *Table) Labels() []string {
	seen := make(map[string]struct{})
	for _, r := range t.rows {
		for _, l := range r.Integrations {
			seen[l] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Rows returns a copy of all rows.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	for i, r := range t.rows {
		ints := make([]string, len(r.Integrations))
		copy(ints, r.Integrations)
		out[i] = Row{AppID: r.AppID, Integrations: ints}
	}
	return out
}
