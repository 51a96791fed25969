package maintenance

import (
	"context"
	"errors"
	"sort"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/relation"
)

// RowSource abstracts how we iterate relation rows for cleaning.
type RowSource interface {
	Next(ctx context.Context) (relation.Row, bool, error)
}

// Resolver maps a stored label onto the current vocabulary. "" drops it.
type Resolver interface {
	Normalize(raw string) string
}

// Cleaner re-resolves stored integration labels after alias or deny-list
// updates, without re-reading descriptions.
type Cleaner struct {
	Resolver Resolver
	Source   RowSource
}

// Result summarizes the cleaning run.
type Result struct {
	Processed int
	Updated   int
	Errors    int
}

// Clean replays rows from the source and returns them with labels resolved
// against the current vocabulary. Source errors are counted and skipped.
func (c *Cleaner) Clean(ctx context.Context) ([]relation.Row, Result, error) {
	var res Result
	if c.Resolver == nil || c.Source == nil {
		return nil, res, errors.New("cleaner: invalid configuration")
	}

	var out []relation.Row
	for {
		if err := ctx.Err(); err != nil {
			return out, res, err
		}
		row, ok, err := c.Source.Next(ctx)
		if err != nil {
			res.Errors++
			continue
		}
		if !ok {
			break
		}
		res.Processed++

		cleaned := c.resolve(row.Integrations)
		if !slicesEqual(cleaned, row.Integrations) {
			res.Updated++
		}
		out = append(out, relation.Row{AppID: row.AppID, Integrations: cleaned})
	}
	return out, res, nil
}

func (c *Cleaner) resolve(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		r := c.Resolver.Normalize(l)
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

func slicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SliceSource serves rows from memory.
type SliceSource struct {
	rows []relation.Row
	pos  int
}

func NewSliceSource(rows []relation.Row) *SliceSource {
	return &SliceSource{rows: rows}
}

func (s *SliceSource) Next(context.Context) (relation.Row, bool, error) {
	if s.pos >= len(s.rows) {
		return relation.Row{}, false, nil
	}
	row := s.rows[s.pos]
	s.pos++
	return row, true, nil
}
