package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/record"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/relation"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/tabular"
)

// output opens path for writing, or stdout for "" and "-".
func output(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func readApps(path string) ([]record.AppAttrs, int, error) {
	apps, skipped, err := tabular.ReadApps(path)
	for _, s := range skipped {
		logger.Warn("skipping input row", "file", path, "line", s.Line, "err", s.Err)
	}
	return apps, len(skipped), err
}

// buildRecords reads apps and resolves them. The int is the number of
// input rows dropped along the way.
func buildRecords(ctx context.Context, e *appint.Engine, path string) ([]record.AppRecord, int, error) {
	apps, skipped, err := readApps(path)
	if err != nil {
		return nil, skipped, err
	}
	records, invalid, err := e.BuildRecords(ctx, apps)
	if err != nil {
		return nil, skipped, err
	}
	return records, skipped + len(invalid), nil
}

// loadTable reads a relation written by `appint build`, or builds one from
// raw apps when fromApps is set.
func loadTable(ctx context.Context, e *appint.Engine, path string, fromApps bool) (*relation.Table, int, error) {
	if fromApps {
		records, skipped, err := buildRecords(ctx, e, path)
		if err != nil {
			return nil, skipped, err
		}
		t, dups := e.BuildTable(records)
		return t, skipped + len(dups), nil
	}

	rows, skipped, err := tabular.ReadRelation(path)
	for _, s := range skipped {
		logger.Warn("skipping relation row", "file", path, "line", s.Line, "err", s.Err)
	}
	if err != nil {
		return nil, len(skipped), err
	}
	t, dups := relation.FromRows(rows)
	for _, d := range dups {
		logger.Warn("skipping relation row", "file", path, "err", d)
	}
	return t, len(skipped) + len(dups), nil
}

func writeRecords(path string, records []record.AppRecord) error {
	w, closeFn, err := output(path)
	if err != nil {
		return err
	}
	if err := tabular.WriteRecords(w, records); err != nil {
		closeFn()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return closeFn()
}
