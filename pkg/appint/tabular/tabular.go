// Package tabular reads app listings from CSV or JSONL files and writes
// resolved records back as CSV.
package tabular

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/internalerr"
)

// Column names of the record output.
const (
	ColAppID       = "app_id"
	ColAppName     = "app_name"
	ColSourceURL   = "source_url"
	ColDescription = "description"
	ColStructured  = "integrations"
	ColCanonical   = "canonical_integrations"
	ColCount       = "integration_count"
)

// headerAliases maps accepted input headers to their column. Keys are
// lowercase.
var headerAliases = map[string]string{
	"app_id":                  ColAppID,
	"api_key":                 ColAppID,
	"id":                      ColAppID,
	"app_name":                ColAppName,
	"name":                    ColAppName,
	"source_url":              ColSourceURL,
	"app_store_url":           ColSourceURL,
	"url":                     ColSourceURL,
	"description":             ColDescription,
	"app_details":             ColDescription,
	"raw_description":         ColDescription,
	"integrations":            ColStructured,
	"structured_integrations": ColStructured,
	"canonical_integrations":  ColCanonical,
}

// RowError is an input row that was skipped. Line is 1-based and counts
// the header for CSV files.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// Format is an input file format.
type Format int

const (
	CSV Format = iota
	JSONL
)

// FormatOf picks the format from the file extension. Anything other than
// .jsonl or .ndjson is read as CSV.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return JSONL
	default:
		return CSV
	}
}

func column(header string) (string, bool) {
	col, ok := headerAliases[strings.ToLower(strings.TrimSpace(header))]
	return col, ok
}

func noRows(path string, skipped int) error {
	return fmt.Errorf("%s (%d rows skipped): %w", path, skipped, internalerr.ErrNoRows)
}
