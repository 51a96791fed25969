package tabular

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/internalerr"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/record"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/relation"
)

// ReadApps loads app listings from path. Rows missing an app ID or name are
// skipped and returned as RowErrors. If no row survives, the error wraps
// internalerr.ErrNoRows.
func ReadApps(path string) ([]record.AppAttrs, []RowError, error) {
	rows, skipped, err := readRows(path)
	if err != nil {
		return nil, skipped, err
	}

	var apps []record.AppAttrs
	for _, r := range rows {
		a := record.AppAttrs{
			AppID:       strings.TrimSpace(r.fields[ColAppID]),
			AppName:     strings.TrimSpace(r.fields[ColAppName]),
			SourceURL:   strings.TrimSpace(r.fields[ColSourceURL]),
			Description: r.fields[ColDescription],
			Structured:  record.SplitStructured(r.fields[ColStructured]),
		}
		if err := a.Validate(); err != nil {
			skipped = append(skipped, RowError{Line: r.line, Err: err})
			continue
		}
		apps = append(apps, a)
	}
	if len(apps) == 0 {
		return nil, skipped, noRows(path, len(skipped))
	}
	return apps, skipped, nil
}

// ReadRelation loads a relation written by WriteRecords. Only the app ID
// and canonical integrations columns are used.
func ReadRelation(path string) ([]relation.Row, []RowError, error) {
	rows, skipped, err := readRows(path)
	if err != nil {
		return nil, skipped, err
	}

	var out []relation.Row
	for _, r := range rows {
		id := strings.TrimSpace(r.fields[ColAppID])
		if id == "" {
			skipped = append(skipped, RowError{Line: r.line, Err: fmt.Errorf("app_id: %w", internalerr.ErrMissingField)})
			continue
		}
		out = append(out, relation.Row{
			AppID:        id,
			Integrations: splitCanonical(r.fields[ColCanonical]),
		})
	}
	if len(out) == 0 {
		return nil, skipped, noRows(path, len(skipped))
	}
	return out, skipped, nil
}

// splitCanonical splits a canonical_integrations cell. Labels never contain
// commas, so no quoting is involved.
func splitCanonical(cell string) []string {
	var out []string
	for _, p := range strings.Split(cell, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type row struct {
	line   int
	fields map[string]string
}

func readRows(path string) ([]row, []RowError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch FormatOf(path) {
	case JSONL:
		return readJSONL(f)
	default:
		return readCSV(f, path)
	}
}

func readCSV(r io.Reader, path string) ([]row, []RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, noRows(path, 0)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	cols := make([]string, len(header))
	hasID := false
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if col, ok := column(h); ok {
			cols[i] = col
			hasID = hasID || col == ColAppID
		}
	}
	if !hasID {
		return nil, nil, fmt.Errorf("%s has no app id column: %w", path, internalerr.ErrMissingField)
	}

	var rows []row
	var skipped []RowError
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped = append(skipped, RowError{Line: perr.StartLine, Err: fmt.Errorf("%v: %w", perr.Err, internalerr.ErrInvalidInput)})
				continue
			}
			return nil, skipped, fmt.Errorf("read %s: %w", path, err)
		}
		line, _ := cr.FieldPos(0)
		fields := make(map[string]string, len(cols))
		for i, v := range rec {
			if i < len(cols) && cols[i] != "" {
				// first aliased column wins
				if _, ok := fields[cols[i]]; !ok {
					fields[cols[i]] = v
				}
			}
		}
		rows = append(rows, row{line: line, fields: fields})
	}
	return rows, skipped, nil
}

func readJSONL(r io.Reader) ([]row, []RowError, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var rows []row
	var skipped []RowError
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(text), &obj); err != nil {
			skipped = append(skipped, RowError{Line: line, Err: fmt.Errorf("%v: %w", err, internalerr.ErrInvalidInput)})
			continue
		}
		fields := make(map[string]string, len(obj))
		for k, raw := range obj {
			col, ok := column(k)
			if !ok {
				continue
			}
			if _, dup := fields[col]; dup {
				continue
			}
			fields[col] = jsonCell(raw)
		}
		rows = append(rows, row{line: line, fields: fields})
	}
	if err := sc.Err(); err != nil {
		return nil, skipped, err
	}
	return rows, skipped, nil
}

// jsonCell flattens a JSON value into a cell string. Arrays are joined
// with commas so they split like a CSV integrations field.
func jsonCell(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			b, _ := json.Marshal(e)
			parts = append(parts, jsonCell(b))
		}
		return strings.Join(parts, ",")
	default:
		return string(raw)
	}
}
