package tabular

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/record"
)

// RecordHeader is the column order written by WriteRecords.
var RecordHeader = []string{
	ColAppID, ColAppName, ColSourceURL, ColDescription, ColStructured, ColCanonical, ColCount,
}

// WriteRecords writes records as CSV: the input columns, the sorted
// canonical set comma-joined, and its size.
func WriteRecords(w io.Writer, records []record.AppRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RecordHeader); err != nil {
		return err
	}
	for _, r := range records {
		err := cw.Write([]string{
			r.AppID,
			r.AppName,
			r.SourceURL,
			r.Description,
			strings.Join(r.Structured, " | "),
			strings.Join(r.Canonical, ","),
			strconv.Itoa(len(r.Canonical)),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// AppHeader is the column order written by WriteApps. ReadApps accepts it.
var AppHeader = []string{ColAppID, ColAppName, ColSourceURL, ColDescription, ColStructured}

// WriteApps writes raw input rows as CSV, structured integrations joined
// with " | ".
func WriteApps(w io.Writer, apps []record.AppAttrs) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(AppHeader); err != nil {
		return err
	}
	for _, a := range apps {
		err := cw.Write([]string{
			a.AppID,
			a.AppName,
			a.SourceURL,
			a.Description,
			strings.Join(a.Structured, " | "),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
