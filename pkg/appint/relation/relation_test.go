package relation

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/internalerr"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/record"
)

func TestBuild(t *testing.T) {
	recs := []record.AppRecord{
		{AppID: "b", Canonical: []string{"Stripe", "Facebook"}},
		{AppID: "a", Canonical: nil},
		{AppID: "b", Canonical: []string{"Klaviyo"}},
	}

	table, errs := Build(recs)
	if len(errs) != 1 || !errors.Is(errs[0], internalerr.ErrDuplicate) {
		t.Fatalf("expected one duplicate error, got %v", errs)
	}
	if table.Len() != 2 {
		t.Fatalf("Len = %d, want 2", table.Len())
	}
	if diff := cmp.Diff([]string{"b", "a"}, table.AppIDs()); diff != "" {
		t.Errorf("AppIDs mismatch (-want +got):\n%s", diff)
	}

	got, ok := table.Integrations("b")
	if !ok {
		t.Fatal("app b missing")
	}
	if diff := cmp.Diff([]string{"Facebook", "Stripe"}, got); diff != "" {
		t.Errorf("Integrations mismatch (-want +got):\n%s", diff)
	}

	// returned slices are copies
	got[0] = "mutated"
	again, _ := table.Integrations("b")
	if again[0] != "Facebook" {
		t.Error("table was mutated through a returned slice")
	}

	if _, ok := table.Integrations("missing"); ok {
		t.Error("unexpected hit for unknown app")
	}
}

func TestFromRowsAndLabels(t *testing.T) {
	table, errs := FromRows([]Row{
		{AppID: "1", Integrations: []string{"Klaviyo", "Facebook", "Klaviyo", ""}},
		{AppID: "2", Integrations: []string{"Stripe", "Facebook"}},
		{AppID: "", Integrations: []string{"Ghost"}},
	})
	if len(errs) != 1 || !errors.Is(errs[0], internalerr.ErrMissingField) {
		t.Fatalf("expected one missing-field error, got %v", errs)
	}
	if diff := cmp.Diff([]string{"Facebook", "Klaviyo", "Stripe"}, table.Labels()); diff != "" {
		t.Errorf("Labels mismatch (-want +got):\n%s", diff)
	}

	var visited []string
	table.Each(func(appID string, ints []string) {
		visited = append(visited, appID)
	})
	if diff := cmp.Diff([]string{"1", "2"}, visited); diff != "" {
		t.Errorf("Each order mismatch (-want +got):\n%s", diff)
	}

	rows := table.Rows()
	if diff := cmp.Diff([]string{"Facebook", "Klaviyo"}, rows[0].Integrations); diff != "" {
		t.Errorf("Rows dedup mismatch (-want +got):\n%s", diff)
	}
}
