package assoc

import (
	"testing"
)

func TestCounterBasic(t *testing.T) {
	counter := NewCounter()

	counter.AddApp([]string{"Klaviyo", "Stripe", "Facebook"})

	if counter.TotalApps() != 1 {
		t.Errorf("Expected 1 app, got %d", counter.TotalApps())
	}

	if counter.GetCount("Stripe") != 1 {
		t.Error("Integration 'Stripe' should have count 1")
	}

	if counter.UniquePairs() != 3 {
		t.Errorf("Expected 3 pairs, got %d", counter.UniquePairs())
	}
}

func TestCounterCanonicalOrdering(t *testing.T) {
	counter := NewCounter()

	counter.AddApp([]string{"Zapier", "Amazon"})

	if counter.GetPairCount("Zapier", "Amazon") != counter.GetPairCount("Amazon", "Zapier") {
		t.Error("Pair count should be symmetric")
	}
	if _, ok := counter.Nxy[Pair{A: "Amazon", B: "Zapier"}]; !ok {
		t.Error("pairs must be stored with A < B")
	}
}

func TestCounterDuplicatesCountedOnce(t *testing.T) {
	counter := NewCounter()

	counter.AddApp([]string{"Stripe", "Stripe", ""})

	if counter.GetCount("Stripe") != 1 {
		t.Errorf("Stripe count = %d, want 1", counter.GetCount("Stripe"))
	}
	if counter.GetSoloCount("Stripe") != 1 {
		t.Error("single distinct label is a standalone app")
	}
	if counter.UniqueLabels() != 1 || counter.UniquePairs() != 0 {
		t.Error("unexpected label or pair count")
	}
}

func TestCounterEmptyAppCountsTowardsTotal(t *testing.T) {
	counter := NewCounter()

	counter.AddApp(nil)
	counter.AddApp([]string{"Stripe"})

	if counter.TotalApps() != 2 {
		t.Errorf("TotalApps = %d, want 2", counter.TotalApps())
	}
}
