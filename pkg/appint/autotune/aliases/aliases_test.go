package aliases

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/cluster"
)

type fakeProvider struct {
	clusters []ClusterStats
	err      error
}

func (f fakeProvider) AliasClusters(ctx context.Context) ([]ClusterStats, error) {
	return f.clusters, f.err
}

type fakeReviewer struct {
	decisions map[string]bool
	err       error
}

func (f fakeReviewer) ApproveAlias(ctx context.Context, sugg Suggestion) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.decisions[sugg.Variant], nil
}

type vocab map[string]bool

func (v vocab) IsCanonical(label string) bool { return v[label] }

var ignoreConfidence = cmpopts.IgnoreFields(Suggestion{}, "Confidence")

func sampleClusters() []ClusterStats {
	return []ClusterStats{
		{Name: "mailchimp", Members: []MemberStat{{"MailChimp Email", 2}, {"Mailchimp", 5}}},
		{Name: "google_analytics", Members: []MemberStat{{"Google Analytics", 10}, {"Google Analytics 4", 3}}},
		{Name: "cluster_2", Members: []MemberStat{{"Amazon", 4}, {"Stripe", 1}}},
	}
}

func TestAutoTunerAliases_NoReviewer(t *testing.T) {
	tuner := AutoTuner{
		Provider:   fakeProvider{clusters: sampleClusters()},
		Vocabulary: vocab{"Google Analytics": true, "Mailchimp": true},
	}

	got, err := tuner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []Suggestion{
		{Cluster: "google_analytics", Canonical: "Google Analytics", Variant: "Google Analytics 4", Apps: 3},
		{Cluster: "mailchimp", Canonical: "Mailchimp", Variant: "MailChimp Email", Apps: 2},
	}
	if diff := cmp.Diff(want, got, ignoreConfidence); diff != "" {
		t.Fatalf("suggestions mismatch (-want +got):\n%s", diff)
	}
	for _, s := range got {
		if s.Confidence < 0.9 || s.Confidence > 1 {
			t.Errorf("%s: confidence %f out of range", s.Variant, s.Confidence)
		}
	}
}

func TestAutoTunerAliases_Target(t *testing.T) {
	tests := []struct {
		name    string
		vocab   vocab
		members []MemberStat
		want    string
	}{
		{
			name:    "curated label wins over frequency",
			vocab:   vocab{"Mailchimp": true},
			members: []MemberStat{{"MailChimp Email", 10}, {"Mailchimp", 1}},
			want:    "Mailchimp",
		},
		{
			name:    "most frequent without vocabulary",
			members: []MemberStat{{"MailChimp Email", 10}, {"Mailchimp", 1}},
			want:    "MailChimp Email",
		},
		{
			name:    "shortest on equal frequency",
			members: []MemberStat{{"Google Analytics 4", 2}, {"Google Analytics", 2}},
			want:    "Google Analytics",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tuner := AutoTuner{
				Provider:   fakeProvider{clusters: []ClusterStats{{Name: "c", Members: tt.members}}},
				Vocabulary: tt.vocab,
				Thresholds: Thresholds{MinConfidence: 0.01},
			}
			got, err := tuner.Run(context.Background())
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if len(got) != 1 || got[0].Canonical != tt.want {
				t.Fatalf("expected canonical %q, got %+v", tt.want, got)
			}
		})
	}
}

func TestAutoTunerAliases_CuratedMembersStay(t *testing.T) {
	tuner := AutoTuner{
		Provider: fakeProvider{clusters: []ClusterStats{
			{Name: "facebook", Members: []MemberStat{{"Facebook", 9}, {"Facebook Pixel", 4}}},
		}},
		Vocabulary: vocab{"Facebook": true, "Facebook Pixel": true},
	}
	got, err := tuner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("curated labels must not be suggested as variants, got %+v", got)
	}
}

func TestAutoTunerAliases_MinConfidence(t *testing.T) {
	tuner := AutoTuner{
		Provider:   fakeProvider{clusters: sampleClusters()},
		Vocabulary: vocab{"Google Analytics": true, "Mailchimp": true},
		Thresholds: Thresholds{MinConfidence: 0.95},
	}
	got, err := tuner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 1 || got[0].Variant != "Google Analytics 4" {
		t.Fatalf("expected only the close variant, got %+v", got)
	}
}

func TestAutoTunerAliases_WithReviewer(t *testing.T) {
	tuner := AutoTuner{
		Provider:   fakeProvider{clusters: sampleClusters()},
		Vocabulary: vocab{"Google Analytics": true, "Mailchimp": true},
		Reviewer: fakeReviewer{decisions: map[string]bool{
			"Google Analytics 4": true,
			"MailChimp Email":    false,
		}},
	}
	got, err := tuner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 1 || got[0].Variant != "Google Analytics 4" {
		t.Fatalf("expected reviewer to approve only Google Analytics 4, got %+v", got)
	}
}

func TestAutoTunerAliases_Errors(t *testing.T) {
	if _, err := (&AutoTuner{}).Run(context.Background()); err == nil {
		t.Error("expected error for nil provider")
	}

	boom := errors.New("boom")
	tuner := AutoTuner{Provider: fakeProvider{err: boom}}
	if _, err := tuner.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected provider error, got %v", err)
	}

	tuner = AutoTuner{
		Provider:   fakeProvider{clusters: sampleClusters()},
		Vocabulary: vocab{"Google Analytics": true},
		Reviewer:   fakeReviewer{err: boom},
	}
	if _, err := tuner.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected reviewer error, got %v", err)
	}
}

func TestFromClusters(t *testing.T) {
	counts := map[string]int64{"Google Analytics": 7, "Google Analytics 4": 2}
	got := FromClusters([]cluster.Cluster{
		{Name: "google_analytics", Members: []string{"Google Analytics", "Google Analytics 4"}},
	}, func(l string) int64 { return counts[l] })

	want := StaticProvider{{
		Name:    "google_analytics",
		Members: []MemberStat{{"Google Analytics", 7}, {"Google Analytics 4", 2}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromClusters mismatch (-want +got):\n%s", diff)
	}
}
