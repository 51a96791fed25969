package cluster

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClusterDefaults(t *testing.T) {
	labels := []string{
		"Google Analytics", "Google Analytics 4", "Stripe", "Klaviyo",
		"Mailchimp", "MailChimp Email", "Facebook Ads", "Facebook Pixel",
		"Stripe", " ",
	}

	got := Map(Clusterer{}.Cluster(labels))
	want := map[string][]string{
		"google_analytics": {"Google Analytics", "Google Analytics 4"},
		"mailchimp":        {"MailChimp Email", "Mailchimp"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("clusters mismatch (-want +got):\n%s", diff)
	}
}

func TestClusterIsTransitiveThroughCorePoints(t *testing.T) {
	c := Clusterer{Threshold: 0.5}
	got := c.Cluster([]string{"Klaviyo", "Klaviyo Reviews", "Klaviyo SMS", "Stripe"})

	want := []Cluster{{Name: "klaviyo", Members: []string{"Klaviyo", "Klaviyo Reviews", "Klaviyo SMS"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("clusters mismatch (-want +got):\n%s", diff)
	}
}

func TestClusterNoiseOnly(t *testing.T) {
	got := Clusterer{}.Cluster([]string{"Stripe", "Klaviyo", "Zapier"})
	if len(got) != 0 {
		t.Errorf("expected no clusters, got %+v", got)
	}
	if got := (Clusterer{}).Cluster(nil); got != nil {
		t.Errorf("expected nil for empty input, got %+v", got)
	}
}

func TestClusterDeterministic(t *testing.T) {
	labels := []string{"Amazon", "Amazon Pay", "Amazon Prime", "Stripe", "eBay"}
	c := Clusterer{Threshold: 0.5}
	first := c.Cluster(labels)
	reversed := []string{"eBay", "Stripe", "Amazon Prime", "Amazon Pay", "Amazon"}
	if diff := cmp.Diff(first, c.Cluster(reversed)); diff != "" {
		t.Errorf("input order changed the result (-first +got):\n%s", diff)
	}
}

func TestCommonName(t *testing.T) {
	tests := []struct {
		members []string
		want    string
	}{
		{[]string{"Google Analytics", "Google Analytics 4"}, "google_analytics"},
		{[]string{"Shopify POS", "Shopify POS Pro"}, "shopify_pos"},
		{[]string{"Zap", "Zip"}, ""},
		{[]string{"  Pay-", "pay!"}, "pay"},
	}
	for _, tt := range tests {
		if got := commonName(tt.members, DefaultMinNameLen); got != tt.want {
			t.Errorf("commonName(%q) = %q, want %q", tt.members, got, tt.want)
		}
	}
}

func TestFallbackNames(t *testing.T) {
	c := Clusterer{MinNameLen: 40}
	got := c.Cluster([]string{"Google Analytics", "Google Analytics 4", "Mailchimp", "MailChimp Email", "Stripe"})

	var names []string
	for _, cl := range got {
		names = append(names, cl.Name)
	}
	if diff := cmp.Diff([]string{"cluster_0", "cluster_1"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestDBSCANSeparateComponents(t *testing.T) {
	neighbors := [][]int{{0, 1}, {1, 0}, {2, 3}, {3, 2}, {4}}
	got := dbscan(neighbors, 2)
	if diff := cmp.Diff([]int{0, 0, 1, 1, -1}, got); diff != "" {
		t.Errorf("dbscan mismatch (-want +got):\n%s", diff)
	}
}

func TestDBSCANBorderPoint(t *testing.T) {
	// 0 is visited first and looks like noise, then the core point 1 claims it
	neighbors := [][]int{{0, 1}, {1, 0, 2}, {2, 1}, {3}}
	got := dbscan(neighbors, 3)
	if diff := cmp.Diff([]int{0, 0, 0, -1}, got); diff != "" {
		t.Errorf("dbscan mismatch (-want +got):\n%s", diff)
	}
}

func TestVectorsAreNormalized(t *testing.T) {
	vecs := vectorize([]string{"Klaviyo", "Klaviyo SMS", "x"}, 2, 3)
	for i, v := range vecs[:2] {
		var sum float64
		for _, term := range v {
			sum += term.weight * term.weight
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("vector %d has squared norm %f", i, sum)
		}
	}
	// "x" is shorter than the smallest n-gram
	if len(vecs[2]) != 0 {
		t.Errorf("expected empty vector, got %v", vecs[2])
	}
	if s := cosine(vecs[0], vecs[0]); math.Abs(s-1) > 1e-9 {
		t.Errorf("self similarity = %f", s)
	}
}
