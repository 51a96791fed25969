// Package aliases turns clusters of similarly spelled integration labels
// into alias suggestions for the curated vocabulary.
package aliases

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/cluster"
)

// MemberStat is a cluster member and the number of apps carrying it.
type MemberStat struct {
	Label string
	Apps  int64
}

// ClusterStats is one similarity cluster with member frequencies.
type ClusterStats struct {
	Name    string
	Members []MemberStat
}

// Suggestion proposes resolving Variant to Canonical.
type Suggestion struct {
	Cluster    string
	Canonical  string
	Variant    string
	Confidence float64 // Jaro-Winkler similarity of the case-folded labels
	Apps       int64   // apps carrying the variant
}

// StatsProvider supplies clusters to tune from.
type StatsProvider interface {
	AliasClusters(ctx context.Context) ([]ClusterStats, error)
}

// Vocabulary reports whether a label is already curated.
type Vocabulary interface {
	IsCanonical(label string) bool
}

// Reviewer optionally approves alias suggestions.
type Reviewer interface {
	ApproveAlias(ctx context.Context, sugg Suggestion) (bool, error)
}

// Thresholds control sensitivity.
type Thresholds struct {
	MinConfidence float64 // e.g. 0.85
}

// AutoTuner generates alias suggestions.
type AutoTuner struct {
	Provider   StatsProvider
	Vocabulary Vocabulary // optional
	Thresholds Thresholds
	Reviewer   Reviewer // optional
}

// Run executes the autotuner and returns approved suggestions ordered by
// cluster name, then variant.
func (t *AutoTuner) Run(ctx context.Context) ([]Suggestion, error) {
	if t.Provider == nil {
		return nil, errors.New("alias autotune: nil stats provider")
	}
	clusters, err := t.Provider.AliasClusters(ctx)
	if err != nil {
		return nil, err
	}

	th := t.thresholdsOrDefault()
	var suggestions []Suggestion
	for _, c := range clusters {
		if len(c.Members) < 2 {
			continue
		}
		target := t.target(c.Members)
		for _, m := range c.Members {
			if m.Label == target.Label || t.isCanonical(m.Label) {
				continue
			}
			conf := matchr.JaroWinkler(strings.ToLower(m.Label), strings.ToLower(target.Label), false)
			if conf < th.MinConfidence {
				continue
			}
			suggestions = append(suggestions, Suggestion{
				Cluster:    c.Name,
				Canonical:  target.Label,
				Variant:    m.Label,
				Confidence: conf,
				Apps:       m.Apps,
			})
		}
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Cluster != suggestions[j].Cluster {
			return suggestions[i].Cluster < suggestions[j].Cluster
		}
		return suggestions[i].Variant < suggestions[j].Variant
	})

	if t.Reviewer == nil {
		return suggestions, nil
	}

	var approved []Suggestion
	for _, sugg := range suggestions {
		ok, err := t.Reviewer.ApproveAlias(ctx, sugg)
		if err != nil {
			return nil, err
		}
		if ok {
			approved = append(approved, sugg)
		}
	}
	return approved, nil
}

func (t *AutoTuner) thresholdsOrDefault() Thresholds {
	th := t.Thresholds
	if th.MinConfidence == 0 {
		th.MinConfidence = 0.85
	}
	return th
}

func (t *AutoTuner) isCanonical(label string) bool {
	return t.Vocabulary != nil && t.Vocabulary.IsCanonical(label)
}

// target picks the label the rest of the cluster should resolve to:
// a curated label if there is one, else the most frequent, else the
// shortest, else the lexicographically smallest.
func (t *AutoTuner) target(members []MemberStat) MemberStat {
	best := members[0]
	for _, m := range members[1:] {
		if better(m, best, t.isCanonical) {
			best = m
		}
	}
	return best
}

func better(a, b MemberStat, canonical func(string) bool) bool {
	if ca, cb := canonical(a.Label), canonical(b.Label); ca != cb {
		return ca
	}
	if a.Apps != b.Apps {
		return a.Apps > b.Apps
	}
	if la, lb := len([]rune(a.Label)), len([]rune(b.Label)); la != lb {
		return la < lb
	}
	return a.Label < b.Label
}

// StaticProvider serves a fixed cluster list.
type StaticProvider []ClusterStats

// AliasClusters implements StatsProvider.
func (p StaticProvider) AliasClusters(context.Context) ([]ClusterStats, error) {
	return p, nil
}

// FromClusters attaches app counts to clusters.
func FromClusters(clusters []cluster.Cluster, count func(label string) int64) StaticProvider {
	out := make(StaticProvider, 0, len(clusters))
	for _, c := range clusters {
		cs := ClusterStats{Name: c.Name}
		for _, m := range c.Members {
			cs.Members = append(cs.Members, MemberStat{Label: m, Apps: count(m)})
		}
		out = append(out, cs)
	}
	return out
}
