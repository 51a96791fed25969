// Package cluster groups integration labels that are spelled alike.
//
// Labels are embedded as TF-IDF weighted character n-grams and grouped by
// density-based clustering over cosine similarity. Groups are advisory:
// they feed reports and alias suggestions and are never merged into the
// relation automatically.
package cluster

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Defaults for Clusterer fields left at zero.
const (
	DefaultThreshold  = 0.7
	DefaultMinPoints  = 2
	DefaultMinGram    = 2
	DefaultMaxGram    = 3
	DefaultMinNameLen = 3
)

// similarity tolerance for float comparisons against Threshold
const epsilon = 1e-9

// Clusterer configures label clustering. The zero value uses the defaults.
type Clusterer struct {
	Threshold  float64 // minimum cosine similarity for two labels to be neighbors
	MinPoints  int     // neighborhood size, self included, that makes a core label
	MinGram    int
	MaxGram    int
	MinNameLen int // shortest common substring accepted as a cluster name
}

// Cluster is a named group of similar labels.
type Cluster struct {
	Name    string
	Members []string // sorted
}

func (c Clusterer) withDefaults() Clusterer {
	if c.Threshold <= 0 {
		c.Threshold = DefaultThreshold
	}
	if c.MinPoints <= 0 {
		c.MinPoints = DefaultMinPoints
	}
	if c.MinGram <= 0 {
		c.MinGram = DefaultMinGram
	}
	if c.MaxGram < c.MinGram {
		c.MaxGram = DefaultMaxGram
		if c.MaxGram < c.MinGram {
			c.MaxGram = c.MinGram
		}
	}
	if c.MinNameLen <= 0 {
		c.MinNameLen = DefaultMinNameLen
	}
	return c
}

// Cluster groups labels. Duplicate and blank labels are ignored; labels
// without a close enough neighbor are left out of every cluster.
func (c Clusterer) Cluster(labels []string) []Cluster {
	c = c.withDefaults()
	items := uniqueLabels(labels)
	if len(items) == 0 {
		return nil
	}

	vecs := vectorize(items, c.MinGram, c.MaxGram)
	neighbors := make([][]int, len(items))
	for i := range items {
		neighbors[i] = append(neighbors[i], i)
		for j := i + 1; j < len(items); j++ {
			if cosine(vecs[i], vecs[j]) >= c.Threshold-epsilon {
				neighbors[i] = append(neighbors[i], j)
				neighbors[j] = append(neighbors[j], i)
			}
		}
	}

	assignment := dbscan(neighbors, c.MinPoints)

	groups := make(map[int][]string)
	var order []int
	for i, id := range assignment {
		if id < 0 {
			continue
		}
		if _, ok := groups[id]; !ok {
			order = append(order, id)
		}
		groups[id] = append(groups[id], items[i])
	}
	sort.Ints(order)

	used := make(map[string]int)
	out := make([]Cluster, 0, len(order))
	for _, id := range order {
		members := groups[id]
		sort.Strings(members)
		name := commonName(members, c.MinNameLen)
		if name == "" {
			name = fmt.Sprintf("cluster_%d", id)
		}
		used[name]++
		if n := used[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		out = append(out, Cluster{Name: name, Members: members})
	}
	return out
}

// Map renders clusters as name -> members.
func Map(clusters []Cluster) map[string][]string {
	out := make(map[string][]string, len(clusters))
	for _, c := range clusters {
		out[c.Name] = c.Members
	}
	return out
}

func uniqueLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// dbscan assigns a cluster id to every point, or -1 for noise. neighbors[i]
// must include i itself.
func dbscan(neighbors [][]int, minPoints int) []int {
	const unvisited, noise = -2, -1
	labels := make([]int, len(neighbors))
	for i := range labels {
		labels[i] = unvisited
	}

	next := 0
	for i := range neighbors {
		if labels[i] != unvisited {
			continue
		}
		if len(neighbors[i]) < minPoints {
			labels[i] = noise
			continue
		}
		id := next
		next++
		labels[i] = id
		queue := append([]int(nil), neighbors[i]...)
		for len(queue) > 0 {
			j := queue[0]
			queue = queue[1:]
			if labels[j] == noise {
				labels[j] = id
			}
			if labels[j] != unvisited {
				continue
			}
			labels[j] = id
			if len(neighbors[j]) >= minPoints {
				queue = append(queue, neighbors[j]...)
			}
		}
	}
	return labels
}

// commonName derives a cluster name from the longest substring shared by
// every member: trimmed, lowercased, spaces replaced by underscores.
func commonName(members []string, minLen int) string {
	sub := longestCommonSubstring(members)
	sub = strings.TrimFunc(sub, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len([]rune(sub)) < minLen {
		return ""
	}
	return strings.Join(strings.Fields(sub), "_")
}

// longestCommonSubstring returns the longest case-folded substring present
// in all strings. Ties go to the earliest position in the shortest string.
func longestCommonSubstring(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	folded := make([]string, len(ss))
	for i, s := range ss {
		folded[i] = prepare(s)
	}
	base := folded[0]
	for _, s := range folded[1:] {
		if len([]rune(s)) < len([]rune(base)) || (len([]rune(s)) == len([]rune(base)) && s < base) {
			base = s
		}
	}

	runes := []rune(base)
	for size := len(runes); size > 0; size-- {
		for start := 0; start+size <= len(runes); start++ {
			cand := string(runes[start : start+size])
			if containedInAll(folded, cand) {
				return cand
			}
		}
	}
	return ""
}

func containedInAll(ss []string, sub string) bool {
	for _, s := range ss {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
