package assoc

import "sort"

// Counter maintains per-app integration counts for association measures.
type Counter struct {
	N     int64            // total number of apps, including apps with no integrations
	Nx    map[string]int64 // apps containing each integration
	Nxy   map[Pair]int64   // apps containing both integrations of a pair
	Nsolo map[string]int64 // apps whose only integration is this one
}

// Pair is an unordered integration pair stored in lexicographic order (A < B).
type Pair struct {
	A, B string
}

// NewPair returns the canonical ordering of a and b.
func NewPair(a, b string) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// NewCounter creates a new co-occurrence counter.
func NewCounter() *Counter {
	return &Counter{
		Nx:    make(map[string]int64),
		Nxy:   make(map[Pair]int64),
		Nsolo: make(map[string]int64),
	}
}

// AddApp updates counts for one app's integration set. Duplicate labels in
// the input are counted once.
func (c *Counter) AddApp(integrations []string) {
	c.N++

	unique := dedupe(integrations)
	for _, t := range unique {
		c.Nx[t]++
	}
	if len(unique) == 1 {
		c.Nsolo[unique[0]]++
	}

	for i := 0; i < len(unique); i++ {
		for j := i + 1; j < len(unique); j++ {
			c.Nxy[Pair{A: unique[i], B: unique[j]}]++
		}
	}
}

// dedupe returns the sorted distinct non-empty labels.
func dedupe(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
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

// GetPairCount returns the co-occurrence count for a pair in either order.
func (c *Counter) GetPairCount(a, b string) int64 {
	return c.Nxy[NewPair(a, b)]
}

// GetCount returns the number of apps containing an integration.
func (c *Counter) GetCount(x string) int64 {
	return c.Nx[x]
}

// GetSoloCount returns the number of apps whose only integration is x.
func (c *Counter) GetSoloCount(x string) int64 {
	return c.Nsolo[x]
}

// TotalApps returns the total number of apps processed.
func (c *Counter) TotalApps() int64 {
	return c.N
}

// UniqueLabels returns the number of distinct integrations.
func (c *Counter) UniqueLabels() int {
	return len(c.Nx)
}

// UniquePairs returns the number of distinct co-occurring pairs.
func (c *Counter) UniquePairs() int {
	return len(c.Nxy)
}
