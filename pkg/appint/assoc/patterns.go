package assoc

import (
	"sort"
	"strings"
)

// Bucket counts apps whose integration count falls in [Min, Max].
// Max < 0 means unbounded.
type Bucket struct {
	Name string
	Min  int
	Max  int
	Apps int
}

// DensityPoint is the number of apps with exactly Integrations integrations.
type DensityPoint struct {
	Integrations int
	Apps         int
}

// Complexity groups apps by how many integrations they carry.
type Complexity struct {
	Buckets []Bucket
	Density []DensityPoint // ascending by Integrations
}

// ComplexityBuckets are the app complexity bands.
var ComplexityBuckets = []Bucket{
	{Name: "none", Min: 0, Max: 0},
	{Name: "simple", Min: 1, Max: 2},
	{Name: "moderate", Min: 3, Max: 5},
	{Name: "complex", Min: 6, Max: 8},
	{Name: "very_complex", Min: 9, Max: -1},
}

func complexityOf(sizes []int) Complexity {
	c := Complexity{Buckets: make([]Bucket, len(ComplexityBuckets))}
	copy(c.Buckets, ComplexityBuckets)

	density := make(map[int]int)
	for _, n := range sizes {
		density[n]++
		for i := range c.Buckets {
			b := &c.Buckets[i]
			if n >= b.Min && (b.Max < 0 || n <= b.Max) {
				b.Apps++
				break
			}
		}
	}
	for n, apps := range density {
		c.Density = append(c.Density, DensityPoint{Integrations: n, Apps: apps})
	}
	sort.Slice(c.Density, func(i, j int) bool {
		return c.Density[i].Integrations < c.Density[j].Integrations
	})
	return c
}

// Bucket returns the named bucket.
func (c Complexity) Bucket(name string) (Bucket, bool) {
	for _, b := range c.Buckets {
		if b.Name == name {
			return b, true
		}
	}
	return Bucket{}, false
}

// CoCount is a co-integration and the number of shared apps.
type CoCount struct {
	Label string
	Count int64
}

// RareIntegration is an integration seen in few apps, with its context.
type RareIntegration struct {
	Label          string
	Count          int64
	Apps           []string  // app IDs carrying it
	CoIntegrations []CoCount // most frequent companions, count desc
}

func (a *Analyzer) rare(freqs []Frequency) []RareIntegration {
	th := a.thresholds
	var out []RareIntegration
	for _, f := range freqs {
		if f.Count > th.RareMax {
			continue
		}
		apps := make([]string, len(a.apps[f.Label]))
		copy(apps, a.apps[f.Label])
		out = append(out, RareIntegration{
			Label:          f.Label,
			Count:          f.Count,
			Apps:           apps,
			CoIntegrations: a.coIntegrations(f.Label, th.TopCo),
		})
	}
	return out
}

func (a *Analyzer) coIntegrations(label string, k int) []CoCount {
	var co []CoCount
	for p, n := range a.counter.Nxy {
		switch label {
		case p.A:
			co = append(co, CoCount{Label: p.B, Count: n})
		case p.B:
			co = append(co, CoCount{Label: p.A, Count: n})
		}
	}
	sort.Slice(co, func(i, j int) bool {
		if co[i].Count != co[j].Count {
			return co[i].Count > co[j].Count
		}
		return co[i].Label < co[j].Label
	})
	if k > 0 && len(co) > k {
		co = co[:k]
	}
	return co
}

// Stack is a combination of integrations that recurs across apps.
type Stack struct {
	Integrations []string // sorted
	Apps         int64
}

const stackSep = "\x1f"

func joinStack(combo []string) string {
	return strings.Join(combo, stackSep)
}

func (a *Analyzer) topStacks() []Stack {
	var out []Stack
	for key, n := range a.stacks {
		if n < a.thresholds.StackMinApps {
			continue
		}
		out = append(out, Stack{Integrations: strings.Split(key, stackSep), Apps: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Apps != out[j].Apps {
			return out[i].Apps > out[j].Apps
		}
		return joinStack(out[i].Integrations) < joinStack(out[j].Integrations)
	})
	return out
}

// combinations calls fn with every k-element combination of items, in
// lexicographic index order. fn must not retain the slice.
func combinations(items []string, k int, fn func([]string)) {
	n := len(items)
	if k <= 0 || k > n {
		return
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	combo := make([]string, k)
	for {
		for i, j := range idx {
			combo[i] = items[j]
		}
		fn(combo)

		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
