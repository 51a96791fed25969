// Package assoc computes integration frequencies, co-occurrence and
// association measures over the app-to-integrations relation.
package assoc

import (
	"sort"
)

// Thresholds control relationship classification. Comparisons are strict:
// a lift of exactly Complementary is not complementary.
//
// A zero field means "use the default", so zero can never be set on
// purpose. Use a negative Exclusive or Dependent to switch that class off:
// no lift or ratio falls below a negative cut-off.
type Thresholds struct {
	Complementary float64 // lift above this: integrations seen together
	Exclusive     float64 // lift below this: integrations seldom together
	Primary       float64 // standalone ratio above this: used on its own
	Dependent     float64 // standalone ratio below this: always bundled
	RareMax       int64   // integrations in at most this many apps are rare
	TopCo         int     // co-integrations listed per rare integration
	StackSize     int     // combination size for integration stacks
	StackMinApps  int64   // stacks must appear in at least this many apps
}

// DefaultThresholds returns the standard classification cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Complementary: 2.0,
		Exclusive:     0.5,
		Primary:       0.5,
		Dependent:     0.1,
		RareMax:       2,
		TopCo:         3,
		StackSize:     3,
		StackMinApps:  2,
	}
}

// Source yields the rows of an app-to-integrations relation.
type Source interface {
	Each(fn func(appID string, integrations []string))
}

// Analyzer aggregates per-app integration sets.
type Analyzer struct {
	counter    *Counter
	calc       *Calculator
	thresholds Thresholds
	apps       map[string][]string // integration -> app IDs, in arrival order
	sizes      []int               // integration count per app
	stacks     map[string]int64    // joined combination -> apps
}

// NewAnalyzer creates an empty analyzer. Zero threshold fields fall back
// to DefaultThresholds.
func NewAnalyzer(th Thresholds) *Analyzer {
	return &Analyzer{
		counter:    NewCounter(),
		calc:       NewCalculator(),
		thresholds: thresholdsOrDefault(th),
		apps:       make(map[string][]string),
		stacks:     make(map[string]int64),
	}
}

func thresholdsOrDefault(th Thresholds) Thresholds {
	def := DefaultThresholds()
	if th.Complementary == 0 {
		th.Complementary = def.Complementary
	}
	if th.Exclusive == 0 {
		th.Exclusive = def.Exclusive
	}
	if th.Primary == 0 {
		th.Primary = def.Primary
	}
	if th.Dependent == 0 {
		th.Dependent = def.Dependent
	}
	if th.RareMax == 0 {
		th.RareMax = def.RareMax
	}
	if th.TopCo == 0 {
		th.TopCo = def.TopCo
	}
	if th.StackSize == 0 {
		th.StackSize = def.StackSize
	}
	if th.StackMinApps == 0 {
		th.StackMinApps = def.StackMinApps
	}
	return th
}

// AnalyzeTable runs an analyzer over every row of src.
func AnalyzeTable(src Source, th Thresholds) *Analysis {
	a := NewAnalyzer(th)
	src.Each(a.Process)
	return a.Snapshot()
}

// Process consumes one app's integration set.
func (a *Analyzer) Process(appID string, integrations []string) {
	unique := dedupe(integrations)
	a.counter.AddApp(unique)
	a.sizes = append(a.sizes, len(unique))
	for _, l := range unique {
		a.apps[l] = append(a.apps[l], appID)
	}
	if k := a.thresholds.StackSize; k > 0 && len(unique) >= k {
		combinations(unique, k, func(combo []string) {
			a.stacks[joinStack(combo)]++
		})
	}
}

// Frequency is an integration and the number of apps carrying it.
type Frequency struct {
	Label string
	Count int64
	Share float64 // Count / total apps
}

// PairStat describes one co-occurring pair. A < B.
type PairStat struct {
	A, B  string
	Count int64
	Lift  float64
	PMI   float64
	NPMI  float64
}

// Standalone describes how often an integration is an app's only one.
type Standalone struct {
	Label string
	Apps  int64
	Solo  int64
	Ratio float64
}

// Analysis is a snapshot of everything computed from the relation.
type Analysis struct {
	TotalApps     int64
	Frequencies   []Frequency  // count desc, then label
	Pairs         []PairStat   // count desc, then A, B
	Complementary []PairStat   // lift desc
	Exclusive     []PairStat   // lift asc
	Standalone    []Standalone // label asc
	Primary       []Standalone // ratio desc
	Dependent     []Standalone // ratio asc
	Complexity    Complexity
	Rare          []RareIntegration
	Stacks        []Stack
	Thresholds    Thresholds
}

// Snapshot computes the analysis over everything processed so far.
func (a *Analyzer) Snapshot() *Analysis {
	c := a.counter
	th := a.thresholds
	out := &Analysis{
		TotalApps:  c.TotalApps(),
		Thresholds: th,
	}

	for label, n := range c.Nx {
		out.Frequencies = append(out.Frequencies, Frequency{
			Label: label,
			Count: n,
			Share: float64(n) / float64(c.N),
		})
	}
	sort.Slice(out.Frequencies, func(i, j int) bool {
		fi, fj := out.Frequencies[i], out.Frequencies[j]
		if fi.Count != fj.Count {
			return fi.Count > fj.Count
		}
		return fi.Label < fj.Label
	})

	for p, nAB := range c.Nxy {
		nA, nB := c.Nx[p.A], c.Nx[p.B]
		lift, ok := a.calc.Lift(nAB, nA, nB, c.N)
		if !ok {
			continue
		}
		pmi, _ := a.calc.PMI(nAB, nA, nB, c.N)
		npmi, _ := a.calc.NPMI(nAB, nA, nB, c.N)
		ps := PairStat{A: p.A, B: p.B, Count: nAB, Lift: lift, PMI: pmi, NPMI: npmi}
		out.Pairs = append(out.Pairs, ps)
		switch {
		case lift > th.Complementary:
			out.Complementary = append(out.Complementary, ps)
		case lift < th.Exclusive:
			out.Exclusive = append(out.Exclusive, ps)
		}
	}
	sort.Slice(out.Pairs, func(i, j int) bool {
		pi, pj := out.Pairs[i], out.Pairs[j]
		if pi.Count != pj.Count {
			return pi.Count > pj.Count
		}
		return pairLess(pi, pj)
	})
	sort.Slice(out.Complementary, func(i, j int) bool {
		pi, pj := out.Complementary[i], out.Complementary[j]
		if pi.Lift != pj.Lift {
			return pi.Lift > pj.Lift
		}
		return pairLess(pi, pj)
	})
	sort.Slice(out.Exclusive, func(i, j int) bool {
		pi, pj := out.Exclusive[i], out.Exclusive[j]
		if pi.Lift != pj.Lift {
			return pi.Lift < pj.Lift
		}
		return pairLess(pi, pj)
	})

	for _, f := range out.Frequencies {
		solo := c.GetSoloCount(f.Label)
		ratio, ok := a.calc.StandaloneRatio(solo, f.Count)
		if !ok {
			continue
		}
		s := Standalone{Label: f.Label, Apps: f.Count, Solo: solo, Ratio: ratio}
		out.Standalone = append(out.Standalone, s)
		switch {
		case ratio > th.Primary:
			out.Primary = append(out.Primary, s)
		case ratio < th.Dependent:
			out.Dependent = append(out.Dependent, s)
		}
	}
	sort.Slice(out.Standalone, func(i, j int) bool {
		return out.Standalone[i].Label < out.Standalone[j].Label
	})
	sort.SliceStable(out.Primary, func(i, j int) bool {
		if out.Primary[i].Ratio != out.Primary[j].Ratio {
			return out.Primary[i].Ratio > out.Primary[j].Ratio
		}
		return out.Primary[i].Label < out.Primary[j].Label
	})
	sort.SliceStable(out.Dependent, func(i, j int) bool {
		if out.Dependent[i].Ratio != out.Dependent[j].Ratio {
			return out.Dependent[i].Ratio < out.Dependent[j].Ratio
		}
		return out.Dependent[i].Label < out.Dependent[j].Label
	})

	out.Complexity = complexityOf(a.sizes)
	out.Rare = a.rare(out.Frequencies)
	out.Stacks = a.topStacks()
	return out
}

func pairLess(x, y PairStat) bool {
	if x.A != y.A {
		return x.A < y.A
	}
	return x.B < y.B
}

// TopFrequencies returns at most k entries of the frequency ranking.
func (s *Analysis) TopFrequencies(k int) []Frequency {
	if k <= 0 || k > len(s.Frequencies) {
		k = len(s.Frequencies)
	}
	return s.Frequencies[:k]
}

// TopPairs returns at most k of the most frequent pairs.
func (s *Analysis) TopPairs(k int) []PairStat {
	return headPairs(s.Pairs, k)
}

// TopComplementary returns at most k complementary pairs, highest lift first.
func (s *Analysis) TopComplementary(k int) []PairStat {
	return headPairs(s.Complementary, k)
}

// TopExclusive returns at most k exclusive pairs, lowest lift first.
func (s *Analysis) TopExclusive(k int) []PairStat {
	return headPairs(s.Exclusive, k)
}

func headPairs(ps []PairStat, k int) []PairStat {
	if k <= 0 || k > len(ps) {
		k = len(ps)
	}
	return ps[:k]
}

// Count returns the number of apps carrying label.
func (s *Analysis) Count(label string) int64 {
	for _, f := range s.Frequencies {
		if f.Label == label {
			return f.Count
		}
	}
	return 0
}

// Pair returns the statistics of a co-occurring pair in either order.
func (s *Analysis) Pair(a, b string) (PairStat, bool) {
	p := NewPair(a, b)
	for _, ps := range s.Pairs {
		if ps.A == p.A && ps.B == p.B {
			return ps, true
		}
	}
	return PairStat{}, false
}
