// Package segment groups apps by the integrations they share.
//
// Every app becomes a binary vector over the integration vocabulary. The
// vectors are grouped with k-means for each k up to MaxK, and the number of
// segments is read off the elbow of the inertia curve. Runs are seeded, so
// the same table always yields the same segments.
package segment

import (
	"math/rand"
	"sort"
	"strings"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/relation"
)

// Defaults for Segmenter fields left at zero.
const (
	DefaultMaxK       = 10
	DefaultTop        = 3
	DefaultIterations = 100
	DefaultSeed       = 42
)

// k is kept once the step to k+1 gains less than this share of the step to k
const elbowRatio = 0.3

const epsilon = 1e-9

// Segmenter configures app segmentation. The zero value uses the defaults.
type Segmenter struct {
	MaxK       int    // largest k tried; never more than the distinct vectors
	Top        int    // integrations named per segment
	Iterations int    // Lloyd iterations per run
	Seed       int64  // centroid seeding
}

// Segment is a group of apps with similar integration sets.
type Segment struct {
	Apps []string // sorted
	Top  []string // most common integrations first, ties alphabetical
}

// Result is a segmentation.
type Result struct {
	K        int
	Inertias []float64 // within-segment sum of squares; Inertias[i] is for k = i+1
	Segments []Segment // largest first
}

func (s Segmenter) withDefaults() Segmenter {
	if s.MaxK <= 0 {
		s.MaxK = DefaultMaxK
	}
	if s.Top <= 0 {
		s.Top = DefaultTop
	}
	if s.Iterations <= 0 {
		s.Iterations = DefaultIterations
	}
	if s.Seed == 0 {
		s.Seed = DefaultSeed
	}
	return s
}

// Segment groups the apps of rows. Apps without integrations are left out,
// and input order does not matter.
func (s Segmenter) Segment(rows []relation.Row) Result {
	s = s.withDefaults()
	p := newPoints(rows)
	if len(p.apps) == 0 {
		return Result{}
	}

	maxK := min(s.MaxK, p.distinct())
	runs := make([][]int, 0, maxK)
	inertias := make([]float64, 0, maxK)
	for k := 1; k <= maxK; k++ {
		assign, inertia := s.kmeans(p, k)
		runs = append(runs, assign)
		inertias = append(inertias, inertia)
	}

	k := elbow(inertias)
	return Result{K: k, Inertias: inertias, Segments: profile(p, runs[k-1], k, s.Top)}
}

// elbow picks k from inertias. It returns the first k that fits perfectly,
// or whose next step gains less than elbowRatio of what reaching k gained.
// Without such a bend it settles on 2.
func elbow(inertias []float64) int {
	if len(inertias) <= 2 {
		return len(inertias)
	}
	for k := 2; k < len(inertias); k++ {
		if inertias[k-1] <= epsilon {
			return k
		}
		gained := inertias[k-2] - inertias[k-1]
		next := inertias[k-1] - inertias[k]
		if gained > 0 && next < elbowRatio*gained {
			return k
		}
	}
	return 2
}

// points are apps as sparse binary vectors: the sorted indices of their
// labels in the vocabulary.
type points struct {
	apps   []string
	labels []string
	vecs   [][]int
}

func newPoints(rows []relation.Row) points {
	sorted := make([]relation.Row, 0, len(rows))
	vocab := make(map[string]int)
	for _, r := range rows {
		if len(r.Integrations) == 0 {
			continue
		}
		sorted = append(sorted, r)
		for _, l := range r.Integrations {
			vocab[l] = 0
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].AppID < sorted[j].AppID })

	var p points
	p.labels = make([]string, 0, len(vocab))
	for l := range vocab {
		p.labels = append(p.labels, l)
	}
	sort.Strings(p.labels)
	for i, l := range p.labels {
		vocab[l] = i
	}

	for _, r := range sorted {
		seen := make(map[int]bool, len(r.Integrations))
		v := make([]int, 0, len(r.Integrations))
		for _, l := range r.Integrations {
			if i := vocab[l]; !seen[i] {
				seen[i] = true
				v = append(v, i)
			}
		}
		sort.Ints(v)
		p.apps = append(p.apps, r.AppID)
		p.vecs = append(p.vecs, v)
	}
	return p
}

func (p points) distinct() int {
	seen := make(map[string]struct{}, len(p.vecs))
	var sb strings.Builder
	for _, v := range p.vecs {
		sb.Reset()
		for _, i := range v {
			sb.WriteString(p.labels[i])
			sb.WriteByte(0)
		}
		seen[sb.String()] = struct{}{}
	}
	return len(seen)
}

// sqDist is the squared distance between binary vector v and centroid c,
// given norm = |c|².
func sqDist(v []int, c []float64, norm float64) float64 {
	d := norm
	for _, i := range v {
		d += 1 - 2*c[i]
	}
	return max(d, 0)
}

func sqNorm(c []float64) float64 {
	var n float64
	for _, x := range c {
		n += x * x
	}
	return n
}

func (p points) dense(v []int) []float64 {
	c := make([]float64, len(p.labels))
	for _, i := range v {
		c[i] = 1
	}
	return c
}

// kmeans runs Lloyd's algorithm from k-means++ seeds and returns the
// segment of every point and the inertia.
func (s Segmenter) kmeans(p points, k int) ([]int, float64) {
	rng := rand.New(rand.NewSource(s.Seed + int64(k)))
	centroids := p.seed(k, rng)

	assign := make([]int, len(p.vecs))
	for i := range assign {
		assign[i] = -1
	}
	for iter := 0; iter < s.Iterations; iter++ {
		norms := make([]float64, len(centroids))
		for c := range centroids {
			norms[c] = sqNorm(centroids[c])
		}
		changed := false
		for i, v := range p.vecs {
			best, bestDist := 0, sqDist(v, centroids[0], norms[0])
			for c := 1; c < len(centroids); c++ {
				if d := sqDist(v, centroids[c], norms[c]); d < bestDist-epsilon {
					best, bestDist = c, d
				}
			}
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}
		centroids = p.recenter(assign, centroids)
	}

	var inertia float64
	for i, v := range p.vecs {
		c := centroids[assign[i]]
		inertia += sqDist(v, c, sqNorm(c))
	}
	return assign, inertia
}

// seed picks k starting centroids by D² sampling. It stops early when every
// point already sits on a centroid.
func (p points) seed(k int, rng *rand.Rand) [][]float64 {
	centroids := [][]float64{p.dense(p.vecs[rng.Intn(len(p.vecs))])}
	dist := make([]float64, len(p.vecs))
	for len(centroids) < k {
		last := centroids[len(centroids)-1]
		norm := sqNorm(last)
		var total float64
		pick := -1
		for i, v := range p.vecs {
			if d := sqDist(v, last, norm); len(centroids) == 1 || d < dist[i] {
				dist[i] = d
			}
			total += dist[i]
			if dist[i] > epsilon {
				pick = i
			}
		}
		if pick < 0 {
			break
		}
		r := rng.Float64() * total
		for i, d := range dist {
			if d <= epsilon {
				continue
			}
			if r -= d; r < 0 {
				pick = i
				break
			}
		}
		centroids = append(centroids, p.dense(p.vecs[pick]))
	}
	return centroids
}

// recenter moves every centroid to the mean of its points. A centroid that
// lost all its points stays where it was.
func (p points) recenter(assign []int, prev [][]float64) [][]float64 {
	sums := make([][]float64, len(prev))
	counts := make([]int, len(prev))
	for c := range sums {
		sums[c] = make([]float64, len(p.labels))
	}
	for i, v := range p.vecs {
		c := assign[i]
		counts[c]++
		for _, l := range v {
			sums[c][l]++
		}
	}
	for c := range sums {
		if counts[c] == 0 {
			sums[c] = prev[c]
			continue
		}
		for l := range sums[c] {
			sums[c][l] /= float64(counts[c])
		}
	}
	return sums
}

func profile(p points, assign []int, k, top int) []Segment {
	groups := make([][]int, k)
	for i, c := range assign {
		groups[c] = append(groups[c], i)
	}

	out := make([]Segment, 0, k)
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		counts := make(map[int]int)
		apps := make([]string, 0, len(g))
		for _, i := range g {
			apps = append(apps, p.apps[i])
			for _, l := range p.vecs[i] {
				counts[l]++
			}
		}
		ranked := make([]int, 0, len(counts))
		for l := range counts {
			ranked = append(ranked, l)
		}
		sort.Slice(ranked, func(a, b int) bool {
			if counts[ranked[a]] != counts[ranked[b]] {
				return counts[ranked[a]] > counts[ranked[b]]
			}
			return ranked[a] < ranked[b]
		})
		names := make([]string, 0, min(top, len(ranked)))
		for _, l := range ranked[:min(top, len(ranked))] {
			names = append(names, p.labels[l])
		}
		out = append(out, Segment{Apps: apps, Top: names})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].Apps) != len(out[j].Apps) {
			return len(out[i].Apps) > len(out[j].Apps)
		}
		return out[i].Apps[0] < out[j].Apps[0]
	})
	return out
}
