package cluster

import (
	"math"
	"sort"
	"strings"
)

type term struct {
	gram   string
	weight float64
}

// vector is a sparse, L2-normalized feature vector sorted by gram.
type vector []term

// vectorize builds TF-IDF character n-gram vectors for docs.
//
// idf(g) = ln((1 + n) / (1 + df(g))) + 1
//
// Where n is the number of docs and df(g) the number of docs containing
// n-gram g. Term weights are raw counts times idf, then L2-normalized.
func vectorize(docs []string, minGram, maxGram int) []vector {
	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	for i, d := range docs {
		counts[i] = ngrams(prepare(d), minGram, maxGram)
		for g := range counts[i] {
			df[g]++
		}
	}

	n := float64(len(docs))
	out := make([]vector, len(docs))
	for i, c := range counts {
		v := make(vector, 0, len(c))
		for g, tf := range c {
			w := float64(tf) * (math.Log((1+n)/(1+float64(df[g]))) + 1)
			v = append(v, term{gram: g, weight: w})
		}
		sort.Slice(v, func(a, b int) bool { return v[a].gram < v[b].gram })

		var norm float64
		for _, t := range v {
			norm += t.weight * t.weight
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range v {
				v[j].weight /= norm
			}
		}
		out[i] = v
	}
	return out
}

// prepare lowercases and collapses whitespace.
func prepare(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ngrams counts the character n-grams of s for every n in [minGram, maxGram].
func ngrams(s string, minGram, maxGram int) map[string]int {
	runes := []rune(s)
	out := make(map[string]int)
	for n := minGram; n <= maxGram; n++ {
		for i := 0; i+n <= len(runes); i++ {
			out[string(runes[i:i+n])]++
		}
	}
	return out
}

// cosine of two normalized vectors.
func cosine(a, b vector) float64 {
	var dot float64
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i].gram < b[j].gram:
			i++
		case a[i].gram > b[j].gram:
			j++
		default:
			dot += a[i].weight * b[j].weight
			i++
			j++
		}
	}
	return dot
}
