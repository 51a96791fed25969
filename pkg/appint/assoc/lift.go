package assoc

import "math"

// Calculator computes association measures from app counts.
type Calculator struct{}

// NewCalculator creates a new association calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Lift compares observed co-occurrence with what independence predicts.
//
// lift(a,b) = P(a,b) / (P(a) * P(b)) = N_ab * N / (N_a * N_b)
//
// Where:
//   - N_ab = number of apps containing both a and b
//   - N_a, N_b = number of apps containing each integration
//   - N = total number of apps
//
// Lift is undefined (ok=false) when any count is zero; pairs that never
// co-occur carry no lift.
func (c *Calculator) Lift(nAB, nA, nB, N int64) (float64, bool) {
	if nAB <= 0 || nA <= 0 || nB <= 0 || N <= 0 {
		return 0, false
	}
	// integer products keep boundary values such as 2.0 exact
	return float64(nAB*N) / float64(nA*nB), true
}

// PMI is the natural log of lift.
// PMI(a,b) = log(N_ab * N / (N_a * N_b))
func (c *Calculator) PMI(nAB, nA, nB, N int64) (float64, bool) {
	lift, ok := c.Lift(nAB, nA, nB, N)
	if !ok {
		return 0, false
	}
	return math.Log(lift), true
}

// NPMI calculates normalized PMI (range: -1 to 1)
// NPMI(a,b) = PMI(a,b) / -log(P(a,b))
func (c *Calculator) NPMI(nAB, nA, nB, N int64) (float64, bool) {
	pmi, ok := c.PMI(nAB, nA, nB, N)
	if !ok {
		return 0, false
	}
	logPAB := math.Log(float64(nAB) / float64(N))
	if logPAB == 0 {
		return 1, true
	}
	return pmi / -logPAB, true
}

// StandaloneRatio is the share of an integration's apps in which it is the
// only integration. Undefined when the integration appears nowhere.
func (c *Calculator) StandaloneRatio(solo, nX int64) (float64, bool) {
	if nX <= 0 {
		return 0, false
	}
	return float64(solo) / float64(nX), true
}
