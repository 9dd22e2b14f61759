package backtest

import "math"

// grossExposure is the sum of absolute target weights across symbols for one
// bar. Weights may be negative once shorts land, so abs matters here.
func grossExposure(weights []float64) float64 {
	var sum float64
	for _, w := range weights {
		sum += math.Abs(w)
	}
	return sum
}

// clipGrossExposure enforces the shared-cash leverage constraint: if the
// gross exposure requested across all symbols exceeds cap, every weight is
// scaled by cap/Σ|w|. Proportional clipping, not an error — the portfolio
// keeps its requested shape, just smaller. Weights within the cap pass
// through unchanged, so single-asset behavior under the cap is unaffected.
func clipGrossExposure(weights []float64, cap float64) []float64 {
	gross := grossExposure(weights)
	if gross <= cap {
		return weights
	}
	scale := cap / gross
	out := make([]float64, len(weights))
	for i, w := range weights {
		out[i] = w * scale
	}
	return out
}
