package kinetics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// rSquared computes the coefficient of determination of estimates against
// observed values. Degenerate inputs (constant observations, non-finite
// estimates) yield 0 rather than NaN so the UI always has a number.
func rSquared(observed, estimated []float64) float64 {
	if len(observed) == 0 || len(observed) != len(estimated) {
		return 0
	}
	for _, e := range estimated {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return 0
		}
	}

	r2 := stat.RSquaredFrom(estimated, observed, nil)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		return 0
	}
	return r2
}

// meanAbsPctError computes MAPE in percent, skipping zero observations
func meanAbsPctError(observed, estimated []float64) float64 {
	if len(observed) == 0 || len(observed) != len(estimated) {
		return 0
	}

	sum := 0.0
	count := 0
	for i, obs := range observed {
		if obs == 0 {
			continue
		}
		sum += math.Abs((obs - estimated[i]) / obs)
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count) * 100
}

// pctError computes a single absolute percent error
func pctError(observed, predicted float64) float64 {
	if observed == 0 {
		return 0
	}
	e := math.Abs((observed - predicted) / observed * 100)
	if math.IsNaN(e) || math.IsInf(e, 0) {
		return 0
	}
	return e
}
