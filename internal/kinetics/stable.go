package kinetics

// DefaultStableThreshold is the slope-ratio cutoff used when no override
// is configured.
const DefaultStableThreshold = 0.1

// StablePoints identifies the leading run of points over which the
// linearized data still behaves linearly. It walks (t, y) pairs and stops
// once the running slope flattens below threshold times the initial slope
// or reverses direction. The first point is always included.
//
// y is typically ln(A/A0); t is time. Returned indices are ascending.
func StablePoints(t, y []float64, threshold float64) []int {
	if len(t) == 0 || len(y) == 0 || len(t) != len(y) {
		return nil
	}
	if threshold <= 0 {
		threshold = DefaultStableThreshold
	}

	stable := []int{0}
	var initialSlope float64
	initialSet := false
	previousSlope := 0.0

	for i := 1; i < len(y); i++ {
		last := stable[len(stable)-1]
		deltaY := y[i] - y[last]
		deltaT := t[i] - t[last]

		// Zero time gaps cannot carry slope information
		if deltaT == 0 {
			continue
		}

		currentSlope := deltaY / deltaT

		if !initialSet {
			initialSlope = currentSlope
			initialSet = true
		} else {
			if initialSlope != 0 {
				slopeRatio := abs(currentSlope / initialSlope)
				if slopeRatio < threshold || currentSlope*previousSlope < 0 {
					break
				}
			} else if abs(currentSlope) > threshold {
				break
			}
		}

		stable = append(stable, i)
		previousSlope = currentSlope
	}

	return stable
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
