package kinetics

import (
	"fmt"
	"math"

	"gokinet/domain/kinetics"
	"gokinet/internal/errors"

	"gonum.org/v1/gonum/stat"
)

// Fitter fits the two linearized kinetic models to a selected series
type Fitter struct{}

// NewFitter creates a new model fitter
func NewFitter() *Fitter {
	return &Fitter{}
}

// FitPFO fits ln(A/A0) = -k1*t by least squares through the origin.
// Goodness of fit is computed on the back-transformed ratio A/A0.
func (f *Fitter) FitPFO(selected *kinetics.Series) (kinetics.FitResult, error) {
	if err := checkFittable(selected); err != nil {
		return kinetics.FitResult{}, err
	}

	times := selected.Times()
	lnRatios := selected.LnRatios()

	_, slope := stat.LinearRegression(times, lnRatios, nil, true)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return kinetics.FitResult{}, errors.FitError("PFO regression produced a non-finite slope")
	}

	predictions := make([]kinetics.Prediction, selected.Len())
	observed := make([]float64, selected.Len())
	estimated := make([]float64, selected.Len())
	for i, p := range selected.Points {
		linearized := slope * p.Time
		predicted := math.Exp(linearized)
		predictions[i] = kinetics.Prediction{
			Time:       p.Time,
			Observed:   p.Ratio,
			Linearized: linearized,
			Predicted:  predicted,
			PctError:   pctError(p.Ratio, predicted),
		}
		observed[i] = p.Ratio
		estimated[i] = predicted
	}

	return kinetics.FitResult{
		Model:        kinetics.ModelPFO,
		RateConstant: slope, // negative; report the magnitude as k1
		R2:           rSquared(observed, estimated),
		MAPE:         meanAbsPctError(observed, estimated),
		Predictions:  predictions,
	}, nil
}

// FitPSO fits 1/A = 1/A0 + k2*t with the intercept pinned to the first
// selected concentration, leaving a single-parameter origin regression on
// the shifted response. Goodness of fit is computed on A itself.
func (f *Fitter) FitPSO(selected *kinetics.Series) (kinetics.FitResult, error) {
	if err := checkFittable(selected); err != nil {
		return kinetics.FitResult{}, err
	}

	// The anchor concentration is the first stable point's A, matching
	// how the intercept 1/A0 enters the linearized form.
	anchor := selected.Points[0].Conc
	if anchor <= 0 {
		return kinetics.FitResult{}, errors.FitError("PSO anchor concentration must be positive")
	}
	intercept := 1 / anchor

	times := selected.Times()
	shifted := make([]float64, selected.Len())
	for i, p := range selected.Points {
		shifted[i] = p.InvConc - intercept
	}

	_, slope := stat.LinearRegression(times, shifted, nil, true)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return kinetics.FitResult{}, errors.FitError("PSO regression produced a non-finite slope")
	}

	predictions := make([]kinetics.Prediction, selected.Len())
	observed := make([]float64, selected.Len())
	estimated := make([]float64, selected.Len())
	for i, p := range selected.Points {
		linearized := intercept + slope*p.Time
		predicted := math.Inf(1)
		if linearized != 0 {
			predicted = 1 / linearized
		}
		predictions[i] = kinetics.Prediction{
			Time:       p.Time,
			Observed:   p.Conc,
			Linearized: linearized,
			Predicted:  predicted,
			PctError:   pctError(p.Conc, predicted),
		}
		observed[i] = p.Conc
		estimated[i] = predicted
	}

	return kinetics.FitResult{
		Model:        kinetics.ModelPSO,
		RateConstant: slope,
		R2:           rSquared(observed, estimated),
		MAPE:         meanAbsPctError(observed, estimated),
		Predictions:  predictions,
	}, nil
}

// checkFittable guards the regression preconditions
func checkFittable(selected *kinetics.Series) error {
	if selected == nil {
		return errors.FitError("no points selected for fitting")
	}
	if selected.Len() < 2 {
		return errors.FitError(fmt.Sprintf(
			"need at least 2 stable points to fit, got %d", selected.Len()))
	}
	first := selected.Points[0].Time
	spread := false
	for _, p := range selected.Points[1:] {
		if p.Time != first {
			spread = true
			break
		}
	}
	if !spread {
		return errors.FitError("selected points have no time spread")
	}
	return nil
}
