package report

import (
	"fmt"

	"gokinet/domain/kinetics"
)

// SummaryRow is one line of the model comparison table
type SummaryRow struct {
	Model      string  `json:"model"`
	Parameters string  `json:"parameters"`
	R2         float64 `json:"r2"`
	MAPE       float64 `json:"mape_pct"`
}

// DetailRow is one line of the point-by-point results table
type DetailRow struct {
	Time          float64 `json:"time_min"`
	ObservedRatio float64 `json:"observed_ratio"`
	PFOPredicted  float64 `json:"pfo_predicted"`
	PFOPctError   float64 `json:"pfo_pct_error"`
	ObservedConc  float64 `json:"observed_conc"`
	PSOPredicted  float64 `json:"pso_predicted"`
	PSOPctError   float64 `json:"pso_pct_error"`
}

// Summary builds the two-row model comparison table
func Summary(a *kinetics.Analysis) []SummaryRow {
	return []SummaryRow{
		{
			Model:      "PFO",
			Parameters: fmt.Sprintf("k1 = %.5f %s", a.PFO.RateMagnitude(), kinetics.ModelPFO.RateUnit()),
			R2:         a.PFO.R2,
			MAPE:       a.PFO.MAPE,
		},
		{
			Model:      "PSO",
			Parameters: fmt.Sprintf("k2 = %.5f %s", a.PSO.RateConstant, kinetics.ModelPSO.RateUnit()),
			R2:         a.PSO.R2,
			MAPE:       a.PSO.MAPE,
		},
	}
}

// Details builds the per-point table over the selected range. Both fits
// cover the same selected points, so the rows zip cleanly.
func Details(a *kinetics.Analysis) []DetailRow {
	n := len(a.PFO.Predictions)
	if len(a.PSO.Predictions) < n {
		n = len(a.PSO.Predictions)
	}

	rows := make([]DetailRow, n)
	for i := 0; i < n; i++ {
		pfo := a.PFO.Predictions[i]
		pso := a.PSO.Predictions[i]
		rows[i] = DetailRow{
			Time:          pfo.Time,
			ObservedRatio: pfo.Observed,
			PFOPredicted:  pfo.Predicted,
			PFOPctError:   pfo.PctError,
			ObservedConc:  pso.Observed,
			PSOPredicted:  pso.Predicted,
			PSOPctError:   pso.PctError,
		}
	}
	return rows
}
