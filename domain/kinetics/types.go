package kinetics

import (
	"math"
	"time"

	"gokinet/domain/core"
)

// ModelKind identifies one of the two supported kinetic models
type ModelKind string

const (
	ModelPFO ModelKind = "pfo" // Pseudo-first-order: ln(A/A0) = -k1*t
	ModelPSO ModelKind = "pso" // Pseudo-second-order: 1/A = 1/A0 + k2*t
)

// RateUnit returns the unit string for the model's rate constant
func (m ModelKind) RateUnit() string {
	if m == ModelPSO {
		return "L/(mg·min)"
	}
	return "1/min"
}

// Point is a single kinetic observation
type Point struct {
	Time        float64 `json:"time_min"`     // Minutes since reaction start
	Conc        float64 `json:"conc"`         // Concentration A
	InitialConc float64 `json:"conc0"`        // Initial concentration A0
	Ratio       float64 `json:"ratio"`        // A/A0
	LnRatio     float64 `json:"ln_ratio"`     // ln(A/A0), PFO linearization
	InvConc     float64 `json:"inverse_conc"` // 1/A, PSO linearization
}

// Series is an ordered set of validated observations with derived columns.
// Construct through dataset.Process so the derivation invariants hold:
// positive Conc/InitialConc/Ratio, strictly increasing Time.
type Series struct {
	SourceName string  `json:"source_name"` // Uploaded filename or "manual"
	SheetName  string  `json:"sheet_name,omitempty"`
	Points     []Point `json:"points"`
}

// Len returns the number of observations
func (s *Series) Len() int { return len(s.Points) }

// Times returns the time column
func (s *Series) Times() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Time
	}
	return out
}

// LnRatios returns the ln(A/A0) column
func (s *Series) LnRatios() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.LnRatio
	}
	return out
}

// InvConcs returns the 1/A column
func (s *Series) InvConcs() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.InvConc
	}
	return out
}

// Slice returns a new Series restricted to the given point indices
func (s *Series) Slice(indices []int) *Series {
	points := make([]Point, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(s.Points) {
			points = append(points, s.Points[idx])
		}
	}
	return &Series{SourceName: s.SourceName, SheetName: s.SheetName, Points: points}
}

// Prediction holds the model output for a single selected point
type Prediction struct {
	Time       float64 `json:"time_min"`
	Observed   float64 `json:"observed"`   // A/A0 for PFO, A for PSO
	Linearized float64 `json:"linearized"` // Model value in transformed space
	Predicted  float64 `json:"predicted"`  // Back-transformed model value
	PctError   float64 `json:"pct_error"`  // |observed-predicted|/|observed| * 100
}

// FitResult holds the fitted parameters and goodness-of-fit for one model
type FitResult struct {
	Model        ModelKind    `json:"model"`
	RateConstant float64      `json:"rate_constant"` // k1 or k2
	R2           float64      `json:"r2"`
	MAPE         float64      `json:"mape_pct"`
	Predictions  []Prediction `json:"predictions"`
}

// RateMagnitude returns the rate constant as reported to users.
// PFO regression yields a negative slope; the reported k1 is its magnitude.
func (f FitResult) RateMagnitude() float64 {
	return math.Abs(f.RateConstant)
}

// Summary describes the processed dataset at a glance
type Summary struct {
	PointCount  int     `json:"point_count"`
	TimeMin     float64 `json:"time_min"`
	TimeMax     float64 `json:"time_max"`
	ConcMin     float64 `json:"conc_min"`
	ConcMax     float64 `json:"conc_max"`
	InitialConc float64 `json:"initial_conc"`
	RatioMin    float64 `json:"ratio_min"`
	RatioMax    float64 `json:"ratio_max"`
}

// Analysis is one complete analysis run: the processed series, the stable
// prefix the models were fitted on, and both fit results.
type Analysis struct {
	ID              core.AnalysisID `json:"id"`
	SourceName      string          `json:"source_name"`
	Series          *Series         `json:"series"`
	SelectedIndices []int           `json:"selected_indices"`
	Summary         Summary         `json:"summary"`
	PFO             FitResult       `json:"pfo"`
	PSO             FitResult       `json:"pso"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Selected returns the stable subset the fits were computed over
func (a *Analysis) Selected() *Series {
	return a.Series.Slice(a.SelectedIndices)
}

// SelectedTimeRange returns the first and last selected time values
func (a *Analysis) SelectedTimeRange() (float64, float64) {
	sel := a.Selected()
	if sel.Len() == 0 {
		return 0, 0
	}
	return sel.Points[0].Time, sel.Points[sel.Len()-1].Time
}

// BetterModel returns the model with the higher R²
func (a *Analysis) BetterModel() ModelKind {
	if a.PSO.R2 > a.PFO.R2 {
		return ModelPSO
	}
	return ModelPFO
}
