package dataset

import (
	"gokinet/domain/kinetics"
	"gokinet/internal/errors"

	"github.com/montanaflynn/stats"
)

// Summarize computes the at-a-glance statistics shown above the results
func Summarize(series *kinetics.Series) (kinetics.Summary, error) {
	if series == nil || series.Len() == 0 {
		return kinetics.Summary{}, errors.ValidationError("cannot summarize an empty series")
	}

	times := series.Times()
	concs := make([]float64, series.Len())
	ratios := make([]float64, series.Len())
	for i, p := range series.Points {
		concs[i] = p.Conc
		ratios[i] = p.Ratio
	}

	timeMin, err := stats.Min(times)
	if err != nil {
		return kinetics.Summary{}, errors.Wrap(err, "failed to compute time range")
	}
	timeMax, err := stats.Max(times)
	if err != nil {
		return kinetics.Summary{}, errors.Wrap(err, "failed to compute time range")
	}
	concMin, err := stats.Min(concs)
	if err != nil {
		return kinetics.Summary{}, errors.Wrap(err, "failed to compute concentration range")
	}
	concMax, err := stats.Max(concs)
	if err != nil {
		return kinetics.Summary{}, errors.Wrap(err, "failed to compute concentration range")
	}
	ratioMin, err := stats.Min(ratios)
	if err != nil {
		return kinetics.Summary{}, errors.Wrap(err, "failed to compute ratio range")
	}
	ratioMax, err := stats.Max(ratios)
	if err != nil {
		return kinetics.Summary{}, errors.Wrap(err, "failed to compute ratio range")
	}

	return kinetics.Summary{
		PointCount:  series.Len(),
		TimeMin:     timeMin,
		TimeMax:     timeMax,
		ConcMin:     concMin,
		ConcMax:     concMax,
		InitialConc: series.Points[0].InitialConc,
		RatioMin:    ratioMin,
		RatioMax:    ratioMax,
	}, nil
}
