package export

import (
	"bytes"

	"gokinet/domain/kinetics"
	"gokinet/internal/errors"
	"gokinet/internal/report"

	"github.com/xuri/excelize/v2"
)

// Exporter writes analysis results as a multi-sheet xlsx workbook
type Exporter struct{}

// NewExporter creates a new workbook exporter
func NewExporter() *Exporter {
	return &Exporter{}
}

// Workbook serializes the analysis into a workbook with the sheets the
// original download offered: Summary, Detailed_Results, Selected_Data,
// PFO_Predictions, PSO_Predictions.
func (e *Exporter) Workbook(analysis *kinetics.Analysis) ([]byte, error) {
	if analysis == nil {
		return nil, errors.InvalidInput("no analysis to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := e.writeSummarySheet(f, analysis); err != nil {
		return nil, errors.Wrap(err, "failed to write Summary sheet")
	}
	if err := e.writeDetailSheet(f, analysis); err != nil {
		return nil, errors.Wrap(err, "failed to write Detailed_Results sheet")
	}
	if err := e.writeSelectedSheet(f, analysis); err != nil {
		return nil, errors.Wrap(err, "failed to write Selected_Data sheet")
	}
	if err := e.writePredictionSheet(f, "PFO_Predictions", analysis.PFO); err != nil {
		return nil, errors.Wrap(err, "failed to write PFO_Predictions sheet")
	}
	if err := e.writePredictionSheet(f, "PSO_Predictions", analysis.PSO); err != nil {
		return nil, errors.Wrap(err, "failed to write PSO_Predictions sheet")
	}

	// Drop the default sheet so Summary opens first
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, errors.Wrap(err, "failed to remove default sheet")
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, errors.Wrap(err, "failed to serialize workbook")
	}
	return buf.Bytes(), nil
}

func (e *Exporter) writeSummarySheet(f *excelize.File, analysis *kinetics.Analysis) error {
	sheet := "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []interface{}{"Model", "Parameters", "R2", "MAPE (%)"}
	if err := writeRow(f, sheet, 1, headers); err != nil {
		return err
	}

	for i, row := range report.Summary(analysis) {
		values := []interface{}{row.Model, row.Parameters, row.R2, row.MAPE}
		if err := writeRow(f, sheet, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) writeDetailSheet(f *excelize.File, analysis *kinetics.Analysis) error {
	sheet := "Detailed_Results"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []interface{}{
		"Time (min)", "A/A0 observed", "PFO predicted", "PFO error (%)",
		"A observed", "PSO predicted", "PSO error (%)",
	}
	if err := writeRow(f, sheet, 1, headers); err != nil {
		return err
	}

	for i, row := range report.Details(analysis) {
		values := []interface{}{
			row.Time, row.ObservedRatio, row.PFOPredicted, row.PFOPctError,
			row.ObservedConc, row.PSOPredicted, row.PSOPctError,
		}
		if err := writeRow(f, sheet, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) writeSelectedSheet(f *excelize.File, analysis *kinetics.Analysis) error {
	sheet := "Selected_Data"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []interface{}{"Time (min)", "A", "A0", "A/A0", "ln(A/A0)", "1/A"}
	if err := writeRow(f, sheet, 1, headers); err != nil {
		return err
	}

	for i, p := range analysis.Selected().Points {
		values := []interface{}{p.Time, p.Conc, p.InitialConc, p.Ratio, p.LnRatio, p.InvConc}
		if err := writeRow(f, sheet, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) writePredictionSheet(f *excelize.File, sheet string, fit kinetics.FitResult) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []interface{}{"Time (min)", "Observed", "Linearized", "Predicted", "Error (%)"}
	if err := writeRow(f, sheet, 1, headers); err != nil {
		return err
	}

	for i, p := range fit.Predictions {
		values := []interface{}{p.Time, p.Observed, p.Linearized, p.Predicted, p.PctError}
		if err := writeRow(f, sheet, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

// writeRow writes one row of values starting at column A
func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}
