package testkit

import (
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// sheetVariant describes one condition sheet in the sample workbook
type sheetVariant struct {
	name   string
	rateK1 float64
}

// WriteSampleWorkbook writes a multi-sheet xlsx with PFO decay data at
// three reaction conditions plus an intentionally empty sheet, mirroring
// the reference sample file used for manual testing.
func WriteSampleWorkbook(path string) error {
	variants := []sheetVariant{
		{name: "pH 10", rateK1: 0.08},
		{name: "pH 8", rateK1: 0.05},
		{name: "pH 3", rateK1: 0.02},
	}

	f := excelize.NewFile()
	defer f.Close()

	for _, variant := range variants {
		config := DefaultGeneratorConfig()
		config.RateK1 = variant.rateK1
		gen := NewGenerator(config)

		if _, err := f.NewSheet(variant.name); err != nil {
			return err
		}
		if err := writeVariant(f, variant.name, gen, config); err != nil {
			return err
		}
	}

	// Empty sheet kept for exercising the empty-sheet error path
	if _, err := f.NewSheet("Empty"); err != nil {
		return err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	return f.SaveAs(path)
}

func writeVariant(f *excelize.File, sheet string, gen *Generator, config GeneratorConfig) error {
	headers := []string{"т, мин", "А", "А0", "А/А0"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	series := gen.Series(sheet)
	for r, p := range series.Points {
		values := []interface{}{p.Time, round(p.Conc, 2), config.InitialConc, round(p.Ratio, 4)}
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}

func formatCell(v float64, decimals int) string {
	return strconv.FormatFloat(round(v, decimals), 'f', -1, 64)
}
