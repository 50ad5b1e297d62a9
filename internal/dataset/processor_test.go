package dataset

import (
	"math"
	"strings"
	"testing"

	"gokinet/adapters/ingest"
	"gokinet/internal/errors"
)

func rawTable(headers []string, cells [][]string) *ingest.RawTable {
	table := &ingest.RawTable{Headers: headers}
	for _, row := range cells {
		raw := make(ingest.RawRow)
		for i, cell := range row {
			raw[headers[i]] = cell
		}
		table.Rows = append(table.Rows, raw)
	}
	return table
}

// TestProcess_DerivedColumns verifies ratio, log and inverse columns are
// computed from the essentials
func TestProcess_DerivedColumns(t *testing.T) {
	table := rawTable(
		[]string{"time", "conc", "conc0"},
		[][]string{
			{"0", "100", "100"},
			{"5", "50", "100"},
		},
	)

	series, err := NewProcessor().Process(table, "test.xlsx")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if series.Len() != 2 {
		t.Fatalf("Expected 2 points, got %d", series.Len())
	}
	if series.SourceName != "test.xlsx" {
		t.Errorf("Expected source name preserved, got %q", series.SourceName)
	}

	p := series.Points[1]
	if math.Abs(p.Ratio-0.5) > 1e-12 {
		t.Errorf("Expected ratio 0.5, got %v", p.Ratio)
	}
	if math.Abs(p.LnRatio-math.Log(0.5)) > 1e-12 {
		t.Errorf("Expected ln ratio %v, got %v", math.Log(0.5), p.LnRatio)
	}
	if math.Abs(p.InvConc-0.02) > 1e-12 {
		t.Errorf("Expected inverse conc 0.02, got %v", p.InvConc)
	}
}

// TestProcess_EuropeanDecimals verifies decimal commas parse through the
// whole pipeline
func TestProcess_EuropeanDecimals(t *testing.T) {
	table := rawTable(
		[]string{"т, мин", "А", "А0"},
		[][]string{
			{"0", "100,0", "100,0"},
			{"2,5", "77,9", "100,0"},
		},
	)

	series, err := NewProcessor().Process(table, "data.csv")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if math.Abs(series.Points[1].Time-2.5) > 1e-12 {
		t.Errorf("Expected time 2.5, got %v", series.Points[1].Time)
	}
	if math.Abs(series.Points[1].Conc-77.9) > 1e-12 {
		t.Errorf("Expected conc 77.9, got %v", series.Points[1].Conc)
	}
}

// TestProcess_DropsBadRows verifies rows with missing or non-positive
// essentials are dropped rather than failing the table
func TestProcess_DropsBadRows(t *testing.T) {
	table := rawTable(
		[]string{"time", "conc", "conc0"},
		[][]string{
			{"0", "100", "100"},
			{"5", "", "100"},     // missing conc
			{"10", "-3", "100"},  // non-positive conc
			{"15", "50", "0"},    // non-positive conc0
			{"-2", "40", "100"},  // negative time
			{"20", "abc", "100"}, // unparseable
			{"25", "30", "100"},
		},
	)

	series, err := NewProcessor().Process(table, "test")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if series.Len() != 2 {
		t.Errorf("Expected 2 surviving points, got %d", series.Len())
	}
}

// TestProcess_RatioCrossCheck verifies a provided ratio only wins when it
// agrees with the recomputed value
func TestProcess_RatioCrossCheck(t *testing.T) {
	table := rawTable(
		[]string{"time", "conc", "conc0", "ratio"},
		[][]string{
			{"0", "100", "100", "1.0"},
			{"5", "50", "100", "0.5001"}, // within tolerance: provided wins
			{"10", "25", "100", "0.9"},   // disagrees: recomputed wins
		},
	)

	series, err := NewProcessor().Process(table, "test")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if series.Points[1].Ratio != 0.5001 {
		t.Errorf("Expected provided ratio 0.5001, got %v", series.Points[1].Ratio)
	}
	if series.Points[2].Ratio != 0.25 {
		t.Errorf("Expected recomputed ratio 0.25, got %v", series.Points[2].Ratio)
	}
}

// TestProcess_TimeColumnChecks verifies duplicate and decreasing time
// values reject the table
func TestProcess_TimeColumnChecks(t *testing.T) {
	duplicate := rawTable(
		[]string{"time", "conc", "conc0"},
		[][]string{
			{"0", "100", "100"},
			{"5", "80", "100"},
			{"5", "70", "100"},
		},
	)
	_, err := NewProcessor().Process(duplicate, "test")
	if err == nil {
		t.Fatal("Expected error for duplicated time")
	}
	if errors.GetCode(err) != errors.CodeValidationError {
		t.Errorf("Expected VALIDATION_ERROR, got %s", errors.GetCode(err))
	}
	if !strings.Contains(err.Error(), "unique") {
		t.Errorf("Expected duplicate-time message, got %q", err.Error())
	}

	decreasing := rawTable(
		[]string{"time", "conc", "conc0"},
		[][]string{
			{"10", "80", "100"},
			{"5", "90", "100"},
		},
	)
	if _, err := NewProcessor().Process(decreasing, "test"); err == nil {
		t.Error("Expected error for decreasing time")
	}
}

// TestProcess_EmptyAndMissing verifies the table-level validation
func TestProcess_EmptyAndMissing(t *testing.T) {
	if _, err := NewProcessor().Process(nil, "test"); err == nil {
		t.Error("Expected error for nil table")
	}

	missing := rawTable([]string{"time", "other"}, [][]string{{"0", "1"}})
	if _, err := NewProcessor().Process(missing, "test"); err == nil {
		t.Error("Expected error for missing columns")
	}

	allBad := rawTable(
		[]string{"time", "conc", "conc0"},
		[][]string{{"0", "-1", "100"}},
	)
	if _, err := NewProcessor().Process(allBad, "test"); err == nil {
		t.Error("Expected error when every row is dropped")
	}
}

// TestSummarize verifies the at-a-glance statistics
func TestSummarize(t *testing.T) {
	table := rawTable(
		[]string{"time", "conc", "conc0"},
		[][]string{
			{"0", "100", "100"},
			{"5", "50", "100"},
			{"10", "25", "100"},
		},
	)
	series, err := NewProcessor().Process(table, "test")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	summary, err := Summarize(series)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if summary.PointCount != 3 {
		t.Errorf("Expected 3 points, got %d", summary.PointCount)
	}
	if summary.TimeMin != 0 || summary.TimeMax != 10 {
		t.Errorf("Expected time range [0, 10], got [%v, %v]", summary.TimeMin, summary.TimeMax)
	}
	if summary.ConcMin != 25 || summary.ConcMax != 100 {
		t.Errorf("Expected conc range [25, 100], got [%v, %v]", summary.ConcMin, summary.ConcMax)
	}
	if summary.InitialConc != 100 {
		t.Errorf("Expected initial conc 100, got %v", summary.InitialConc)
	}
	if summary.RatioMin != 0.25 || summary.RatioMax != 1 {
		t.Errorf("Expected ratio range [0.25, 1], got [%v, %v]", summary.RatioMin, summary.RatioMax)
	}

	if _, err := Summarize(nil); err == nil {
		t.Error("Expected error for nil series")
	}
}
