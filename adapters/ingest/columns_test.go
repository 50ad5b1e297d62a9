package ingest

import (
	"math"
	"strings"
	"testing"
)

// TestResolveColumns_RussianHeaders verifies the original lab sheet
// headers resolve to the canonical roles
func TestResolveColumns_RussianHeaders(t *testing.T) {
	headers := []string{"т, мин", "А", "А0", "А/А0"}

	columns, err := ResolveColumns(headers)
	if err != nil {
		t.Fatalf("ResolveColumns failed: %v", err)
	}

	if columns[ColTime] != "т, мин" {
		t.Errorf("Expected time column %q, got %q", "т, мин", columns[ColTime])
	}
	if columns[ColConc] != "А" {
		t.Errorf("Expected conc column %q, got %q", "А", columns[ColConc])
	}
	if columns[ColConc0] != "А0" {
		t.Errorf("Expected conc0 column %q, got %q", "А0", columns[ColConc0])
	}
	if !columns.Has(ColRatio) {
		t.Error("Expected ratio column to resolve")
	}
}

// TestResolveColumns_EnglishHeaders verifies the English spellings
func TestResolveColumns_EnglishHeaders(t *testing.T) {
	columns, err := ResolveColumns([]string{"time_min", "conc", "conc0"})
	if err != nil {
		t.Fatalf("ResolveColumns failed: %v", err)
	}
	if columns.Has(ColRatio) {
		t.Error("Ratio column should be absent")
	}
}

// TestResolveColumns_Missing verifies missing required columns are
// reported by role name
func TestResolveColumns_Missing(t *testing.T) {
	_, err := ResolveColumns([]string{"time", "unrelated"})
	if err == nil {
		t.Fatal("Expected error for missing columns")
	}
	msg := err.Error()
	if !strings.Contains(msg, "conc") || !strings.Contains(msg, "conc0") {
		t.Errorf("Expected missing roles named in error, got %q", msg)
	}
}

// TestParseNumber covers plain, European and malformed numbers
func TestParseNumber(t *testing.T) {
	cases := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"1.5", 1.5, false},
		{"100", 100, false},
		{"1,5", 1.5, false},
		{" 2,50 ", 2.5, false},
		{"1.234,5", 1234.5, false},
		{"-0,25", -0.25, false},
		{"", 0, true},
		{"abc", 0, true},
		{"1,2,3", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseNumber(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseNumber(%q): expected error, got %v", tc.raw, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseNumber(%q) failed: %v", tc.raw, err)
			continue
		}
		if math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("ParseNumber(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}
