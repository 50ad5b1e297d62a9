package ingest

import (
	"testing"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// TestDetectDelimiter verifies the per-line consistency sniffing,
// including files where decimal commas outnumber the real delimiter
func TestDetectDelimiter(t *testing.T) {
	cases := []struct {
		content string
		want    rune
	}{
		{"time,conc,conc0\n0,100,100\n", ','},
		{"time;conc;conc0\n0;100;100\n", ';'},
		{"time\tconc\tconc0\n0\t100\t100\n", '\t'},
		{"time conc", ','}, // no delimiter at all falls back to comma
		// semicolon-delimited with decimal commas: comma counts differ
		// between header and data lines, semicolon counts do not
		{"time;conc;conc0\n0,0;100,5;100,0\n5,0;77,9;100,0\n", ';'},
		{"т, мин;А;А0\n0;100,0;100,0\n5;77,9;100,0\n", ';'},
		// tab-delimited with decimal commas
		{"time\tconc\n0\t100,5\n5\t77,9\n", '\t'},
	}

	for _, tc := range cases {
		if got := detectDelimiter(tc.content); got != tc.want {
			t.Errorf("detectDelimiter(%q) = %q, want %q", tc.content, got, tc.want)
		}
	}
}

// TestNewBufferReader_Validation verifies file type and emptiness checks
func TestNewBufferReader_Validation(t *testing.T) {
	if _, err := NewBufferReader("data.csv", nil); err == nil {
		t.Error("Expected error for empty content")
	}
	if _, err := NewBufferReader("data.pdf", []byte("x")); err == nil {
		t.Error("Expected error for unsupported extension")
	}
	if _, err := NewBufferReader("data.xlsx", []byte("x")); err != nil {
		t.Errorf("Unexpected error for supported extension: %v", err)
	}
}

// TestReadTable_SemicolonCSV verifies delimiter sniffing and decimal
// commas survive a full CSV read
func TestReadTable_SemicolonCSV(t *testing.T) {
	content := "т, мин;А;А0\n0;100,0;100,0\n5;77,9;100,0\n"

	reader, err := NewBufferReader("data.csv", []byte(content))
	if err != nil {
		t.Fatalf("NewBufferReader failed: %v", err)
	}

	table, err := reader.ReadTable("")
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}

	if len(table.Headers) != 3 {
		t.Fatalf("Expected 3 headers, got %d: %v", len(table.Headers), table.Headers)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[1]["А"] != "77,9" {
		t.Errorf("Expected raw cell %q, got %q", "77,9", table.Rows[1]["А"])
	}
}

// TestReadTable_EuropeanCSV verifies a semicolon-delimited file with
// ASCII headers and decimal-comma values parses into resolvable columns
func TestReadTable_EuropeanCSV(t *testing.T) {
	content := "time;conc;conc0\n0,0;100,5;100,0\n5,0;77,9;100,0\n10,0;60,6;100,0\n"

	reader, err := NewBufferReader("run.csv", []byte(content))
	if err != nil {
		t.Fatalf("NewBufferReader failed: %v", err)
	}

	table, err := reader.ReadTable("")
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}

	if len(table.Headers) != 3 {
		t.Fatalf("Expected 3 headers, got %d: %v", len(table.Headers), table.Headers)
	}
	columns, err := ResolveColumns(table.Headers)
	if err != nil {
		t.Fatalf("ResolveColumns failed: %v", err)
	}
	for _, role := range []string{"time", "conc", "conc0"} {
		if !columns.Has(role) {
			t.Errorf("Expected column role %q to resolve", role)
		}
	}

	if len(table.Rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(table.Rows))
	}
	v, err := ParseNumber(table.Rows[1]["conc"])
	if err != nil {
		t.Fatalf("ParseNumber failed: %v", err)
	}
	if v != 77.9 {
		t.Errorf("Expected 77.9, got %v", v)
	}
}

// TestDecodeText verifies UTF-8 passthrough and the windows-1251
// fallback for non-UTF-8 content
func TestDecodeText(t *testing.T) {
	if got := decodeText([]byte("\xEF\xBB\xBFtime;conc\n")); got != "time;conc\n" {
		t.Errorf("Expected BOM stripped, got %q", got)
	}

	encoded, err := charmap.Windows1251.NewEncoder().Bytes([]byte("А;100,5"))
	if err != nil {
		t.Fatalf("Failed to encode test fixture: %v", err)
	}
	if got := decodeText(encoded); got != "А;100,5" {
		t.Errorf("Expected decoded %q, got %q", "А;100,5", got)
	}
}

// TestReadTable_Windows1251CSV verifies the legacy Cyrillic encoding
// fallback
func TestReadTable_Windows1251CSV(t *testing.T) {
	content := "т, мин;А;А0\n0;100;100\n5;78;100\n"
	encoded, err := charmap.Windows1251.NewEncoder().Bytes([]byte(content))
	if err != nil {
		t.Fatalf("Failed to encode test fixture: %v", err)
	}

	reader, err := NewBufferReader("legacy.csv", encoded)
	if err != nil {
		t.Fatalf("NewBufferReader failed: %v", err)
	}

	table, err := reader.ReadTable("")
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}

	if table.Headers[0] != "т, мин" {
		t.Errorf("Expected decoded header %q, got %q", "т, мин", table.Headers[0])
	}
	if table.Rows[1]["А"] != "78" {
		t.Errorf("Expected cell %q, got %q", "78", table.Rows[1]["А"])
	}
}

// TestReadTable_Excel verifies a worksheet round trip including blank
// row skipping and empty-sheet selection
func TestReadTable_Excel(t *testing.T) {
	f := excelize.NewFile()
	if _, err := f.NewSheet("Data"); err != nil {
		t.Fatalf("Failed to create sheet: %v", err)
	}
	rows := [][]interface{}{
		{"time", "conc", "conc0"},
		{0, 100.0, 100.0},
		{5, 77.9, 100.0},
		{"", "", ""},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Data", cell, &row); err != nil {
			t.Fatalf("Failed to write row: %v", err)
		}
	}
	// Sheet1 stays empty so the default selection must skip it
	data, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("Failed to serialize workbook: %v", err)
	}

	reader, err := NewBufferReader("data.xlsx", data.Bytes())
	if err != nil {
		t.Fatalf("NewBufferReader failed: %v", err)
	}

	sheets, err := reader.SheetNames()
	if err != nil {
		t.Fatalf("SheetNames failed: %v", err)
	}
	if len(sheets) != 2 {
		t.Fatalf("Expected 2 sheets, got %v", sheets)
	}

	table, err := reader.ReadTable("")
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	if table.SheetName != "Data" {
		t.Errorf("Expected first non-empty sheet %q, got %q", "Data", table.SheetName)
	}
	if len(table.Rows) != 2 {
		t.Errorf("Expected blank row skipped, got %d rows", len(table.Rows))
	}
	if table.Rows[0]["conc"] != "100" {
		t.Errorf("Expected cell %q, got %q", "100", table.Rows[0]["conc"])
	}
}

// TestReadTable_EmptyWorkbook verifies a workbook with no data rejects
func TestReadTable_EmptyWorkbook(t *testing.T) {
	f := excelize.NewFile()
	data, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("Failed to serialize workbook: %v", err)
	}

	reader, err := NewBufferReader("empty.xlsx", data.Bytes())
	if err != nil {
		t.Fatalf("NewBufferReader failed: %v", err)
	}
	if _, err := reader.ReadTable(""); err == nil {
		t.Error("Expected error for empty workbook")
	}
}
