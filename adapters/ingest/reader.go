package ingest

import (
	"bytes"
	"encoding/csv"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"gokinet/internal/errors"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// DataReader handles reading Excel and CSV files into raw tables
type DataReader struct {
	name     string
	data     []byte
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader for a file on disk
func NewDataReader(filePath string) (*DataReader, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read file %s", filePath)
	}
	return NewBufferReader(filepath.Base(filePath), data)
}

// NewBufferReader creates a reader over in-memory file content (e.g. an upload)
func NewBufferReader(name string, data []byte) (*DataReader, error) {
	if len(data) == 0 {
		return nil, errors.InvalidInput("file is empty")
	}

	fileType := ""
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		fileType = "csv"
	case ".xlsx", ".xls", ".xlsm":
		fileType = "xlsx"
	default:
		return nil, errors.InvalidInput("unsupported file type: use .xlsx, .xls or .csv")
	}

	return &DataReader{name: name, data: data, fileType: fileType}, nil
}

// Name returns the source file name
func (r *DataReader) Name() string { return r.name }

// SheetNames lists workbook sheets; CSV files report a single pseudo-sheet
func (r *DataReader) SheetNames() ([]string, error) {
	if r.fileType == "csv" {
		return []string{""}, nil
	}

	f, err := excelize.OpenReader(bytes.NewReader(r.data))
	if err != nil {
		return nil, errors.Wrap(errors.ParseError(err.Error()), "failed to open Excel file")
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// ReadTable reads the named sheet (or the whole CSV) into a raw table.
// An empty sheet name selects the first sheet with data.
func (r *DataReader) ReadTable(sheet string) (*RawTable, error) {
	log.Printf("[DataReader] Reading %s source: %s", r.fileType, r.name)

	switch r.fileType {
	case "csv":
		return r.readCSVTable()
	default:
		return r.readExcelTable(sheet)
	}
}

// readExcelTable reads one worksheet into a raw table
func (r *DataReader) readExcelTable(sheet string) (*RawTable, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(bytes.NewReader(r.data))
	if err != nil {
		return nil, errors.Wrap(errors.ParseError(err.Error()), "failed to open Excel file")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.InvalidInput("workbook contains no sheets")
	}

	if sheet == "" {
		// Pick the first sheet with at least a header and one data row
		for _, candidate := range sheets {
			rows, err := f.GetRows(candidate)
			if err == nil && len(rows) >= 2 {
				sheet = candidate
				break
			}
		}
		if sheet == "" {
			return nil, errors.ValidationError("all sheets are empty")
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(errors.ParseError(err.Error()), "failed to read sheet %q", sheet)
	}
	log.Printf("[DataReader] Sheet %q read in %.2fms (%d rows)",
		sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, errors.ValidationError("sheet must have a header row and at least one data row")
	}

	table, err := buildTable(rows)
	if err != nil {
		return nil, err
	}
	table.SheetName = sheet
	return table, nil
}

// readCSVTable reads delimiter-sniffed CSV content into a raw table
func (r *DataReader) readCSVTable() (*RawTable, error) {
	content := decodeText(r.data)
	delimiter := detectDelimiter(content)

	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ParseError(err.Error()), "failed to read CSV file")
	}
	log.Printf("[DataReader] CSV read in %.2fms (%d rows, delimiter %q)",
		float64(time.Since(readStart).Nanoseconds())/1e6, len(rows), delimiter)

	if len(rows) < 2 {
		return nil, errors.ValidationError("CSV file must have a header row and at least one data row")
	}

	return buildTable(rows)
}

// buildTable converts raw string rows into RawTable format
func buildTable(rows [][]string) (*RawTable, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	var dataRows []RawRow
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		rowData := make(RawRow)
		empty := true

		for j, cell := range row {
			if j < len(headers) {
				cell = strings.TrimSpace(cell)
				rowData[headers[j]] = cell
				if cell != "" {
					empty = false
				}
			}
		}

		// Trailing blank spreadsheet rows are common, skip them
		if !empty {
			dataRows = append(dataRows, rowData)
		}
	}

	if len(dataRows) == 0 {
		return nil, errors.ValidationError("no data rows found below the header")
	}

	return &RawTable{Headers: headers, Rows: dataRows}, nil
}

var delimiterCandidates = []rune{',', ';', '\t'}

// detectDelimiter sniffs the CSV delimiter from the leading lines. A
// candidate whose per-line count is nonzero and identical on every
// sampled line wins, so decimal commas inside semicolon-delimited rows
// are not mistaken for field separators. When no candidate is
// consistent, raw counts over the first KB decide, comma winning ties.
func detectDelimiter(content string) rune {
	lines := sampleLines(content, 10)
	for _, d := range delimiterCandidates {
		if consistentPerLine(lines, d) {
			return d
		}
	}

	sample := content
	if len(sample) > 1024 {
		sample = sample[:1024]
	}
	best, bestCount := ',', strings.Count(sample, ",")
	for _, d := range delimiterCandidates[1:] {
		if c := strings.Count(sample, string(d)); c > bestCount {
			best, bestCount = d, c
		}
	}
	return best
}

// sampleLines returns up to n leading non-empty lines
func sampleLines(content string, n int) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == n {
			break
		}
	}
	return lines
}

// consistentPerLine reports whether the delimiter appears the same
// nonzero number of times on every sampled line
func consistentPerLine(lines []string, delim rune) bool {
	if len(lines) == 0 {
		return false
	}
	want := strings.Count(lines[0], string(delim))
	if want == 0 {
		return false
	}
	for _, line := range lines[1:] {
		if strings.Count(line, string(delim)) != want {
			return false
		}
	}
	return true
}

// decodeText converts file bytes to a UTF-8 string. Valid UTF-8 passes
// through (BOM stripped); anything else is decoded as windows-1251,
// which maps every byte and covers the legacy files this app sees.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	if utf8.Valid(data) {
		return string(data)
	}

	decoded, _ := charmap.Windows1251.NewDecoder().Bytes(data)
	return string(decoded)
}
