package ingest

// RawRow maps a header name to the raw cell text for one row
type RawRow map[string]string

// RawTable holds the header row and data rows read from a file,
// before any numeric coercion or validation.
type RawTable struct {
	Headers   []string
	Rows      []RawRow
	SheetName string
}
