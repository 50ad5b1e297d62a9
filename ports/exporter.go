package ports

import (
	"gokinet/domain/kinetics"
)

// WorkbookExporter serializes an analysis into a downloadable spreadsheet
type WorkbookExporter interface {
	Workbook(analysis *kinetics.Analysis) ([]byte, error)
}
