package dataset

import (
	"fmt"
	"log"
	"math"

	"gokinet/adapters/ingest"
	"gokinet/domain/kinetics"
	"gokinet/internal/errors"
)

// ratioTolerance bounds the allowed disagreement between a provided A/A0
// value and the one recomputed from A and A0. Larger gaps usually mean the
// sheet was edited by hand; the recomputed value wins.
const ratioTolerance = 1e-3

// Processor turns raw ingested tables into validated kinetic series
type Processor struct{}

// NewProcessor creates a new data processor
func NewProcessor() *Processor {
	return &Processor{}
}

// Process validates and coerces a raw table into a Series with derived
// columns. Rows with unparseable or non-positive essentials are dropped;
// duplicated or decreasing time values reject the whole table.
func (p *Processor) Process(table *ingest.RawTable, sourceName string) (*kinetics.Series, error) {
	if table == nil || len(table.Rows) == 0 {
		return nil, errors.ValidationError("file contains no data rows")
	}

	columns, err := ingest.ResolveColumns(table.Headers)
	if err != nil {
		return nil, err
	}

	points := make([]kinetics.Point, 0, len(table.Rows))
	dropped := 0

	for _, row := range table.Rows {
		point, ok := p.coerceRow(row, columns)
		if !ok {
			dropped++
			continue
		}
		points = append(points, point)
	}

	if dropped > 0 {
		log.Printf("[Processor] Dropped %d of %d rows with missing or non-positive values",
			dropped, len(table.Rows))
	}

	if len(points) == 0 {
		return nil, errors.ValidationError(
			"no valid data rows: check that time, A and A0 are present and positive")
	}

	if err := checkTimeColumn(points); err != nil {
		return nil, err
	}

	return &kinetics.Series{
		SourceName: sourceName,
		SheetName:  table.SheetName,
		Points:     points,
	}, nil
}

// coerceRow parses one raw row into a Point. Returns false when the row
// is unusable (missing essentials, parse failure, non-positive values).
func (p *Processor) coerceRow(row ingest.RawRow, columns ingest.ColumnMap) (kinetics.Point, bool) {
	t, err := ingest.ParseNumber(row[columns[ingest.ColTime]])
	if err != nil || t < 0 {
		return kinetics.Point{}, false
	}

	conc, err := ingest.ParseNumber(row[columns[ingest.ColConc]])
	if err != nil || conc <= 0 {
		return kinetics.Point{}, false
	}

	conc0, err := ingest.ParseNumber(row[columns[ingest.ColConc0]])
	if err != nil || conc0 <= 0 {
		return kinetics.Point{}, false
	}

	computed := conc / conc0
	ratio := computed
	if columns.Has(ingest.ColRatio) {
		if provided, err := ingest.ParseNumber(row[columns[ingest.ColRatio]]); err == nil {
			if provided > 0 && math.Abs(provided-computed) <= ratioTolerance {
				ratio = provided
			}
		}
	}
	if ratio <= 0 {
		return kinetics.Point{}, false
	}

	return kinetics.Point{
		Time:        t,
		Conc:        conc,
		InitialConc: conc0,
		Ratio:       ratio,
		LnRatio:     math.Log(ratio),
		InvConc:     1 / conc,
	}, true
}

// checkTimeColumn enforces strictly increasing time values
func checkTimeColumn(points []kinetics.Point) error {
	for i := 1; i < len(points); i++ {
		if points[i].Time == points[i-1].Time {
			return errors.ValidationError(fmt.Sprintf(
				"duplicated time value %.4g: time values must be unique", points[i].Time))
		}
		if points[i].Time < points[i-1].Time {
			return errors.ValidationError(fmt.Sprintf(
				"time values must be strictly increasing (%.4g after %.4g)",
				points[i].Time, points[i-1].Time))
		}
	}
	return nil
}
