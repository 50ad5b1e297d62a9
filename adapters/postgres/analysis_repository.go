package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"gokinet/domain/core"
	"gokinet/domain/kinetics"
	"gokinet/internal/errors"
	"gokinet/ports"

	"github.com/jmoiron/sqlx"
)

// analysisRepository implements ports.AnalysisStore on PostgreSQL.
// The full analysis (series, selection, predictions) lives in a JSONB
// payload; the scalar fit results are denormalized for list queries.
type analysisRepository struct {
	db *sqlx.DB
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *sqlx.DB) ports.AnalysisStore {
	return &analysisRepository{db: db}
}

// Save inserts or replaces an analysis
func (r *analysisRepository) Save(ctx context.Context, analysis *kinetics.Analysis) error {
	if analysis == nil || analysis.ID == "" {
		return errors.InvalidInput("analysis must have an ID")
	}

	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis payload: %w", err)
	}

	query := `INSERT INTO analyses (
		id, source_name, sheet_name, point_count, selected_count,
		pfo_rate_constant, pfo_r2, pfo_mape,
		pso_rate_constant, pso_r2, pso_mape,
		payload, created_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
	) ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload`

	sheetName := ""
	if analysis.Series != nil {
		sheetName = analysis.Series.SheetName
	}

	_, err = r.db.ExecContext(ctx, query,
		analysis.ID.String(), analysis.SourceName, sheetName,
		analysis.Summary.PointCount, len(analysis.SelectedIndices),
		analysis.PFO.RateConstant, analysis.PFO.R2, analysis.PFO.MAPE,
		analysis.PSO.RateConstant, analysis.PSO.R2, analysis.PSO.MAPE,
		payload, analysis.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(errors.DatabaseError(err.Error()), "failed to save analysis")
	}
	return nil
}

// GetByID retrieves an analysis by its ID
func (r *analysisRepository) GetByID(ctx context.Context, id core.AnalysisID) (*kinetics.Analysis, error) {
	query := `SELECT payload FROM analyses WHERE id = $1`

	var payload []byte
	if err := r.db.QueryRowContext(ctx, query, id.String()).Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("analysis")
		}
		return nil, errors.Wrap(errors.DatabaseError(err.Error()), "failed to load analysis")
	}

	var analysis kinetics.Analysis
	if err := json.Unmarshal(payload, &analysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis payload: %w", err)
	}
	return &analysis, nil
}

// List returns stored analyses, newest first
func (r *analysisRepository) List(ctx context.Context, limit int) ([]*kinetics.Analysis, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT payload FROM analyses ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, errors.Wrap(errors.DatabaseError(err.Error()), "failed to list analyses")
	}
	defer rows.Close()

	var analyses []*kinetics.Analysis
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, errors.Wrap(errors.DatabaseError(err.Error()), "failed to scan analysis row")
		}
		var analysis kinetics.Analysis
		if err := json.Unmarshal(payload, &analysis); err != nil {
			return nil, fmt.Errorf("failed to unmarshal analysis payload: %w", err)
		}
		analyses = append(analyses, &analysis)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.DatabaseError(err.Error()), "failed to iterate analyses")
	}
	return analyses, nil
}

// Delete removes an analysis; deleting a missing ID is not an error
func (r *analysisRepository) Delete(ctx context.Context, id core.AnalysisID) error {
	query := `DELETE FROM analyses WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id.String()); err != nil {
		return errors.Wrap(errors.DatabaseError(err.Error()), "failed to delete analysis")
	}
	return nil
}
