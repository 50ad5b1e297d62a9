package ports

import (
	"context"

	"gokinet/domain/core"
	"gokinet/domain/kinetics"
)

// AnalysisStore persists completed analyses for the history views.
// Implementations: adapters/postgres (sqlx) and adapters/memstore.
type AnalysisStore interface {
	Save(ctx context.Context, analysis *kinetics.Analysis) error
	GetByID(ctx context.Context, id core.AnalysisID) (*kinetics.Analysis, error)
	List(ctx context.Context, limit int) ([]*kinetics.Analysis, error)
	Delete(ctx context.Context, id core.AnalysisID) error
}
