package app

import (
	"context"
	"log"
	"time"

	"gokinet/adapters/ingest"
	"gokinet/domain/core"
	"gokinet/domain/kinetics"
	"gokinet/internal/config"
	"gokinet/internal/dataset"
	"gokinet/internal/errors"
	fitter "gokinet/internal/kinetics"
	"gokinet/ports"

	"golang.org/x/sync/semaphore"
)

// AnalysisService runs the full pipeline: validate and preprocess a raw
// table, select the stable prefix, fit both models, persist the result.
type AnalysisService struct {
	processor *dataset.Processor
	fitter    *fitter.Fitter
	store     ports.AnalysisStore
	threshold float64
	timeout   time.Duration
	sem       *semaphore.Weighted
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(store ports.AnalysisStore, cfg config.FittingConfig) *AnalysisService {
	return &AnalysisService{
		processor: dataset.NewProcessor(),
		fitter:    fitter.NewFitter(),
		store:     store,
		threshold: cfg.StableSlopeThreshold,
		timeout:   cfg.AnalysisTimeout,
		sem:       semaphore.NewWeighted(cfg.MaxConcurrentAnalyses),
	}
}

// AnalyzeTable runs the pipeline on an already-ingested raw table
func (s *AnalysisService) AnalyzeTable(ctx context.Context, table *ingest.RawTable, sourceName string) (*kinetics.Analysis, error) {
	acquireCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if err := s.sem.Acquire(acquireCtx, 1); err != nil {
		return nil, errors.Wrap(err, "analysis capacity unavailable")
	}
	defer s.sem.Release(1)

	started := time.Now()

	series, err := s.processor.Process(table, sourceName)
	if err != nil {
		return nil, err
	}

	summary, err := dataset.Summarize(series)
	if err != nil {
		return nil, err
	}

	selectedIndices := fitter.StablePoints(series.Times(), series.LnRatios(), s.threshold)
	selected := series.Slice(selectedIndices)
	log.Printf("[AnalysisService] Selected %d of %d points for fitting (source=%s)",
		selected.Len(), series.Len(), sourceName)

	pfo, err := s.fitter.FitPFO(selected)
	if err != nil {
		return nil, errors.Wrap(err, "PFO fit failed")
	}
	pso, err := s.fitter.FitPSO(selected)
	if err != nil {
		return nil, errors.Wrap(err, "PSO fit failed")
	}

	analysis := &kinetics.Analysis{
		ID:              core.NewAnalysisID(),
		SourceName:      sourceName,
		Series:          series,
		SelectedIndices: selectedIndices,
		Summary:         summary,
		PFO:             pfo,
		PSO:             pso,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.store.Save(ctx, analysis); err != nil {
		return nil, errors.Wrap(err, "failed to persist analysis")
	}

	log.Printf("[AnalysisService] Analysis %s complete in %.1fms (PFO R2=%.4f, PSO R2=%.4f)",
		analysis.ID, float64(time.Since(started).Nanoseconds())/1e6, pfo.R2, pso.R2)
	return analysis, nil
}

// AnalyzeFile reads a file from disk and runs the pipeline on it
func (s *AnalysisService) AnalyzeFile(ctx context.Context, filePath, sheet string) (*kinetics.Analysis, error) {
	reader, err := ingest.NewDataReader(filePath)
	if err != nil {
		return nil, err
	}
	table, err := reader.ReadTable(sheet)
	if err != nil {
		return nil, err
	}
	return s.AnalyzeTable(ctx, table, reader.Name())
}

// AnalyzeUpload runs the pipeline on uploaded file content
func (s *AnalysisService) AnalyzeUpload(ctx context.Context, filename string, data []byte, sheet string) (*kinetics.Analysis, error) {
	reader, err := ingest.NewBufferReader(filename, data)
	if err != nil {
		return nil, err
	}
	table, err := reader.ReadTable(sheet)
	if err != nil {
		return nil, err
	}
	return s.AnalyzeTable(ctx, table, reader.Name())
}

// AnalyzePoints runs the pipeline on manually entered rows. A zero or
// negative conc0 falls back to the first concentration, matching the
// manual-entry auto-fill behavior of the UI.
func (s *AnalysisService) AnalyzePoints(ctx context.Context, sourceName string, times, concs []float64, conc0 float64) (*kinetics.Analysis, error) {
	if len(times) == 0 || len(times) != len(concs) {
		return nil, errors.InvalidInput("time and concentration lists must be non-empty and the same length")
	}
	if conc0 <= 0 {
		conc0 = concs[0]
	}
	if sourceName == "" {
		sourceName = "manual"
	}

	table := &ingest.RawTable{
		Headers: []string{"time", "conc", "conc0"},
	}
	for i := range times {
		table.Rows = append(table.Rows, ingest.RawRow{
			"time":  formatFloat(times[i]),
			"conc":  formatFloat(concs[i]),
			"conc0": formatFloat(conc0),
		})
	}

	return s.AnalyzeTable(ctx, table, sourceName)
}

// Get retrieves a stored analysis
func (s *AnalysisService) Get(ctx context.Context, id core.AnalysisID) (*kinetics.Analysis, error) {
	return s.store.GetByID(ctx, id)
}

// List returns recent analyses
func (s *AnalysisService) List(ctx context.Context, limit int) ([]*kinetics.Analysis, error) {
	return s.store.List(ctx, limit)
}

// Delete removes a stored analysis
func (s *AnalysisService) Delete(ctx context.Context, id core.AnalysisID) error {
	return s.store.Delete(ctx, id)
}
