package memstore

import (
	"context"
	"sort"
	"sync"

	"gokinet/domain/core"
	"gokinet/domain/kinetics"
	"gokinet/internal/errors"
	"gokinet/ports"
)

// Store is an in-memory AnalysisStore used when no database is configured
type Store struct {
	mu       sync.RWMutex
	analyses map[core.AnalysisID]*kinetics.Analysis
}

// New creates an empty in-memory store
func New() *Store {
	return &Store{analyses: make(map[core.AnalysisID]*kinetics.Analysis)}
}

var _ ports.AnalysisStore = (*Store)(nil)

// Save stores or replaces an analysis
func (s *Store) Save(ctx context.Context, analysis *kinetics.Analysis) error {
	if analysis == nil || analysis.ID == "" {
		return errors.InvalidInput("analysis must have an ID")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses[analysis.ID] = analysis
	return nil
}

// GetByID retrieves a stored analysis
func (s *Store) GetByID(ctx context.Context, id core.AnalysisID) (*kinetics.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	analysis, ok := s.analyses[id]
	if !ok {
		return nil, errors.NotFound("analysis")
	}
	return analysis, nil
}

// List returns stored analyses, newest first
func (s *Store) List(ctx context.Context, limit int) ([]*kinetics.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*kinetics.Analysis, 0, len(s.analyses))
	for _, analysis := range s.analyses {
		out = append(out, analysis)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete removes an analysis; deleting a missing ID is not an error
func (s *Store) Delete(ctx context.Context, id core.AnalysisID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.analyses, id)
	return nil
}
