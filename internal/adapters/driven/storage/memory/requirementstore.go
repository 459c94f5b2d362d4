package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/core/ports/driven"
)

// Ensure RequirementStore implements the interface.
var _ driven.RequirementStore = (*RequirementStore)(nil)

// RequirementStore is an in-memory implementation of driven.RequirementStore.
// Runs are lost when the process exits.
type RequirementStore struct {
	mu   sync.RWMutex
	runs map[string][]domain.ExtractionRun // project ID -> runs, oldest first
	ids  map[string]struct{}
}

// NewRequirementStore creates a new in-memory requirement store.
func NewRequirementStore() *RequirementStore {
	return &RequirementStore{
		runs: make(map[string][]domain.ExtractionRun),
		ids:  make(map[string]struct{}),
	}
}

// Store saves a copy of the run.
func (s *RequirementStore) Store(_ context.Context, run *domain.ExtractionRun) error {
	if err := run.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.ids[run.ID]; exists {
		return fmt.Errorf("%w: run %s already exists", domain.ErrPersistence, run.ID)
	}
	s.ids[run.ID] = struct{}{}
	s.runs[run.ProjectID] = append(s.runs[run.ProjectID], copyRun(*run))
	return nil
}

// FetchPrevious returns the requirements of the project's latest run.
func (s *RequirementStore) FetchPrevious(_ context.Context, projectID string) ([]domain.Requirement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := s.runs[projectID]
	if len(runs) == 0 {
		return nil, domain.ErrNotFound
	}
	return copyRun(runs[len(runs)-1]).Requirements, nil
}

// List returns all runs for a project, newest first.
func (s *RequirementStore) List(_ context.Context, projectID string) ([]domain.ExtractionRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := s.runs[projectID]
	result := make([]domain.ExtractionRun, 0, len(runs))
	for i := len(runs) - 1; i >= 0; i-- {
		result = append(result, copyRun(runs[i]))
	}
	return result, nil
}

// Close is a no-op.
func (s *RequirementStore) Close() error {
	return nil
}

// copyRun copies the slices so callers cannot mutate stored data.
func copyRun(run domain.ExtractionRun) domain.ExtractionRun {
	run.Requirements = append([]domain.Requirement(nil), run.Requirements...)
	run.Tables = append([]domain.FileTable(nil), run.Tables...)
	return run
}
