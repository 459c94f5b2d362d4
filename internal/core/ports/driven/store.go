package driven

import (
	"context"

	"github.com/custodia-labs/reqsift/internal/core/domain"
)

// RequirementStore persists extraction runs per project.
type RequirementStore interface {
	// Store saves a run.
	// Returns an error wrapping domain.ErrValidation for malformed runs,
	// or domain.ErrPersistence when the backend fails.
	Store(ctx context.Context, run *domain.ExtractionRun) error

	// FetchPrevious returns the requirements of the most recent run for a project.
	// Returns domain.ErrNotFound if the project has no runs.
	FetchPrevious(ctx context.Context, projectID string) ([]domain.Requirement, error)

	// List returns all runs for a project, newest first.
	// An unknown project yields an empty slice.
	List(ctx context.Context, projectID string) ([]domain.ExtractionRun, error)

	// Close releases resources.
	Close() error
}
