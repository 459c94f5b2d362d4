package driving

import (
	"context"

	"github.com/custodia-labs/reqsift/internal/core/domain"
)

// ExtractionService turns input files into a deduplicated requirement set.
type ExtractionService interface {
	// Run executes the full pipeline for one request.
	// Returns domain.ErrInvalidInput for a malformed request and
	// domain.ErrNoRequirements when nothing was extracted. When persistence
	// fails the result is still returned alongside an error wrapping
	// domain.ErrPersistence.
	Run(ctx context.Context, req domain.ExtractionRequest) (*domain.ExtractionResult, error)

	// Previous returns the requirements of the latest run for a project.
	// Returns domain.ErrNotFound if the project has none.
	Previous(ctx context.Context, projectID string) ([]domain.Requirement, error)

	// Runs lists every stored run for a project, newest first.
	Runs(ctx context.Context, projectID string) ([]domain.ExtractionRun, error)
}
