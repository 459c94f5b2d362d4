package watch

import (
	"context"
	"errors"
	"os"

	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/core/ports/driving"
	"github.com/custodia-labs/reqsift/internal/logger"
)

// Processor runs one extraction per watched file.
type Processor struct {
	extraction  driving.ExtractionService
	projectID   string
	userID      string
	instruction string

	// OnResult, when set, is called after every run.
	OnResult func(path string, result *domain.ExtractionResult, err error)
}

// NewProcessor creates a processor adding requirements to projectID.
func NewProcessor(extraction driving.ExtractionService, projectID, userID, instruction string) *Processor {
	return &Processor{
		extraction:  extraction,
		projectID:   projectID,
		userID:      userID,
		instruction: instruction,
	}
}

// Process consumes files until the channel closes or ctx is cancelled.
// A failed run is logged and does not stop processing.
func (p *Processor) Process(ctx context.Context, files <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-files:
			if !ok {
				return nil
			}
			p.processOne(ctx, path)
		}
	}
}

func (p *Processor) processOne(ctx context.Context, path string) {
	if _, err := os.Stat(path); err != nil {
		logger.Debug("watch: %s disappeared before processing", path)
		return
	}

	logger.Info("watch: extracting %s", path)
	result, err := p.extraction.Run(ctx, domain.ExtractionRequest{
		ProjectID:   p.projectID,
		UserID:      p.userID,
		Paths:       []string{path},
		Instruction: p.instruction,
	})

	switch {
	case err == nil:
		logger.Info("watch: %s: %d requirements (%d new)", path, len(result.Requirements), result.Added)
	case errors.Is(err, domain.ErrNoRequirements):
		logger.Warn("watch: %s: no requirements found", path)
	case errors.Is(err, context.Canceled):
		logger.Debug("watch: %s: cancelled", path)
	default:
		logger.Error("watch: %s: %v", path, err)
	}

	if p.OnResult != nil {
		p.OnResult(path, result, err)
	}
}
