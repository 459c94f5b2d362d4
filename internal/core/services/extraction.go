package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/reqsift/internal/chunker"
	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/core/ports/driven"
	"github.com/custodia-labs/reqsift/internal/core/ports/driving"
	"github.com/custodia-labs/reqsift/internal/logger"
)

// Ensure ExtractionService implements the interface.
var _ driving.ExtractionService = (*ExtractionService)(nil)

// Ensure ExtractionService implements PromptStoreAware.
var _ driven.PromptStoreAware = (*ExtractionService)(nil)

// ExtractionConfig tunes the pipeline. Zero values use the domain defaults.
type ExtractionConfig struct {
	ChunkSize    int
	ModelTimeout time.Duration
	Workers      int

	// NearDuplicateThreshold reports record pairs at or above this similarity.
	// Zero uses DefaultNearDuplicateThreshold; a negative value disables the report.
	NearDuplicateThreshold float64
}

// ExtractionService runs the requirement extraction pipeline.
type ExtractionService struct {
	aggregator *Aggregator
	extractor  *Extractor
	llm        driven.LLMService
	store      driven.RequirementStore
	threshold  float64
	now        func() time.Time
	newID      func() string
}

// NewExtractionService creates the pipeline.
// The store may be nil when every request sets SkipStore.
func NewExtractionService(
	registry driven.ProviderRegistry,
	llm driven.LLMService,
	store driven.RequirementStore,
	cfg ExtractionConfig,
) *ExtractionService {
	threshold := cfg.NearDuplicateThreshold
	if threshold == 0 {
		threshold = DefaultNearDuplicateThreshold
	}
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = domain.DefaultChunkSize
	}

	var extractor *Extractor
	if llm != nil {
		extractor = NewExtractor(llm, chunker.New(chunker.WithMaxSize(chunkSize)), cfg.ModelTimeout)
	}

	return &ExtractionService{
		aggregator: NewAggregator(registry, cfg.Workers),
		extractor:  extractor,
		llm:        llm,
		store:      store,
		threshold:  threshold,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// SetPromptStore sets the prompt store used for the extraction prompt.
func (s *ExtractionService) SetPromptStore(store driven.PromptStore) {
	if s.extractor != nil {
		s.extractor.SetPromptStore(store)
	}
}

// Run extracts requirements from the request's files.
//
// Categories are processed in a fixed order and each category's records
// seed the next, starting from the project's latest stored run.
func (s *ExtractionService) Run(ctx context.Context, req domain.ExtractionRequest) (*domain.ExtractionResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.extractor == nil {
		return nil, fmt.Errorf("%w: no LLM configured", domain.ErrLLMUnavailable)
	}
	if !req.SkipStore && s.store == nil {
		return nil, fmt.Errorf("%w: no store configured", domain.ErrPersistence)
	}

	logger.Section("Extraction " + req.ProjectID)
	seed := s.seed(ctx, req)
	seeded := domain.NewAccumulator(seed).Len()

	agg, err := s.aggregator.Aggregate(ctx, domain.NewRawDocuments(req.Paths))
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	result := &domain.ExtractionResult{
		ProjectID: req.ProjectID,
		UserID:    req.UserID,
		Stats: domain.RunStats{
			FilesProcessed: agg.Processed,
			FilesSkipped:   agg.Skipped,
			FilesFailed:    agg.Failed,
		},
	}

	records := seed
	for _, category := range domain.AllCategories() {
		bucket := agg.Bucket(category)
		if bucket == nil {
			continue
		}
		result.Tables = append(result.Tables, bucket.Tables...)

		logger.Info("%s: %d files, %d characters", category, len(bucket.Files), len(bucket.Text))
		outcome, err := s.extractor.Extract(ctx, bucket.Text, records, req.Instruction)
		if outcome != nil {
			records = outcome.Requirements
			result.Stats.Chunks += outcome.Chunks
			result.Stats.FailedChunks += outcome.FailedChunks
			logger.Info("%s: %d new requirements", category, outcome.Added)
		}
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", category, err)
		}
	}

	result.Requirements = domain.NewAccumulator(records).Records()
	result.Added = len(result.Requirements) - seeded
	if len(result.Requirements) == 0 {
		return nil, domain.ErrNoRequirements
	}

	result.NearDuplicates = findNearDuplicates(result.Requirements, s.threshold)
	for _, nd := range result.NearDuplicates {
		logger.Debug("near-duplicate (%.2f): %q ~ %q", nd.Similarity, nd.First.Feature, nd.Second.Feature)
	}

	logger.Info("%d requirements (%d new)", len(result.Requirements), result.Added)
	if req.SkipStore {
		return result, nil
	}

	now := s.now()
	run := &domain.ExtractionRun{
		ID:           s.newID(),
		ProjectID:    req.ProjectID,
		UserID:       req.UserID,
		Requirements: result.Requirements,
		Tables:       result.Tables,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Store(ctx, run); err != nil {
		return result, fmt.Errorf("store run: %w", err)
	}
	result.RunID = run.ID
	return result, nil
}

// seed fetches the project's previous records. Any failure other than
// ErrNotFound is logged and the run starts empty.
func (s *ExtractionService) seed(ctx context.Context, req domain.ExtractionRequest) []domain.Requirement {
	if s.store == nil {
		return nil
	}
	prev, err := s.store.FetchPrevious(ctx, req.ProjectID)
	switch {
	case err == nil:
		logger.Info("continuing from %d stored requirements", len(prev))
		return prev
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		logger.Warn("fetch previous requirements: %v", err)
		return nil
	}
}

// Previous returns the latest stored requirements for a project.
func (s *ExtractionService) Previous(ctx context.Context, projectID string) ([]domain.Requirement, error) {
	if s.store == nil {
		return nil, fmt.Errorf("%w: no store configured", domain.ErrPersistence)
	}
	return s.store.FetchPrevious(ctx, projectID)
}

// Runs lists the stored runs for a project, newest first.
func (s *ExtractionService) Runs(ctx context.Context, projectID string) ([]domain.ExtractionRun, error) {
	if s.store == nil {
		return nil, fmt.Errorf("%w: no store configured", domain.ErrPersistence)
	}
	return s.store.List(ctx, projectID)
}
