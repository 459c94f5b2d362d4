package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/core/ports/driven"
	"github.com/custodia-labs/reqsift/internal/logger"
)

// Aggregation is the per-category text of one submission.
type Aggregation struct {
	// Buckets holds one bucket per category that received content.
	Buckets map[domain.Category]*domain.CategoryBucket

	// Processed, Skipped and Failed count input files.
	Processed int
	Skipped   int
	Failed    int
}

// Bucket returns the bucket for a category, or nil.
func (a *Aggregation) Bucket(c domain.Category) *domain.CategoryBucket {
	return a.Buckets[c]
}

// Aggregator extracts files through their providers and merges the
// output per category.
type Aggregator struct {
	registry driven.ProviderRegistry
	workers  int
}

// NewAggregator creates an aggregator running up to workers providers at once.
func NewAggregator(registry driven.ProviderRegistry, workers int) *Aggregator {
	if workers < 1 {
		workers = domain.DefaultWorkers
	}
	return &Aggregator{registry: registry, workers: workers}
}

// fileResult is the outcome of one document.
type fileResult struct {
	content *domain.ExtractedContent
	skipped bool
	err     error
}

// Aggregate extracts every document and merges the results into buckets.
//
// Providers may run concurrently, but buckets are always built in
// submission order. Unsupported files are skipped and a failing file does
// not affect the others. The only error returned is ctx's.
func (a *Aggregator) Aggregate(ctx context.Context, docs []domain.RawDocument) (*Aggregation, error) {
	results := make([]fileResult, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = a.extractOne(gctx, doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	agg := &Aggregation{Buckets: make(map[domain.Category]*domain.CategoryBucket)}
	for i, doc := range docs {
		res := results[i]
		switch {
		case res.skipped:
			agg.Skipped++
		case res.err != nil:
			logger.Warn("%s: %v", doc.Path, res.err)
			agg.Failed++
		default:
			bucket, ok := agg.Buckets[doc.Category]
			if !ok {
				bucket = domain.NewCategoryBucket(doc.Category)
				agg.Buckets[doc.Category] = bucket
			}
			bucket.Append(res.content)
			agg.Processed++
		}
	}

	logger.Info("aggregated %d files (%d skipped, %d failed)", agg.Processed, agg.Skipped, agg.Failed)
	return agg, nil
}

// extractOne dispatches one document to its provider.
func (a *Aggregator) extractOne(ctx context.Context, doc domain.RawDocument) fileResult {
	if !doc.Category.IsSupported() {
		logger.Warn("skipping unsupported file: %s", doc.Path)
		return fileResult{skipped: true}
	}
	provider, err := a.registry.Get(doc.Category)
	if err != nil {
		logger.Warn("skipping %s: no provider for %s", doc.Path, doc.Category)
		return fileResult{skipped: true}
	}

	logger.Debug("extracting %s (%s)", doc.Path, doc.Category)
	content, err := safeExtract(ctx, provider, doc.Path)
	if err != nil {
		return fileResult{err: err}
	}
	if content == nil {
		content = &domain.ExtractedContent{Path: doc.Path}
	}
	if content.Path == "" {
		content.Path = doc.Path
	}
	return fileResult{content: content}
}

// safeExtract calls the provider, converting a panic into an error.
// All provider errors wrap domain.ErrProviderFailed.
func safeExtract(ctx context.Context, p driven.ContentProvider, path string) (content *domain.ExtractedContent, err error) {
	defer func() {
		if r := recover(); r != nil {
			content = nil
			err = fmt.Errorf("%w: panic: %v", domain.ErrProviderFailed, r)
		}
	}()

	content, err = p.Extract(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderFailed, err)
	}
	return content, nil
}
