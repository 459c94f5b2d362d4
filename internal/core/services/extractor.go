package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/reqsift/internal/chunker"
	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/core/ports/driven"
	"github.com/custodia-labs/reqsift/internal/logger"
)

// rawLogLimit bounds how much raw model output is written to the log.
const rawLogLimit = 2000

// ExtractOutcome is the result of extracting one category's text.
type ExtractOutcome struct {
	// Requirements is the accumulated record set, seed first.
	Requirements []domain.Requirement

	// Chunks is how many chunks the text was split into.
	Chunks int

	// FailedChunks counts chunks whose model call or response failed.
	FailedChunks int

	// Added is how many records were appended beyond the seed.
	Added int
}

// Extractor turns text into requirement records one chunk at a time.
type Extractor struct {
	llm     driven.LLMService
	chunker *chunker.Chunker
	timeout time.Duration
	prompts driven.PromptStore
}

// NewExtractor creates an extractor. A zero timeout uses domain.DefaultModelTimeout.
func NewExtractor(llm driven.LLMService, c *chunker.Chunker, timeout time.Duration) *Extractor {
	if c == nil {
		c = chunker.New()
	}
	if timeout <= 0 {
		timeout = domain.DefaultModelTimeout
	}
	return &Extractor{
		llm:     llm,
		chunker: c,
		timeout: timeout,
	}
}

// SetPromptStore sets the prompt store for loading the extraction prompt.
func (e *Extractor) SetPromptStore(store driven.PromptStore) {
	e.prompts = store
}

// Extract chunks text and submits each chunk, in order, together with the
// records accumulated so far. New unique records are appended; previous
// records are never removed or reordered.
//
// A chunk whose model call or response fails is logged and skipped.
// Blank text is not submitted. If ctx is cancelled between chunks the
// partial outcome is returned with ctx's error.
func (e *Extractor) Extract(
	ctx context.Context,
	text string,
	previous []domain.Requirement,
	instruction string,
) (*ExtractOutcome, error) {
	acc := domain.NewAccumulator(previous)
	seeded := acc.Len()
	outcome := &ExtractOutcome{}

	if strings.TrimSpace(text) == "" {
		outcome.Requirements = acc.Records()
		return outcome, nil
	}

	template := loadExtractionPrompt(e.prompts)
	chunks := e.chunker.Split(text)
	outcome.Chunks = len(chunks)

	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			outcome.Requirements = acc.Records()
			outcome.Added = acc.Len() - seeded
			return outcome, err
		}

		var err error
		acc, err = e.processChunk(ctx, acc, chunk, template, instruction)
		if err != nil {
			logger.Warn("chunk %d: %v", chunk.Index, err)
			outcome.FailedChunks++
		}
	}

	outcome.Requirements = acc.Records()
	outcome.Added = acc.Len() - seeded
	return outcome, ctx.Err()
}

// processChunk submits one chunk and returns the accumulator with any new
// records appended. On failure the accumulator is returned unchanged.
func (e *Extractor) processChunk(
	ctx context.Context,
	acc *domain.Accumulator,
	chunk domain.Chunk,
	template, instruction string,
) (*domain.Accumulator, error) {
	prompt := buildPrompt(template, acc.Records(), instruction, chunk.Text)

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	raw, err := e.llm.Generate(callCtx, prompt, driven.GenerateOptions{System: systemInstruction, Temperature: 0})
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return acc, fmt.Errorf("%w: timed out after %s", domain.ErrModelCall, e.timeout)
		}
		return acc, fmt.Errorf("%w: %w", domain.ErrModelCall, err)
	}
	logger.Debug("chunk %d: model answered in %s", chunk.Index, time.Since(start).Round(time.Millisecond))

	records, err := ParseResponse(raw)
	if err != nil {
		logger.Warn("chunk %d: unparsable response: %s", chunk.Index, logger.Truncate(raw, rawLogLimit))
		return acc, err
	}

	added := 0
	for _, r := range records {
		if acc.InsertUnique(r) {
			added++
		}
	}
	logger.Debug("chunk %d: %d records, %d new", chunk.Index, len(records), added)
	return acc, nil
}
