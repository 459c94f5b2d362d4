package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file category with no capability provider.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Extraction cannot run without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrRateLimited indicates the model API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrToolNotFound indicates an external binary (OCR, transcription) is missing.
	ErrToolNotFound = errors.New("external tool not found")

	// Extraction Errors.

	// ErrProviderFailed indicates a capability provider could not extract one file.
	// Recovered by the aggregator: the file is skipped.
	ErrProviderFailed = errors.New("provider failed")

	// ErrModelCall indicates the model call for one chunk failed or timed out.
	// Recovered by the extractor: the chunk contributes no records.
	ErrModelCall = errors.New("model call failed")

	// ErrResponseParse indicates the model output could not be read as a record list.
	// Recovered by the extractor and logged with the raw output.
	ErrResponseParse = errors.New("response parse failed")

	// ErrNoRequirements indicates a run produced no requirements at all.
	ErrNoRequirements = errors.New("no requirements extracted")

	// Persistence Errors.

	// ErrValidation indicates malformed input to the requirement store.
	// Fatal for the store call.
	ErrValidation = errors.New("validation failed")

	// ErrPersistence indicates the storage backend is unreachable or a write failed.
	// The run is marked failed but its records are still returned.
	ErrPersistence = errors.New("persistence failed")
)
