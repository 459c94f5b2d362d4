package domain

import (
	"fmt"
	"strings"
	"time"
)

// MaxUploadFiles is the most files a single extraction request may carry.
const MaxUploadFiles = 10

// ExtractionRun is a persisted set of requirements for a project.
type ExtractionRun struct {
	// ID is the unique identifier for the run.
	ID string `json:"id" yaml:"id"`

	// ProjectID scopes the run.
	ProjectID string `json:"project_id" yaml:"project_id"`

	// UserID identifies who started the run.
	UserID string `json:"user_id" yaml:"user_id"`

	// Requirements is the final accumulated record set.
	Requirements []Requirement `json:"requirements" yaml:"requirements"`

	// Tables are the tables recovered from the input files.
	Tables []FileTable `json:"tables" yaml:"tables"`

	// CreatedAt is when the run was stored.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// UpdatedAt is when the run was last written.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Validate checks that the run can be stored.
// Errors wrap ErrValidation.
func (r *ExtractionRun) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: run is nil", ErrValidation)
	}
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: run id is required", ErrValidation)
	}
	if strings.TrimSpace(r.ProjectID) == "" {
		return fmt.Errorf("%w: project id is required", ErrValidation)
	}
	if strings.TrimSpace(r.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if len(r.Requirements) == 0 {
		return fmt.Errorf("%w: run has no requirements", ErrValidation)
	}
	return nil
}

// ExtractionRequest describes one extraction run.
type ExtractionRequest struct {
	// ProjectID scopes dedup continuity and persistence.
	ProjectID string

	// UserID identifies the caller.
	UserID string

	// Paths are the input files, in the order given.
	Paths []string

	// Instruction is an optional free-form instruction added to every prompt.
	Instruction string

	// SkipStore runs extraction without persisting the result.
	SkipStore bool
}

// Validate checks the request. Errors wrap ErrInvalidInput.
func (r ExtractionRequest) Validate() error {
	if strings.TrimSpace(r.ProjectID) == "" {
		return fmt.Errorf("%w: project id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(r.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if len(r.Paths) == 0 {
		return fmt.Errorf("%w: at least one file is required", ErrInvalidInput)
	}
	return nil
}

// RunStats counts what happened during a run.
type RunStats struct {
	FilesProcessed int `json:"files_processed" yaml:"files_processed"`
	FilesSkipped   int `json:"files_skipped" yaml:"files_skipped"`
	FilesFailed    int `json:"files_failed" yaml:"files_failed"`
	Chunks         int `json:"chunks" yaml:"chunks"`
	FailedChunks   int `json:"failed_chunks" yaml:"failed_chunks"`
}

// NearDuplicate is a pair of distinct records whose text is very similar.
// Reported only; near-duplicates are never merged.
type NearDuplicate struct {
	First      Requirement `json:"first" yaml:"first"`
	Second     Requirement `json:"second" yaml:"second"`
	Similarity float64     `json:"similarity" yaml:"similarity"`
}

// ExtractionResult is the outcome of a run.
type ExtractionResult struct {
	// RunID is the stored run's ID. Empty when the run was not stored.
	RunID string `json:"run_id,omitempty" yaml:"run_id,omitempty"`

	ProjectID string `json:"project_id" yaml:"project_id"`
	UserID    string `json:"user_id" yaml:"user_id"`

	// Requirements is the final record set, seed included.
	Requirements []Requirement `json:"requirements" yaml:"requirements"`

	// Tables are all tables recovered from the inputs.
	Tables []FileTable `json:"tables" yaml:"tables"`

	// Added is how many records this run contributed beyond the seed.
	Added int `json:"added" yaml:"added"`

	Stats RunStats `json:"stats" yaml:"stats"`

	NearDuplicates []NearDuplicate `json:"near_duplicates,omitempty" yaml:"near_duplicates,omitempty"`
}
