package cli

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/reqsift/internal/core/domain"
)

func sampleResult() *domain.ExtractionResult {
	return &domain.ExtractionResult{
		RunID:     "run-1",
		ProjectID: "acme",
		UserID:    "cli",
		Requirements: []domain.Requirement{
			{Feature: "Login", Description: "Users log in with email", Priority: 1, Type: "Functional", MoSCoW: "M"},
			{Feature: "Export", Description: "Export to CSV", Priority: 3, Type: "Functional", MoSCoW: "S"},
		},
		Added: 2,
		Stats: domain.RunStats{FilesProcessed: 2, FilesSkipped: 1, Chunks: 3},
	}
}

func TestExtractCmd_WritesJSON(t *testing.T) {
	mock := &mockExtractionService{result: sampleResult()}
	withServices(t, mock, nil)

	stdout, stderr, err := execute(t, "", "extract", "--project", "acme", "--prompt", "focus", "a.pdf", "b.mp3")
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "Login", records[0]["feature"])
	assert.Equal(t, "M", records[0]["moscow"])

	assert.Contains(t, stderr, "Project: acme")
	assert.Contains(t, stderr, "Requirements: 2 (2 new)")
	assert.Contains(t, stderr, "Run: run-1")

	assert.Equal(t, "acme", mock.gotReq.ProjectID)
	assert.Equal(t, "cli", mock.gotReq.UserID)
	assert.Equal(t, "focus", mock.gotReq.Instruction)
	assert.Equal(t, []string{"a.pdf", "b.mp3"}, mock.gotReq.Paths)
	assert.False(t, mock.gotReq.SkipStore)
}

func TestExtractCmd_WritesYAML(t *testing.T) {
	withServices(t, &mockExtractionService{result: sampleResult()}, nil)

	stdout, _, err := execute(t, "", "extract", "-p", "acme", "-f", "yaml", "a.pdf")
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "Export", records[1]["feature"])
}

func TestExtractCmd_NoStoreAndUser(t *testing.T) {
	result := sampleResult()
	result.RunID = ""
	mock := &mockExtractionService{result: result}
	withServices(t, mock, nil)

	_, stderr, err := execute(t, "", "extract", "-p", "acme", "-u", "alice", "--no-store", "a.pdf")
	require.NoError(t, err)
	assert.True(t, mock.gotReq.SkipStore)
	assert.Equal(t, "alice", mock.gotReq.UserID)
	assert.NotContains(t, stderr, "Run:")
}

func TestExtractCmd_PersistenceFailureStillPrints(t *testing.T) {
	mock := &mockExtractionService{
		result: sampleResult(),
		runErr: fmt.Errorf("store run: %w", domain.ErrPersistence),
	}
	withServices(t, mock, nil)

	stdout, _, err := execute(t, "", "extract", "-p", "acme", "a.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Contains(t, err.Error(), "not saved")
	assert.Contains(t, stdout, "Login")
}

func TestExtractCmd_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mock    *mockExtractionService
		args    []string
		message string
		calls   int
	}{
		{
			name:    "no requirements",
			mock:    &mockExtractionService{runErr: domain.ErrNoRequirements},
			args:    []string{"extract", "-p", "acme", "a.pdf", "b.pdf"},
			message: "no requirements were extracted from 2 file(s)",
			calls:   1,
		},
		{
			name:    "run failure",
			mock:    &mockExtractionService{runErr: domain.ErrLLMUnavailable},
			args:    []string{"extract", "-p", "acme", "a.pdf"},
			message: "extraction failed",
			calls:   1,
		},
		{
			name:    "invalid format",
			mock:    &mockExtractionService{},
			args:    []string{"extract", "-p", "acme", "-f", "xml", "a.pdf"},
			message: `unknown format "xml"`,
		},
		{
			name:    "missing project",
			mock:    &mockExtractionService{},
			args:    []string{"extract", "a.pdf"},
			message: `required flag(s) "project" not set`,
		},
		{
			name:    "no files",
			mock:    &mockExtractionService{},
			args:    []string{"extract", "-p", "acme"},
			message: "requires at least 1 arg(s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withServices(t, tt.mock, nil)

			_, _, err := execute(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
			assert.Equal(t, tt.calls, tt.mock.calls)
		})
	}
}
