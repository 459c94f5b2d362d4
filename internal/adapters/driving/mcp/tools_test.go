package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqsift/internal/core/domain"
)

func newTestServer(t *testing.T, m *mockExtractionService) *Server {
	t.Helper()
	server, err := NewServer(&Ports{Extraction: m})
	require.NoError(t, err)
	return server
}

func TestServer_handleExtract(t *testing.T) {
	ctx := context.Background()

	t.Run("returns extracted requirements", func(t *testing.T) {
		mock := &mockExtractionService{
			result: &domain.ExtractionResult{
				RunID: "run-1",
				Requirements: []domain.Requirement{
					{Feature: "Login", Description: "Users log in", Priority: 1, Type: "Functional", MoSCoW: "M"},
					{Feature: "Audit", Description: "Log access", Priority: 2, Type: "Non-Functional", MoSCoW: "S", Answer: "yes"},
				},
				Added: 2,
				Stats: domain.RunStats{FilesProcessed: 1, FilesSkipped: 1},
			},
		}
		server := newTestServer(t, mock)

		_, output, err := server.handleExtract(ctx, nil, ExtractInput{
			ProjectID: "p1",
			Paths:     []string{"/tmp/a.pdf", "/tmp/b.txt"},
			Prompt:    "security only",
		})

		require.NoError(t, err)
		assert.Equal(t, "run-1", output.RunID)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, 2, output.Added)
		assert.Equal(t, 1, output.Processed)
		assert.Equal(t, 1, output.Skipped)
		require.Len(t, output.Requirements, 2)
		assert.Equal(t, "Login", output.Requirements[0].Feature)
		assert.Equal(t, "M", output.Requirements[0].MoSCoW)
		assert.Equal(t, "yes", output.Requirements[1].Answer)

		assert.Equal(t, "p1", mock.gotReq.ProjectID)
		assert.Equal(t, DefaultUserID, mock.gotReq.UserID)
		assert.Equal(t, "security only", mock.gotReq.Instruction)
		assert.False(t, mock.gotReq.SkipStore)
	})

	t.Run("passes user and no_store", func(t *testing.T) {
		mock := &mockExtractionService{result: &domain.ExtractionResult{
			Requirements: []domain.Requirement{{Feature: "A"}},
		}}
		server := newTestServer(t, mock)

		_, output, err := server.handleExtract(ctx, nil, ExtractInput{
			ProjectID: "p1", UserID: "alice", Paths: []string{"/a.pdf"}, NoStore: true,
		})

		require.NoError(t, err)
		assert.Empty(t, output.RunID)
		assert.Equal(t, "alice", mock.gotReq.UserID)
		assert.True(t, mock.gotReq.SkipStore)
	})

	t.Run("returns run error", func(t *testing.T) {
		server := newTestServer(t, &mockExtractionService{runErr: domain.ErrNoRequirements})

		_, _, err := server.handleExtract(ctx, nil, ExtractInput{ProjectID: "p1", Paths: []string{"/a.pdf"}})
		assert.ErrorIs(t, err, domain.ErrNoRequirements)
	})

	t.Run("persistence failure is reported", func(t *testing.T) {
		mock := &mockExtractionService{
			result: &domain.ExtractionResult{Requirements: []domain.Requirement{{Feature: "A"}}},
			runErr: fmt.Errorf("store run: %w", domain.ErrPersistence),
		}
		server := newTestServer(t, mock)

		_, _, err := server.handleExtract(ctx, nil, ExtractInput{ProjectID: "p1", Paths: []string{"/a.pdf"}})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrPersistence)
		assert.Contains(t, err.Error(), "not saved")
	})
}

func TestServer_handleGet(t *testing.T) {
	ctx := context.Background()

	t.Run("latest requirements", func(t *testing.T) {
		mock := &mockExtractionService{previous: []domain.Requirement{{Feature: "A"}, {Feature: "B"}}}
		server := newTestServer(t, mock)

		_, output, err := server.handleGet(ctx, nil, GetInput{ProjectID: "p1"})

		require.NoError(t, err)
		assert.Equal(t, "p1", mock.gotProject)
		assert.Equal(t, 2, output.Count)
		assert.Len(t, output.Requirements, 2)
		assert.Empty(t, output.Runs)
	})

	t.Run("all runs", func(t *testing.T) {
		created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		mock := &mockExtractionService{runs: []domain.ExtractionRun{
			{ID: "r2", UserID: "u", CreatedAt: created, Requirements: []domain.Requirement{{Feature: "A"}}},
			{ID: "r1", UserID: "u", CreatedAt: created.Add(-time.Hour)},
		}}
		server := newTestServer(t, mock)

		_, output, err := server.handleGet(ctx, nil, GetInput{ProjectID: "p1", All: true})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		require.Len(t, output.Runs, 2)
		assert.Equal(t, "r2", output.Runs[0].ID)
		assert.Equal(t, "2024-03-01T12:00:00Z", output.Runs[0].CreatedAt)
		assert.Len(t, output.Runs[0].Requirements, 1)
		assert.Empty(t, output.Runs[1].Requirements)
	})

	t.Run("unknown project is empty", func(t *testing.T) {
		server := newTestServer(t, &mockExtractionService{err: domain.ErrNotFound})

		_, output, err := server.handleGet(ctx, nil, GetInput{ProjectID: "p1"})
		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
	})

	t.Run("missing project id", func(t *testing.T) {
		server := newTestServer(t, &mockExtractionService{})

		_, _, err := server.handleGet(ctx, nil, GetInput{ProjectID: "  "})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("store error", func(t *testing.T) {
		server := newTestServer(t, &mockExtractionService{err: errors.New("db down")})

		_, _, err := server.handleGet(ctx, nil, GetInput{ProjectID: "p1", All: true})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db down")
	})
}
