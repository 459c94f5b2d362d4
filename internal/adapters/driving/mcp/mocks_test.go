package mcp

import (
	"context"

	"github.com/custodia-labs/reqsift/internal/core/domain"
)

// mockExtractionService is a mock implementation of driving.ExtractionService.
type mockExtractionService struct {
	result   *domain.ExtractionResult
	runErr   error
	previous []domain.Requirement
	runs     []domain.ExtractionRun
	err      error

	gotReq     domain.ExtractionRequest
	gotProject string
}

func (m *mockExtractionService) Run(_ context.Context, req domain.ExtractionRequest) (*domain.ExtractionResult, error) {
	m.gotReq = req
	return m.result, m.runErr
}

func (m *mockExtractionService) Previous(_ context.Context, projectID string) ([]domain.Requirement, error) {
	m.gotProject = projectID
	return m.previous, m.err
}

func (m *mockExtractionService) Runs(_ context.Context, projectID string) ([]domain.ExtractionRun, error) {
	m.gotProject = projectID
	return m.runs, m.err
}
